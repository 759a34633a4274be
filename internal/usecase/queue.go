package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/source"
)

// Manager sequences independent runs strictly one after another: one run
// controller per queue item, awaited to completion before the next starts.
// Serializing runs here is what keeps the dedup store free of cross-run
// write races.
type Manager struct {
	resolver *source.Resolver
	deps     RunDeps // Source is filled in per item
	logger   *slog.Logger

	mu        sync.Mutex
	current   *Runner
	cancelled atomic.Bool
}

// NewManager wires the source resolver and the shared run dependencies.
func NewManager(resolver *source.Resolver, deps RunDeps, logger *slog.Logger) *Manager {
	return &Manager{resolver: resolver, deps: deps, logger: logger}
}

// Process consumes the queue in FIFO order and returns one summary per
// item that was started. After a queue-level cancel the current run is
// aborted and the remaining items are never started.
func (m *Manager) Process(ctx context.Context, items []domain.QueueItem) []domain.RunSummary {
	summaries := make([]domain.RunSummary, 0, len(items))

	for _, item := range items {
		if m.cancelled.Load() || ctx.Err() != nil {
			m.debug("queue cancelled, skipping remaining items", "group", item.GroupID)
			break
		}

		candidateSource, err := m.resolver.Resolve(ctx, item.GroupID)
		if err != nil {
			m.warn("cannot resolve candidate source", "group", item.GroupID, "error", err)
			summaries = append(summaries, domain.RunSummary{
				GroupID: item.GroupID,
				Status:  domain.StatusFailed,
			})
			continue
		}

		deps := m.deps
		deps.Source = candidateSource
		runner := NewRunner(deps, item.GroupID, item.Config)

		m.mu.Lock()
		m.current = runner
		// A cancel that raced with runner construction must still land.
		if m.cancelled.Load() {
			runner.State().Cancel()
		}
		m.mu.Unlock()

		summaries = append(summaries, runner.Run(ctx))

		m.mu.Lock()
		m.current = nil
		m.mu.Unlock()
	}

	return summaries
}

// Cancel aborts the current run cooperatively and prevents any further
// queue items from starting.
func (m *Manager) Cancel() {
	m.cancelled.Store(true)

	m.mu.Lock()
	if m.current != nil {
		m.current.State().Cancel()
	}
	m.mu.Unlock()
}

// Invalidate drops the cached candidate source for a group; the next run
// for that group re-resolves it.
func (m *Manager) Invalidate(groupID string) {
	m.resolver.Invalidate(groupID)
}

func (m *Manager) debug(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *Manager) warn(msg string, args ...interface{}) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
