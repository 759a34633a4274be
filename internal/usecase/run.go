package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"FeedEngager/internal/dedup"
	"FeedEngager/internal/domain"
	"FeedEngager/internal/filter"
	"FeedEngager/internal/generation"
	"FeedEngager/internal/normalize"
	"FeedEngager/internal/ports"
	"FeedEngager/internal/submit"
)

const defaultRetention = 365 * 24 * time.Hour

// RunDeps wires all collaborators into one run controller.
type RunDeps struct {
	Source    ports.CandidateSource
	Dedup     *dedup.Store
	Filters   *filter.Chain
	Generator *generation.Client
	Submitter submit.Submitter
	Progress  ports.ProgressSink
	Logger    *slog.Logger
}

// Runner executes one bounded run over a candidate source: filter,
// generate, submit, record, pace. Candidates are processed strictly one at
// a time; the only shared resource it touches is the dedup store.
type Runner struct {
	source    ports.CandidateSource
	dedup     *dedup.Store
	filters   *filter.Chain
	generator *generation.Client
	submitter submit.Submitter
	progress  ports.ProgressSink
	logger    *slog.Logger

	groupID string
	cfg     domain.RunConfig
	state   *domain.RunState

	// pacingTick is how often the inter-item delay re-checks the
	// cancellation flag. One second in production; shortened in tests.
	pacingTick time.Duration
}

// NewRunner snapshots the config and creates an active run state.
func NewRunner(deps RunDeps, groupID string, cfg domain.RunConfig) *Runner {
	if cfg.RecordRetention <= 0 {
		cfg.RecordRetention = defaultRetention
	}
	return &Runner{
		source:     deps.Source,
		dedup:      deps.Dedup,
		filters:    deps.Filters,
		generator:  deps.Generator,
		submitter:  deps.Submitter,
		progress:   deps.Progress,
		logger:     deps.Logger,
		groupID:    groupID,
		cfg:        cfg,
		state:      domain.NewRunState(uuid.NewString()),
		pacingTick: time.Second,
	}
}

// State exposes the run state for external cancellation. Cancellation is a
// one-way flag flip observed at suspension points; no forcible abort.
func (r *Runner) State() *domain.RunState {
	return r.state
}

// Run drives the candidate loop to one of the terminal statuses. All
// per-candidate failures are contained here; the summary is the only thing
// that escapes.
func (r *Runner) Run(ctx context.Context) domain.RunSummary {
	r.debug("run starting", "run_id", r.state.ID, "group", r.groupID, "max_items", r.cfg.MaxItems)

	// Opportunistic TTL sweep, before any candidate work and never
	// mid-run.
	if evicted, err := r.dedup.EvictOlderThan(ctx, r.cfg.RecordRetention); err != nil {
		r.warn("dedup eviction failed", "error", err)
	} else if evicted > 0 {
		r.debug("evicted stale dedup records", "count", evicted)
	}

	candidates, err := r.source.List(ctx)
	if err != nil {
		r.warn("candidate scan failed", "error", err)
		return r.finish(ctx, domain.StatusFailed)
	}
	r.debug("candidates scanned", "count", len(candidates))

	status := domain.StatusCompleted

loop:
	for index, candidate := range candidates {
		if !r.state.Active() {
			status = domain.StatusCancelled
			break
		}
		if r.capReached() {
			break
		}

		r.state.MarkProcessed()

		acted, itemStatus := r.processCandidate(ctx, candidate)
		switch itemStatus {
		case itemQuotaExhausted:
			// Quota is shared across the run: stop generating, keep
			// everything already recorded. Partial success is a
			// normal outcome, not a failure.
			r.debug("generation quota exhausted, ending run")
			break loop
		case itemCancelled:
			status = domain.StatusCancelled
			break loop
		}

		if !acted {
			continue
		}

		r.emitProgress(ctx, domain.StatusRunning)

		if index < len(candidates)-1 && !r.capReached() {
			if !r.pace(ctx) {
				status = domain.StatusCancelled
				break
			}
		}
	}

	if !r.state.Active() && status == domain.StatusCompleted {
		status = domain.StatusCancelled
	}

	return r.finish(ctx, status)
}

type itemOutcome int

const (
	itemDone itemOutcome = iota
	itemQuotaExhausted
	itemCancelled
)

// processCandidate runs the per-candidate pipeline. It returns whether the
// candidate was acted upon and whether the run should keep going.
func (r *Runner) processCandidate(ctx context.Context, candidate domain.Candidate) (bool, itemOutcome) {
	alias := candidate.CanonicalAlias()

	_, fingerprint, err := normalize.Normalize(candidate.Content)
	if err != nil {
		// Soft-skip: extraction gave us nothing usable.
		r.debug("candidate content unusable", "item", alias, "error", err)
		return false, itemDone
	}

	if reason, skipped := r.filters.ShouldSkip(candidate, fingerprint, r.cfg); skipped {
		r.debug("candidate skipped", "item", alias, "reason", reason)
		return false, itemDone
	}

	adjacent := ""
	if r.cfg.EnrichContext {
		adjacent = candidate.ThreadContext
	}

	var result generation.Result
	if r.cfg.Variations > 1 {
		result = generation.Pick(r.generator.GenerateVariations(ctx, candidate.Content, r.cfg.Style, adjacent, r.cfg.Variations))
	} else {
		result = r.generator.Generate(ctx, candidate.Content, r.cfg.Style, adjacent)
	}
	if !result.OK {
		if result.QuotaExhausted() {
			return false, itemQuotaExhausted
		}
		// Item-failure: no record written, retryable on a later run.
		r.debug("generation failed", "item", alias, "reason", result.Reason)
		return false, itemDone
	}

	// Generation may have taken seconds; honor a cancellation that
	// arrived while it was in flight before touching the surface.
	if !r.state.Active() {
		return false, itemCancelled
	}

	if !r.submitter.Submit(ctx, candidate, result.Text) {
		r.debug("submission failed", "item", alias)
		return false, itemDone
	}

	// Only confirmed successes are recorded, in action order: every
	// alias, then the content fingerprint, then the author.
	if err := r.dedup.MarkItems(ctx, candidate.Aliases); err != nil {
		r.warn("record item aliases", "item", alias, "error", err)
	}
	if err := r.dedup.MarkFingerprint(ctx, fingerprint); err != nil {
		r.warn("record fingerprint", "item", alias, "error", err)
	}
	if err := r.dedup.MarkAuthor(ctx, candidate.AuthorKey); err != nil {
		r.warn("record author", "item", alias, "error", err)
	}

	r.state.MarkActed()
	r.debug("candidate engaged", "item", alias, "acted", r.state.Acted())
	return true, itemDone
}

// pace sleeps the configured inter-item delay, re-checking the cancellation
// flag every pacingTick so a cancel during the pause takes effect within
// one tick rather than after the full delay.
func (r *Runner) pace(ctx context.Context) bool {
	remaining := r.cfg.ActionDelay
	for remaining > 0 {
		if !r.state.Active() {
			return false
		}

		step := r.pacingTick
		if step > remaining {
			step = remaining
		}

		timer := time.NewTimer(step)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}
		remaining -= step
	}
	return r.state.Active()
}

func (r *Runner) capReached() bool {
	return r.cfg.MaxItems > 0 && r.state.Acted() >= r.cfg.MaxItems
}

// finish emits the terminal progress event exactly once and returns the
// summary.
func (r *Runner) finish(ctx context.Context, status domain.RunStatus) domain.RunSummary {
	r.state.Cancel() // run is over either way; make the flag final

	r.emitProgress(ctx, status)
	r.debug("run ended",
		"run_id", r.state.ID,
		"status", status,
		"processed", r.state.Processed(),
		"acted", r.state.Acted())

	return domain.RunSummary{
		RunID:     r.state.ID,
		GroupID:   r.groupID,
		Status:    status,
		Processed: r.state.Processed(),
		Acted:     r.state.Acted(),
	}
}

// emitProgress is fire-and-forget; a broken sink never aborts the run.
func (r *Runner) emitProgress(ctx context.Context, status domain.RunStatus) {
	if r.progress == nil {
		return
	}
	event := domain.ProgressEvent{
		RunID:     r.state.ID,
		Processed: r.state.Processed(),
		Acted:     r.state.Acted(),
		Status:    status,
	}
	if err := r.progress.Publish(ctx, event); err != nil {
		r.debug("progress publish failed", "error", err)
	}
}

func (r *Runner) debug(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Runner) warn(msg string, args ...interface{}) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}
