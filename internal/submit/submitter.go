package submit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

// Submitter performs the engage action for one candidate. A false return
// means nothing external happened and the candidate may be retried on a
// later run; the caller must not write any dedup record for it.
type Submitter interface {
	Submit(ctx context.Context, candidate domain.Candidate, text string) bool
}

// SurfaceSubmitter sequences the multi-step interaction against the
// external action surface: open, inject, wait for readiness, trigger. Any
// step signalling failure aborts the item immediately.
type SurfaceSubmitter struct {
	surface ports.ActionSurface
	logger  *slog.Logger
}

var _ Submitter = (*SurfaceSubmitter)(nil)

// NewSurfaceSubmitter wires the action surface collaborator.
func NewSurfaceSubmitter(surface ports.ActionSurface, logger *slog.Logger) *SurfaceSubmitter {
	return &SurfaceSubmitter{surface: surface, logger: logger}
}

// Submit runs the step sequence and reports whether the final trigger was
// acknowledged.
func (s *SurfaceSubmitter) Submit(ctx context.Context, candidate domain.Candidate, text string) bool {
	if s.surface == nil {
		return false
	}

	alias := candidate.CanonicalAlias()

	input, err := s.surface.OpenInputSurface(ctx, candidate)
	if err != nil || input == nil {
		s.debug("input surface unavailable", "item", alias, "error", err)
		return false
	}

	if err := s.surface.InjectText(ctx, input, text); err != nil {
		s.debug("text injection failed", "item", alias, "error", err)
		return false
	}

	if !s.surface.WaitReady(ctx, input) {
		s.debug("surface never became ready", "item", alias)
		return false
	}

	if !s.surface.Trigger(ctx, input) {
		s.debug("trigger not acknowledged", "item", alias)
		return false
	}

	return true
}

func (s *SurfaceSubmitter) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

// StagedAction is a generated response held for human approval.
type StagedAction struct {
	Candidate domain.Candidate
	Text      string
	StagedAt  time.Time
}

// StagingSubmitter implements manual-approve mode: instead of triggering
// the external surface it queues the generated response for review. Staging
// counts as a successful action so the run records the item and never
// re-generates for it.
type StagingSubmitter struct {
	mu     sync.Mutex
	staged []StagedAction
}

var _ Submitter = (*StagingSubmitter)(nil)

// NewStagingSubmitter returns an empty staging queue.
func NewStagingSubmitter() *StagingSubmitter {
	return &StagingSubmitter{}
}

// Submit stages the response; it never fails.
func (s *StagingSubmitter) Submit(ctx context.Context, candidate domain.Candidate, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.staged = append(s.staged, StagedAction{Candidate: candidate, Text: text, StagedAt: time.Now()})
	return true
}

// Drain returns and clears everything staged so far, in submission order.
func (s *StagingSubmitter) Drain() []StagedAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := s.staged
	s.staged = nil
	return staged
}
