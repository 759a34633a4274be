package domain

import (
	"sync/atomic"
	"time"
)

// RunStatus enumerates terminal run outcomes plus the in-flight state
// reported on intermediate progress events.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusCancelled RunStatus = "cancelled"
	StatusFailed    RunStatus = "failed"
)

// RunConfig is an immutable snapshot of everything governing one run.
// It is captured once at run start so settings changed mid-run never race
// with an in-flight pipeline.
type RunConfig struct {
	MaxItems            int
	ActionDelay         time.Duration
	AuthorRecencyWindow time.Duration // 0 disables the author-recency filter

	SkipPromoted       bool
	SkipCompanyAuthors bool
	SkipFriendActivity bool
	Blacklist          []string
	MaxAgeHours        float64 // 0 disables the age filter

	Style         string
	EnrichContext bool
	Variations    int // 1..3 generation variations per candidate

	// RecordRetention bounds dedup record age; older entries are evicted
	// opportunistically at run start.
	RecordRetention time.Duration
}

// RunState is the mutable state of exactly one run, owned by the run
// controller that created it. Cancellation is a one-way transition of the
// active flag, observed only at defined suspension points.
type RunState struct {
	ID        string
	StartedAt time.Time

	active    atomic.Bool
	processed atomic.Int64
	acted     atomic.Int64
}

// NewRunState returns an active state stamped with the given run id.
func NewRunState(id string) *RunState {
	s := &RunState{ID: id, StartedAt: time.Now()}
	s.active.Store(true)
	return s
}

// Active reports whether the run may keep going.
func (s *RunState) Active() bool {
	return s.active.Load()
}

// Cancel requests cooperative termination. The in-flight step finishes on
// its own; the loop observes the flag at the next suspension point.
func (s *RunState) Cancel() {
	s.active.Store(false)
}

// Processed returns how many candidates entered the pipeline.
func (s *RunState) Processed() int {
	return int(s.processed.Load())
}

// Acted returns how many candidates were successfully engaged.
func (s *RunState) Acted() int {
	return int(s.acted.Load())
}

// MarkProcessed increments the processed counter.
func (s *RunState) MarkProcessed() {
	s.processed.Add(1)
}

// MarkActed increments the acted counter.
func (s *RunState) MarkActed() {
	s.acted.Add(1)
}

// RunSummary is the final account of one run.
type RunSummary struct {
	RunID     string
	GroupID   string
	Status    RunStatus
	Processed int
	Acted     int
}

// ProgressEvent is a fire-and-forget notification for external observers.
type ProgressEvent struct {
	RunID     string    `json:"run_id"`
	Processed int       `json:"processed"`
	Acted     int       `json:"acted"`
	Status    RunStatus `json:"status"`
}

// QueueItem is one scheduled run: a group to engage with and the config
// snapshot governing it. Items are consumed strictly in FIFO order.
type QueueItem struct {
	GroupID string
	Config  RunConfig
}
