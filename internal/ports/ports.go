package ports

import (
	"context"

	"FeedEngager/internal/domain"
)

// CandidateSource supplies the ordered, finite stream of feed candidates
// for one run. Re-invoking List rescans from scratch.
type CandidateSource interface {
	List(ctx context.Context) ([]domain.Candidate, error)
}

// Surface is an opaque handle to an input surface opened on the external
// action side. Only the ActionSurface implementation interprets it.
type Surface interface{}

// ActionSurface drives the external engagement surface step by step.
// A nil surface or false return at any step means "cannot proceed".
type ActionSurface interface {
	OpenInputSurface(ctx context.Context, candidate domain.Candidate) (Surface, error)
	InjectText(ctx context.Context, surface Surface, text string) error
	WaitReady(ctx context.Context, surface Surface) bool
	Trigger(ctx context.Context, surface Surface) bool
}

// GenerationRequest is the minimal contract with the AI backend.
type GenerationRequest struct {
	Content         string `json:"content"`
	StyleGuide      string `json:"style_guide"`
	AdjacentContext string `json:"adjacent_context,omitempty"`
}

// GenerationResponse reports success text or a typed failure with a
// conservative fallback.
type GenerationResponse struct {
	Status       string `json:"status"` // "success" | "error"
	Text         string `json:"text"`
	FallbackText string `json:"fallback_text"`
	ReasonCode   string `json:"reason_code"`
}

// GenerationBackend performs one remote completion. A returned error means
// the backend was unreachable; remote-side failures come back in the
// response with Status "error".
type GenerationBackend interface {
	Complete(ctx context.Context, req GenerationRequest) (GenerationResponse, error)
}

// Entry is one stored key/value pair.
type Entry struct {
	Key   string
	Value string
}

// KeyValueStore is the durable persistence collaborator backing dedup
// records. Set is first-write-wins: writing an existing key changes nothing.
type KeyValueStore interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys []string) error
	List(ctx context.Context, prefix string) ([]Entry, error)
}

// ProgressSink receives fire-and-forget run notifications. Callers ignore
// publish failures; a broken sink must never abort a run.
type ProgressSink interface {
	Publish(ctx context.Context, event domain.ProgressEvent) error
}
