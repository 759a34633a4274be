package generation

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"FeedEngager/internal/ports"
)

// Failure reason codes. Quota exhaustion terminates the whole run upstream;
// everything else is skippable per candidate.
const (
	ReasonQuotaExceeded = "QUOTA_EXCEEDED"
	ReasonTransient     = "TRANSIENT"
	ReasonMalformed     = "MALFORMED_RESPONSE"
)

// maxVariations bounds the parallel sub-calls for a single candidate.
const maxVariations = 3

const genericFallback = "Thanks for sharing this."

// Result is the tagged outcome of one generation attempt. Remote failures
// never surface as Go errors; they arrive as a failed Result carrying a
// conservative fallback so the pipeline can skip gracefully.
type Result struct {
	OK       bool
	Text     string
	Reason   string
	Fallback string
}

// QuotaExhausted reports whether this failure should stop the run.
func (r Result) QuotaExhausted() bool {
	return !r.OK && r.Reason == ReasonQuotaExceeded
}

// Client wraps the AI backend with failure mapping and quota awareness.
type Client struct {
	backend ports.GenerationBackend
	logger  *slog.Logger
}

// NewClient wires the backend collaborator.
func NewClient(backend ports.GenerationBackend, logger *slog.Logger) *Client {
	return &Client{backend: backend, logger: logger}
}

// Generate produces one personalized response for the given content.
func (c *Client) Generate(ctx context.Context, content, style, adjacent string) Result {
	if c.backend == nil {
		return failure(ReasonTransient, "")
	}

	resp, err := c.backend.Complete(ctx, ports.GenerationRequest{
		Content:         content,
		StyleGuide:      style,
		AdjacentContext: adjacent,
	})
	if err != nil {
		c.debug("generation backend unreachable", "error", err)
		return failure(ReasonTransient, "")
	}

	switch resp.Status {
	case "success":
		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return failure(ReasonMalformed, resp.FallbackText)
		}
		return Result{OK: true, Text: text}
	case "error":
		reason := resp.ReasonCode
		if reason == "" {
			reason = ReasonTransient
		}
		c.debug("generation failed remotely", "reason", reason)
		return failure(reason, resp.FallbackText)
	default:
		return failure(ReasonMalformed, resp.FallbackText)
	}
}

// GenerateVariations fans out up to maxVariations parallel attempts for one
// candidate. This is the only parallelism in the engine; it never spans
// candidates. A quota failure cancels the remaining attempts.
func (c *Client) GenerateVariations(ctx context.Context, content, style, adjacent string, n int) []Result {
	if n < 1 {
		n = 1
	}
	if n > maxVariations {
		n = maxVariations
	}
	if n == 1 {
		return []Result{c.Generate(ctx, content, style, adjacent)}
	}

	results := make([]Result, n)
	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		group.Go(func() error {
			results[i] = c.Generate(groupCtx, content, style, adjacent)
			if results[i].QuotaExhausted() {
				return context.Canceled
			}
			return nil
		})
	}
	// The only group error is the cancellation used to stop remaining
	// attempts after quota exhaustion; the results carry the outcome.
	_ = group.Wait()
	return results
}

// Pick returns the preferred result from a variation batch: the first
// success, else the first quota failure, else the first failure.
func Pick(results []Result) Result {
	for _, r := range results {
		if r.OK {
			return r
		}
	}
	for _, r := range results {
		if r.QuotaExhausted() {
			return r
		}
	}
	if len(results) > 0 {
		return results[0]
	}
	return failure(ReasonTransient, "")
}

func failure(reason, fallback string) Result {
	if strings.TrimSpace(fallback) == "" {
		fallback = genericFallback
	}
	return Result{OK: false, Reason: reason, Fallback: fallback}
}

func (c *Client) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
