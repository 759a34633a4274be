package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FeedEngager/internal/domain"
	"FeedEngager/internal/ports"
)

// WebhookSink posts progress events to an external observer endpoint.
// Publishing is best-effort; callers ignore the returned error.
type WebhookSink struct {
	url    string
	client *http.Client
}

var _ ports.ProgressSink = (*WebhookSink)(nil)

// NewWebhookSink registers the observer endpoint.
func NewWebhookSink(url string) *WebhookSink {
	return &WebhookSink{
		url:    url,
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Publish posts one event as JSON.
func (s *WebhookSink) Publish(ctx context.Context, event domain.ProgressEvent) error {
	if s.url == "" {
		return fmt.Errorf("webhook sink misconfigured")
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal progress event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("progress webhook returned %s", resp.Status)
	}

	return nil
}
