package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"FeedEngager/internal/ports"
)

// HTTPBackend talks to the generation service over its minimal JSON
// contract. Transport problems come back as errors; remote-side failures
// arrive inside the response with status "error" and a reason code.
type HTTPBackend struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ ports.GenerationBackend = (*HTTPBackend)(nil)

// NewHTTPBackend creates a reusable client for the given endpoint.
func NewHTTPBackend(endpoint, apiKey string) *HTTPBackend {
	return &HTTPBackend{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Complete posts one generation request.
func (b *HTTPBackend) Complete(ctx context.Context, genReq ports.GenerationRequest) (ports.GenerationResponse, error) {
	if b.endpoint == "" {
		return ports.GenerationResponse{}, fmt.Errorf("generation backend misconfigured")
	}

	body, err := json.Marshal(genReq)
	if err != nil {
		return ports.GenerationResponse{}, fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(body))
	if err != nil {
		return ports.GenerationResponse{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return ports.GenerationResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	// Quota exhaustion may arrive as a bare 429 without a decodable body.
	if resp.StatusCode == http.StatusTooManyRequests {
		return ports.GenerationResponse{Status: "error", ReasonCode: "QUOTA_EXCEEDED"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return ports.GenerationResponse{}, fmt.Errorf("generation service returned %s", resp.Status)
	}

	var decoded ports.GenerationResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.GenerationResponse{}, fmt.Errorf("decode response: %w", err)
	}

	return decoded, nil
}
