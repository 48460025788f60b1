// Package notify provides EventSink implementations that deliver
// configuration change events to external systems.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/juke/dril-dao/pkg/tokenmeta"
)

// Actions recorded in webhook event envelopes.
const (
	ActionBaseURIConfigured = "base_uri_configured"
	ActionTokenURIChanged   = "token_uri_changed"
)

// Event is the envelope posted to the webhook endpoint.
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Action    string                 `json:"action"`
	TokenID   string                 `json:"token_id"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// Config options for the webhook sink
type Config struct {
	URL     string        // Endpoint that receives event envelopes
	Secret  string        // Optional bearer token sent with each request
	Timeout time.Duration // HTTP timeout (default: 10s)

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// WebhookSink posts one JSON envelope per event. Delivery failures are
// returned to the caller; the service treats sink errors as non-fatal.
type WebhookSink struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookSink creates a sink that POSTs events to the configured URL.
func NewWebhookSink(cfg Config) (*WebhookSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &WebhookSink{
		url:    cfg.URL,
		secret: cfg.Secret,
		client: client,
	}, nil
}

var _ tokenmeta.EventSink = (*WebhookSink)(nil)

// BaseURIConfigured delivers a base path configuration event.
func (s *WebhookSink) BaseURIConfigured(ctx context.Context, id tokenmeta.TokenID, baseURI string, useIDInPath bool) error {
	return s.post(ctx, Event{
		ID:      uuid.New(),
		Action:  ActionBaseURIConfigured,
		TokenID: id.String(),
		Metadata: map[string]interface{}{
			"base_uri":       baseURI,
			"use_id_in_path": useIDInPath,
		},
		CreatedAt: time.Now().UTC(),
	})
}

// TokenURIChanged delivers an explicit URI change event. An empty uri
// means the override was cleared.
func (s *WebhookSink) TokenURIChanged(ctx context.Context, id tokenmeta.TokenID, uri string) error {
	return s.post(ctx, Event{
		ID:      uuid.New(),
		Action:  ActionTokenURIChanged,
		TokenID: id.String(),
		Metadata: map[string]interface{}{
			"uri": uri,
		},
		CreatedAt: time.Now().UTC(),
	})
}

func (s *WebhookSink) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.secret != "" {
		req.Header.Set("Authorization", "Bearer "+s.secret)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending event: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
