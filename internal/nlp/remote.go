package nlp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemoteConfig holds the configuration for a remote tagging service.
type RemoteConfig struct {
	BaseURL string        // Service base URL, e.g. http://localhost:8642
	Model   string        // Model identifier passed to the service
	Timeout time.Duration // Per-request timeout (default: 30s)
}

// RemoteTagger calls an external tagging service over JSON/HTTP. The service
// exposes POST {base}/annotate taking {"model": ..., "text": ...} and
// returning an Annotation document.
type RemoteTagger struct {
	config RemoteConfig
	client *http.Client
}

// NewRemoteTagger creates a tagger backed by a remote tagging service.
func NewRemoteTagger(cfg RemoteConfig) *RemoteTagger {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &RemoteTagger{
		config: cfg,
		client: &http.Client{Timeout: timeout},
	}
}

// Model returns the remote model identifier.
func (t *RemoteTagger) Model() string {
	return t.config.Model
}

// annotateRequest is the wire request for the remote service.
type annotateRequest struct {
	Model string `json:"model"`
	Text  string `json:"text"`
}

// Annotate sends the text to the remote service. All transport and protocol
// failures are reported as ErrBackendUnavailable so the caller can degrade.
func (t *RemoteTagger) Annotate(ctx context.Context, text string) (*Annotation, error) {
	body, err := json.Marshal(annotateRequest{Model: t.config.Model, Text: text})
	if err != nil {
		return nil, fmt.Errorf("nlp: failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.config.BaseURL+"/annotate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("nlp: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nlp: request to tagging service failed: %w", ErrBackendUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nlp: tagging service returned status %d: %w", resp.StatusCode, ErrBackendUnavailable)
	}

	var ann Annotation
	if err := json.NewDecoder(resp.Body).Decode(&ann); err != nil {
		return nil, fmt.Errorf("nlp: failed to decode annotation: %w", ErrBackendUnavailable)
	}
	if ann.Text == "" {
		ann.Text = text
	}
	return &ann, nil
}
