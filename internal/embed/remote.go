package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// RemoteConfig configures a RemoteEmbedder's HTTP endpoint.
type RemoteConfig struct {
	Endpoint string // e.g. "http://localhost:11434/api/embeddings"
	Model    string
	Timeout  time.Duration
}

// RemoteEmbedder calls an HTTP embedding endpoint (an Ollama-style
// "/api/embeddings" contract) for each text. It is never constructed by
// the default ingestion or search path; a caller opts into it explicitly.
type RemoteEmbedder struct {
	client *http.Client
	cfg    RemoteConfig

	mu     sync.RWMutex
	closed bool
}

var _ Embedder = (*RemoteEmbedder)(nil)

// NewRemoteEmbedder returns a RemoteEmbedder bound to cfg, applying a
// default timeout if none is set.
func NewRemoteEmbedder(cfg RemoteConfig) *RemoteEmbedder {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &RemoteEmbedder{
		client: &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
	}
}

type remoteRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type remoteResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed posts text to the remote endpoint and returns its embedding.
func (e *RemoteEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	closed := e.closed
	e.mu.RUnlock()
	if closed {
		return nil, fmt.Errorf("embed: remote embedder is closed")
	}
	if strings.TrimSpace(text) == "" {
		return make([]float32, Dimensions), nil
	}

	body, err := json.Marshal(remoteRequest{Model: e.cfg.Model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("embed: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embed: remote returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed remoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("embed: decode response: %w", err)
	}
	return parsed.Embedding, nil
}

// EmbedBatch embeds each text sequentially; the remote contract this
// client targets has no native batch endpoint.
func (e *RemoteEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := e.Embed(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

// Dimensions returns the vector width this client expects back.
func (e *RemoteEmbedder) Dimensions() int { return Dimensions }

// ModelName returns the configured remote model identifier.
func (e *RemoteEmbedder) ModelName() string { return e.cfg.Model }

// Available sends a GET to the configured endpoint URL and reports whether
// any HTTP response came back, whatever its status code.
func (e *RemoteEmbedder) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.cfg.Endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return true
}

// Close marks the embedder closed; subsequent Embed calls fail.
func (e *RemoteEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}
