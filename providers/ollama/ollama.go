// Package ollama provides an adapter for embedding models served by a local
// ollama instance.
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/pkg/errors"
)

const (
	// ProviderName is the identifier for this backend.
	ProviderName = "ollama"

	// DefaultBaseURL is the default ollama address.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultModel is used when no model is configured.
	DefaultModel = "bge-m3"
)

// Encoder implements the ollama embeddings adapter.
type Encoder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// New creates a new ollama encoder with the given options.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an encoder from a Config struct.
func NewFromConfig(cfg encoder.Config) (encoder.Encoder, error) {
	return New(
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
	), nil
}

// Name returns the backend identifier.
func (e *Encoder) Name() string { return ProviderName }

// Model returns the configured model identifier.
func (e *Encoder) Model() string { return e.model }

// Encode embeds the given texts in one server call.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.NewInvalidRequestError(ProviderName, e.model, "input cannot be empty")
	}

	body, err := json.Marshal(embedRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(e.baseURL, "/") + "/api/embed"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, errors.MapStatusCode(ProviderName, e.model, resp.StatusCode, string(respBody))
	}

	var embResp embedResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(embResp.Embeddings) != len(texts) {
		return nil, errors.NewInternalError(ProviderName, e.model,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embResp.Embeddings)))
	}
	return embResp.Embeddings, nil
}
