// Package openai provides the OpenAI embedding backend. It serves as the
// reference implementation for the other encoder adapters.
package openai

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
	"github.com/vegaviazhang/uniem/pkg/types"
)

const (
	// ProviderName is the identifier for this backend.
	ProviderName = "openai"

	// DefaultBaseURL is the default OpenAI API endpoint.
	DefaultBaseURL = "https://api.openai.com/v1"

	// DefaultModel is used when no model is configured.
	DefaultModel = "text-embedding-ada-002"
)

// Encoder implements the OpenAI embeddings API adapter.
type Encoder struct {
	apiKey     string
	baseURL    string
	model      string
	headers    map[string]string
	httpClient *http.Client
}

// New creates a new OpenAI encoder with the given options.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		headers:    make(map[string]string),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an encoder from a Config struct.
func NewFromConfig(cfg encoder.Config) (encoder.Encoder, error) {
	e := New(
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
	)
	for k, v := range cfg.Headers {
		e.headers[k] = v
	}
	return e, nil
}

// Name returns the backend identifier.
func (e *Encoder) Name() string { return ProviderName }

// Model returns the configured model identifier.
func (e *Encoder) Model() string { return e.model }

// Encode embeds the given texts in one API call. The API may return
// embeddings out of order; results are restored to input order by index.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	req := &types.EmbeddingRequest{Model: e.model, Input: texts}
	if err := req.Validate(); err != nil {
		return nil, errors.NewInvalidRequestError(ProviderName, e.model, err.Error())
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(e.baseURL, "/") + "/embeddings"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)
	for k, v := range e.headers {
		httpReq.Header.Set(k, v)
	}

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

	var embResp types.EmbeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(embResp.Data) != len(texts) {
		return nil, errors.NewInternalError(ProviderName, e.model,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embResp.Data)))
	}

	return embResp.Vectors(), nil
}
