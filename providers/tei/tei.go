// Package tei provides an adapter for a text-embeddings-inference server, the
// standard way to serve local transformer checkpoints (M3E, Erlangshen,
// Luotuo and friends) over HTTP.
package tei

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
	ProviderName = "tei"

	// DefaultBaseURL assumes a locally running server.
	DefaultBaseURL = "http://localhost:8080"
)

// Encoder implements the text-embeddings-inference adapter.
type Encoder struct {
	baseURL    string
	model      string // informational; the server is bound to one checkpoint
	truncate   bool
	httpClient *http.Client
}

type embedRequest struct {
	Inputs   []string `json:"inputs"`
	Truncate bool     `json:"truncate,omitempty"`
}

// New creates a new TEI encoder with the given options.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		baseURL:    DefaultBaseURL,
		truncate:   true,
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

// Model returns the checkpoint identifier the server was started with.
func (e *Encoder) Model() string { return e.model }

// Encode embeds the given texts in one server call. The server returns
// vectors in input order.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.NewInvalidRequestError(ProviderName, e.model, "input cannot be empty")
	}

	body, err := json.Marshal(embedRequest{Inputs: texts, Truncate: e.truncate})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimSuffix(e.baseURL, "/") + "/embed"
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

	var vecs [][]float32
	if err := json.Unmarshal(respBody, &vecs); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, errors.NewInternalError(ProviderName, e.model,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(vecs)))
	}
	return vecs, nil
}
