// Package azure provides the Azure OpenAI embedding backend. Azure deploys
// one model per deployment and is routinely rate limited more aggressively
// than the public OpenAI endpoint, so this adapter sends one text per request
// and paces requests with a client-side limiter.
package azure

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

const (
	// ProviderName is the identifier for this backend.
	ProviderName = "azure"

	// DefaultAPIVersion is the Azure OpenAI API version used for embeddings.
	DefaultAPIVersion = "2023-05-15"

	// DefaultModel is used when no deployment name is configured.
	DefaultModel = "text-embedding-ada-002"

	// DefaultRequestsPerSecond paces outgoing requests.
	DefaultRequestsPerSecond = 20
)

// Encoder implements the Azure OpenAI embeddings adapter.
type Encoder struct {
	apiKey     string
	baseURL    string
	model      string // deployment name
	apiVersion string
	limiter    *rate.Limiter
	httpClient *http.Client
}

// New creates a new Azure encoder with the given options. BaseURL must point
// at the Azure resource endpoint (https://<resource>.openai.azure.com).
func New(opts ...Option) *Encoder {
	e := &Encoder{
		model:      DefaultModel,
		apiVersion: DefaultAPIVersion,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an encoder from a Config struct.
func NewFromConfig(cfg encoder.Config) (encoder.Encoder, error) {
	if cfg.BaseURL == "" {
		return nil, errors.NewConfigError("base_url", "azure requires the resource endpoint")
	}
	return New(
		WithAPIKey(cfg.APIKey),
		WithBaseURL(cfg.BaseURL),
		WithModel(cfg.Model),
		WithTimeout(cfg.Timeout),
	), nil
}

// Name returns the backend identifier.
func (e *Encoder) Name() string { return ProviderName }

// Model returns the configured deployment name.
func (e *Encoder) Model() string { return e.model }

// Encode embeds texts one request at a time, pacing requests through the
// limiter. Results are returned in input order.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.NewInvalidRequestError(ProviderName, e.model, "input cannot be empty")
	}

	vecs := make([][]float32, 0, len(texts))
	for i, text := range texts {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for rate limiter: %w", err)
		}
		vec, err := e.encodeOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		vecs = append(vecs, vec)
	}
	return vecs, nil
}

func (e *Encoder) encodeOne(ctx context.Context, text string) ([]float32, error) {
	req := &types.EmbeddingRequest{Input: []string{text}}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/embeddings?api-version=%s",
		strings.TrimSuffix(e.baseURL, "/"), e.model, e.apiVersion)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", e.apiKey)

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
	if len(embResp.Data) == 0 {
		return nil, errors.NewInternalError(ProviderName, e.model, "response contains no embeddings")
	}
	return embResp.Data[0].Embedding, nil
}
