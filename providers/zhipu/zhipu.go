// Package zhipu provides the Zhipu AI embedding backend. Zhipu API keys have
// the form "<id>.<secret>" and requests authenticate with a short-lived JWT
// signed by the secret half.
package zhipu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"

	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

const (
	// ProviderName is the identifier for this backend.
	ProviderName = "zhipu"

	// DefaultBaseURL is the Zhipu open platform endpoint.
	DefaultBaseURL = "https://open.bigmodel.cn/api/paas/v4"

	// DefaultModel is used when no model is configured.
	DefaultModel = "embedding-2"

	// TokenTTL is how long a signed token stays valid.
	TokenTTL = 30 * time.Minute
)

// Encoder implements the Zhipu embeddings adapter.
type Encoder struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client

	tokenCache struct {
		sync.Mutex
		token string
		exp   time.Time
	}
}

// New creates a new Zhipu encoder with the given options.
func New(opts ...Option) *Encoder {
	e := &Encoder{
		baseURL:    DefaultBaseURL,
		model:      DefaultModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an encoder from a Config struct.
func NewFromConfig(cfg encoder.Config) (encoder.Encoder, error) {
	if !strings.Contains(cfg.APIKey, ".") {
		return nil, errors.NewConfigError("api_key", "zhipu keys must look like <id>.<secret>")
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

// Model returns the configured model identifier.
func (e *Encoder) Model() string { return e.model }

// Encode embeds the given texts in one API call.
func (e *Encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	req := &types.EmbeddingRequest{Model: e.model, Input: texts}
	if err := req.Validate(); err != nil {
		return nil, errors.NewInvalidRequestError(ProviderName, e.model, err.Error())
	}

	token, err := e.getJWT()
	if err != nil {
		return nil, fmt.Errorf("generate jwt: %w", err)
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
	httpReq.Header.Set("Authorization", "Bearer "+token)

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

func (e *Encoder) getJWT() (string, error) {
	e.tokenCache.Lock()
	defer e.tokenCache.Unlock()

	if e.tokenCache.token != "" && time.Now().Before(e.tokenCache.exp) {
		return e.tokenCache.token, nil
	}

	parts := strings.Split(e.apiKey, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid api key format")
	}
	id, secret := parts[0], parts[1]

	now := time.Now()
	exp := now.Add(TokenTTL)

	payload := jwt.MapClaims{
		"api_key":   id,
		"exp":       exp.UnixMilli(),
		"timestamp": now.UnixMilli(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)
	token.Header["sign_type"] = "SIGN"

	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	e.tokenCache.token = signedToken
	e.tokenCache.exp = exp.Add(-1 * time.Minute)
	return signedToken, nil
}
