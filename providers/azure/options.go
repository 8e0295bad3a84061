package azure

import (
	"time"

	"golang.org/x/time/rate"
)

// Option configures the Azure encoder.
type Option func(*Encoder)

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(e *Encoder) {
		e.apiKey = key
	}
}

// WithBaseURL sets the Azure resource endpoint.
func WithBaseURL(url string) Option {
	return func(e *Encoder) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithModel sets the deployment name.
func WithModel(model string) Option {
	return func(e *Encoder) {
		if model != "" {
			e.model = model
		}
	}
}

// WithAPIVersion overrides the API version.
func WithAPIVersion(version string) Option {
	return func(e *Encoder) {
		if version != "" {
			e.apiVersion = version
		}
	}
}

// WithRequestsPerSecond adjusts the client-side request pacing.
func WithRequestsPerSecond(rps float64) Option {
	return func(e *Encoder) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Encoder) {
		if timeout > 0 {
			e.httpClient.Timeout = timeout
		}
	}
}
