package zhipu

import "time"

// Option configures the Zhipu encoder.
type Option func(*Encoder)

// WithAPIKey sets the API key ("<id>.<secret>").
func WithAPIKey(key string) Option {
	return func(e *Encoder) {
		e.apiKey = key
	}
}

// WithBaseURL sets the base URL.
func WithBaseURL(url string) Option {
	return func(e *Encoder) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithModel sets the embedding model.
func WithModel(model string) Option {
	return func(e *Encoder) {
		if model != "" {
			e.model = model
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
