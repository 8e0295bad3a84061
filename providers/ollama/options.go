package ollama

import "time"

// Option configures the ollama encoder.
type Option func(*Encoder)

// WithBaseURL sets the ollama address.
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
