package tei

import "time"

// Option configures the TEI encoder.
type Option func(*Encoder)

// WithBaseURL sets the server address.
func WithBaseURL(url string) Option {
	return func(e *Encoder) {
		if url != "" {
			e.baseURL = url
		}
	}
}

// WithModel records the checkpoint identifier for reporting.
func WithModel(model string) Option {
	return func(e *Encoder) {
		e.model = model
	}
}

// WithTruncate controls server-side truncation of over-long inputs.
func WithTruncate(truncate bool) Option {
	return func(e *Encoder) {
		e.truncate = truncate
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
