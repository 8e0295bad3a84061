// Package encoder defines the public interface for embedding model adapters.
// Each backend (OpenAI, Azure OpenAI, Zhipu, a local TEI or ollama server)
// implements this interface so that benchmark and training code can swap
// models without changing the calling convention.
package encoder

import (
	"context"
	"time"
)

// Encoder converts batches of sentences into embedding vectors.
type Encoder interface {
	// Name returns the backend identifier (e.g. "openai", "tei").
	Name() string

	// Model returns the model identifier the encoder is bound to.
	Model() string

	// Encode embeds the given texts, returning one vector per input text in
	// input order. Implementations send the whole slice in one upstream call;
	// chunking large inputs is the caller's concern (see Chunk).
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Config contains backend-specific configuration.
type Config struct {
	Name    string
	Type    string
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Headers map[string]string
}

// Factory creates encoder instances from configuration.
type Factory func(cfg Config) (Encoder, error)

// Chunk splits texts into consecutive groups of at most batchSize. The last
// chunk may be shorter. A non-positive batchSize yields a single chunk.
func Chunk(texts []string, batchSize int) [][]string {
	if len(texts) == 0 {
		return nil
	}
	if batchSize <= 0 {
		return [][]string{texts}
	}
	chunks := make([][]string, 0, (len(texts)+batchSize-1)/batchSize)
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		chunks = append(chunks, texts[start:end])
	}
	return chunks
}
