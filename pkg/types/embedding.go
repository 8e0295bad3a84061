package types

import "fmt"

// EmbeddingRequest is an OpenAI-compatible embedding request. Providers that
// speak a different wire format translate from this shape.
type EmbeddingRequest struct {
	// Model is the ID of the model to use.
	Model string `json:"model"`

	// Input is the batch of texts to embed.
	Input []string `json:"input"`

	// EncodingFormat is the format to return the embeddings in.
	// Can be "float" or "base64". Defaults to "float".
	EncodingFormat string `json:"encoding_format,omitempty"`

	// Dimensions is the number of dimensions the resulting output embeddings
	// should have. Only supported by models that allow shortening.
	Dimensions int `json:"dimensions,omitempty"`
}

// Validate checks if the embedding request is valid.
func (r *EmbeddingRequest) Validate() error {
	if len(r.Input) == 0 {
		return fmt.Errorf("input cannot be empty")
	}
	for i, s := range r.Input {
		if s == "" {
			return fmt.Errorf("input contains empty string at index %d", i)
		}
	}
	return nil
}

// EmbeddingResponse is an OpenAI-compatible embedding response.
type EmbeddingResponse struct {
	Object string            `json:"object"`
	Data   []EmbeddingObject `json:"data"`
	Model  string            `json:"model"`
	Usage  Usage             `json:"usage"`
}

// EmbeddingObject is a single embedding in a response. Index is the position
// of the corresponding input text; responses are not guaranteed to arrive in
// input order.
type EmbeddingObject struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// Usage contains token accounting for an embedding request.
type Usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Vectors extracts the embeddings from a response in input order.
func (r *EmbeddingResponse) Vectors() [][]float32 {
	out := make([][]float32, len(r.Data))
	for _, obj := range r.Data {
		if obj.Index >= 0 && obj.Index < len(out) {
			out[obj.Index] = obj.Embedding
		}
	}
	return out
}
