package types_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegaviazhang/uniem/pkg/types"
)

func TestEmbeddingRequest_Validate(t *testing.T) {
	req := &types.EmbeddingRequest{Model: "m", Input: []string{"hello"}}
	require.NoError(t, req.Validate())

	req = &types.EmbeddingRequest{Model: "m"}
	assert.Error(t, req.Validate())

	req = &types.EmbeddingRequest{Model: "m", Input: []string{"a", ""}}
	assert.Error(t, req.Validate())
}

func TestEmbeddingResponse_Vectors_RestoresInputOrder(t *testing.T) {
	resp := &types.EmbeddingResponse{
		Data: []types.EmbeddingObject{
			{Index: 1, Embedding: []float32{0.2}},
			{Index: 0, Embedding: []float32{0.1}},
			{Index: 2, Embedding: []float32{0.3}},
		},
	}

	vecs := resp.Vectors()
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{0.1}, vecs[0])
	assert.Equal(t, []float32{0.2}, vecs[1])
	assert.Equal(t, []float32{0.3}, vecs[2])
}
