package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_Deterministic(t *testing.T) {
	k1 := Key("openai", "text-embedding-3-small", "你好")
	k2 := Key("openai", "text-embedding-3-small", "你好")
	assert.Equal(t, k1, k2)
}

func TestKey_SeparatesBackendAndModel(t *testing.T) {
	base := Key("openai", "text-embedding-3-small", "hello")
	assert.NotEqual(t, base, Key("azure", "text-embedding-3-small", "hello"))
	assert.NotEqual(t, base, Key("openai", "text-embedding-3-large", "hello"))
	assert.NotEqual(t, base, Key("openai", "text-embedding-3-small", "hello "))

	// Field boundaries must not be ambiguous.
	assert.NotEqual(t, Key("a", "bc", "x"), Key("ab", "c", "x"))
}
