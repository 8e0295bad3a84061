// Package providers provides a unified registry for all embedding backend
// implementations. It allows automatic encoder creation from configuration.
package providers

import (
	"fmt"
	"sync"

	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/providers/azure"
	"github.com/vegaviazhang/uniem/providers/ollama"
	"github.com/vegaviazhang/uniem/providers/openai"
	"github.com/vegaviazhang/uniem/providers/tei"
	"github.com/vegaviazhang/uniem/providers/zhipu"
)

var (
	registry     = make(map[string]encoder.Factory)
	registryOnce sync.Once
	registryMu   sync.RWMutex
)

// Register registers an encoder factory with the given type name.
func Register(encoderType string, factory encoder.Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[encoderType] = factory
}

// Get returns the factory for the given encoder type.
func Get(encoderType string) (encoder.Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[encoderType]
	return f, ok
}

// Create creates an encoder instance from configuration.
func Create(cfg encoder.Config) (encoder.Encoder, error) {
	registryMu.RLock()
	factory, ok := registry[cfg.Type]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown encoder type: %s (available: %v)", cfg.Type, List())
	}

	return factory(cfg)
}

// List returns all registered encoder type names.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// RegisterBuiltins registers all built-in encoder factories.
// This is called automatically on first use.
func RegisterBuiltins() {
	registryOnce.Do(func() {
		Register("openai", openai.NewFromConfig)
		Register("azure", azure.NewFromConfig)
		Register("zhipu", zhipu.NewFromConfig)
		Register("tei", tei.NewFromConfig)
		Register("ollama", ollama.NewFromConfig)
	})
}

func init() {
	RegisterBuiltins()
}
