// Package uniem provides task-partitioned batch sampling for contrastive
// embedding training, plus a uniform client over embedding model backends.
//
// The dataset side turns mixed-task record collections into fixed-size,
// task-pure training batches:
//
//	ds, err := dataset.LoadMediFile("medi.json", dataset.MediConfig{BatchSize: 32})
//	for i := 0; i < ds.Len(); i++ {
//	    batch, err := ds.Get(i)
//	    // feed batch to the trainer
//	}
//	ds.Refresh() // re-shuffle between epochs
//
// The encoding side wraps a backend (OpenAI, Azure, Zhipu, a local TEI or
// ollama server) with caching, rate limiting, and retries:
//
//	client, err := uniem.New(
//	    uniem.WithEncoderConfig(uniem.EncoderConfig{
//	        Type:   "openai",
//	        APIKey: os.Getenv("OPENAI_API_KEY"),
//	        Model:  "text-embedding-3-small",
//	    }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	vecs, err := client.Encode(ctx, []string{"自然语言处理"})
package uniem

import (
	"github.com/vegaviazhang/uniem/pkg/cache"
	"github.com/vegaviazhang/uniem/pkg/encoder"
	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

// Version is the current version of uniem.
const Version = "0.4.0"

// Re-export record types for convenience.
// Users can use uniem.PairRecord instead of types.PairRecord.
type (
	// Record is one contrastive training example.
	Record = types.Record

	// PairRecord is an anchor/positive pair.
	PairRecord = types.PairRecord

	// TripletRecord is an anchor/positive/negative triplet.
	TripletRecord = types.TripletRecord

	// RawRecord is a medi-format record before conversion.
	RawRecord = types.RawRecord
)

// Re-export encoder types.
type (
	// Encoder is the interface all embedding backends implement.
	Encoder = encoder.Encoder

	// EncoderConfig contains backend-specific configuration.
	EncoderConfig = encoder.Config

	// EncoderFactory creates encoder instances from configuration.
	EncoderFactory = encoder.Factory
)

// Re-export cache types.
type (
	// Cache is the vector cache interface.
	Cache = cache.Cache

	// CacheStats holds cache statistics.
	CacheStats = cache.Stats
)

// Re-export error types.
type (
	// ModelError is a standardized backend failure.
	ModelError = errors.ModelError

	// ConfigError is a fatal configuration failure.
	ConfigError = errors.ConfigError
)
