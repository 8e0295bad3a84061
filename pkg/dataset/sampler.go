// Package dataset provides task-partitioned batch sampling for contrastive
// training of embedding models. Records from differently sized, named
// collections are partitioned into fixed-size batches that never mix tasks,
// then presented in globally shuffled order.
//
// All randomness flows through a single injected *rand.Rand, so tests can pin
// a seed and training code can re-randomize per epoch via Refresh. Datasets
// are not safe for concurrent Refresh/Get on one instance; construct one per
// worker or serialize access.
package dataset

import (
	"math/rand/v2"

	"github.com/vegaviazhang/uniem/pkg/errors"
)

// Source describes one named record collection by its task name and size.
type Source struct {
	Task string
	Len  int
}

// TaskBatchIndex identifies one batch: every index refers to a record inside
// the collection registered under Task.
type TaskBatchIndex struct {
	Task    string
	Indices []int
}

// BatchPlan is an immutable partition of one or more collections into
// task-pure batches, in globally shuffled order. A plan is cheap to rebuild;
// rebuilding (rather than mutating) is how per-epoch re-randomization works.
type BatchPlan struct {
	batches []TaskBatchIndex
}

// Len returns the number of batches in the plan.
func (p *BatchPlan) Len() int { return len(p.batches) }

// Batch resolves a logical batch position to its TaskBatchIndex.
func (p *BatchPlan) Batch(position int) (TaskBatchIndex, error) {
	if position < 0 || position >= len(p.batches) {
		return TaskBatchIndex{}, errors.NewOutOfRangeError(position, len(p.batches))
	}
	return p.batches[position], nil
}

// BuildPlan partitions each source independently into batches of batchSize,
// then shuffles the concatenated batch list.
//
// For a source of n records, floor(n/batchSize)*batchSize indices are drawn;
// with dropLast off and a remainder, one extra batch worth of draws is added,
// repeating some records so that every batch stays full. The draws start from
// a full permutation, so with dropLast off every record appears in at least
// one batch.
//
// A source shorter than one batch, when its usable count comes out zero,
// still yields a single undersized batch holding all of its records rather
// than vanishing. Downstream collation must tolerate a short batch in this
// one case. Empty sources are skipped.
func BuildPlan(sources []Source, batchSize int, dropLast bool, rng *rand.Rand) (*BatchPlan, error) {
	if batchSize <= 0 {
		return nil, errors.NewConfigError("batch_size", "must be positive, got %d", batchSize)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	var batches []TaskBatchIndex
	for _, src := range sources {
		n := src.Len
		if n == 0 {
			continue
		}

		usable := (n / batchSize) * batchSize
		if !dropLast && n%batchSize != 0 {
			usable += batchSize
		}

		if usable == 0 {
			indices := make([]int, n)
			for i := range indices {
				indices[i] = i
			}
			batches = append(batches, TaskBatchIndex{Task: src.Task, Indices: indices})
			continue
		}

		draws := sampleIndices(n, usable, rng)
		for off := 0; off < len(draws); off += batchSize {
			batches = append(batches, TaskBatchIndex{
				Task:    src.Task,
				Indices: draws[off : off+batchSize],
			})
		}
	}

	rng.Shuffle(len(batches), func(i, j int) {
		batches[i], batches[j] = batches[j], batches[i]
	})

	return &BatchPlan{batches: batches}, nil
}

// sampleIndices returns draws indices over [0, n). The first min(n, draws)
// values are a permutation without replacement; any surplus is drawn with
// replacement to pad the final batch.
func sampleIndices(n, draws int, rng *rand.Rand) []int {
	perm := rng.Perm(n)
	if draws <= n {
		return perm[:draws]
	}
	out := make([]int, 0, draws)
	out = append(out, perm...)
	for len(out) < draws {
		out = append(out, rng.IntN(n))
	}
	return out
}
