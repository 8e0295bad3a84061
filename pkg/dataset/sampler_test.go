package dataset

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegaviazhang/uniem/pkg/errors"
)

func testRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestBuildPlan_DropLast(t *testing.T) {
	// 10 records, batch size 4, drop last: exactly 2 full batches, 2 records
	// excluded from this cycle.
	plan, err := BuildPlan([]Source{{Task: "a", Len: 10}}, 4, true, testRand(1))
	require.NoError(t, err)

	require.Equal(t, 2, plan.Len())
	seen := map[int]bool{}
	for i := 0; i < plan.Len(); i++ {
		tbi, err := plan.Batch(i)
		require.NoError(t, err)
		assert.Equal(t, "a", tbi.Task)
		assert.Len(t, tbi.Indices, 4)
		for _, idx := range tbi.Indices {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, 10)
			assert.False(t, seen[idx], "index %d drawn twice without replacement", idx)
			seen[idx] = true
		}
	}
	assert.Len(t, seen, 8)
}

func TestBuildPlan_PadLast(t *testing.T) {
	// Same collection without drop last: 3 batches of 4, i.e. 12 draws over
	// 10 records with exactly 2 repeats, and every record covered.
	plan, err := BuildPlan([]Source{{Task: "a", Len: 10}}, 4, false, testRand(2))
	require.NoError(t, err)

	require.Equal(t, 3, plan.Len())
	counts := map[int]int{}
	total := 0
	for i := 0; i < plan.Len(); i++ {
		tbi, err := plan.Batch(i)
		require.NoError(t, err)
		assert.Len(t, tbi.Indices, 4)
		for _, idx := range tbi.Indices {
			counts[idx]++
			total++
		}
	}
	assert.Equal(t, 12, total)
	assert.Len(t, counts, 10, "every record must be reachable when padding")
}

func TestBuildPlan_ShortCollectionFallback(t *testing.T) {
	// 2 records, batch size 4, drop last: a single undersized batch keeps the
	// collection from being silently lost.
	plan, err := BuildPlan([]Source{{Task: "tiny", Len: 2}}, 4, true, testRand(3))
	require.NoError(t, err)

	require.Equal(t, 1, plan.Len())
	tbi, err := plan.Batch(0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, tbi.Indices)
}

func TestBuildPlan_ShortCollectionPadded(t *testing.T) {
	// Without drop last a short collection still yields exactly one full-size
	// batch, repeating records to fill it.
	plan, err := BuildPlan([]Source{{Task: "tiny", Len: 2}}, 4, false, testRand(4))
	require.NoError(t, err)

	require.Equal(t, 1, plan.Len())
	tbi, err := plan.Batch(0)
	require.NoError(t, err)
	require.Len(t, tbi.Indices, 4)
	seen := map[int]bool{}
	for _, idx := range tbi.Indices {
		assert.Contains(t, []int{0, 1}, idx)
		seen[idx] = true
	}
	assert.Len(t, seen, 2)
}

func TestBuildPlan_TaskPurity(t *testing.T) {
	sources := []Source{
		{Task: "a", Len: 17},
		{Task: "b", Len: 5},
		{Task: "c", Len: 40},
	}
	plan, err := BuildPlan(sources, 8, false, testRand(5))
	require.NoError(t, err)

	perTask := map[string]int{}
	for i := 0; i < plan.Len(); i++ {
		tbi, err := plan.Batch(i)
		require.NoError(t, err)
		perTask[tbi.Task]++
		max := map[string]int{"a": 17, "b": 5, "c": 40}[tbi.Task]
		for _, idx := range tbi.Indices {
			assert.GreaterOrEqual(t, idx, 0)
			assert.Less(t, idx, max)
		}
	}
	// ceil(17/8)=3, ceil(5/8)=1, ceil(40/8)=5
	assert.Equal(t, 3, perTask["a"])
	assert.Equal(t, 1, perTask["b"])
	assert.Equal(t, 5, perTask["c"])
}

func TestBuildPlan_EmptySourceSkipped(t *testing.T) {
	plan, err := BuildPlan([]Source{{Task: "empty", Len: 0}, {Task: "a", Len: 4}}, 2, true, testRand(6))
	require.NoError(t, err)
	require.Equal(t, 2, plan.Len())
	for i := 0; i < plan.Len(); i++ {
		tbi, err := plan.Batch(i)
		require.NoError(t, err)
		assert.Equal(t, "a", tbi.Task)
	}
}

func TestBuildPlan_InvalidBatchSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := BuildPlan([]Source{{Task: "a", Len: 10}}, size, true, testRand(7))
		require.Error(t, err)
		var cfgErr *errors.ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	}
}

func TestBuildPlan_Reshuffles(t *testing.T) {
	sources := []Source{{Task: "a", Len: 64}, {Task: "b", Len: 64}}
	rng := testRand(8)

	order := func(p *BatchPlan) []string {
		var tasks []string
		for i := 0; i < p.Len(); i++ {
			tbi, err := p.Batch(i)
			require.NoError(t, err)
			tasks = append(tasks, tbi.Task)
		}
		return tasks
	}

	p1, err := BuildPlan(sources, 8, true, rng)
	require.NoError(t, err)
	p2, err := BuildPlan(sources, 8, true, rng)
	require.NoError(t, err)

	assert.Equal(t, p1.Len(), p2.Len())
	assert.NotEqual(t, order(p1), order(p2), "consecutive builds should differ in order")
}

func TestBuildPlan_DeterministicWithSeed(t *testing.T) {
	sources := []Source{{Task: "a", Len: 33}, {Task: "b", Len: 7}}

	p1, err := BuildPlan(sources, 4, false, testRand(42))
	require.NoError(t, err)
	p2, err := BuildPlan(sources, 4, false, testRand(42))
	require.NoError(t, err)

	require.Equal(t, p1.Len(), p2.Len())
	for i := 0; i < p1.Len(); i++ {
		b1, _ := p1.Batch(i)
		b2, _ := p2.Batch(i)
		assert.Equal(t, b1, b2)
	}
}

func TestBatchPlan_OutOfRange(t *testing.T) {
	plan, err := BuildPlan([]Source{{Task: "a", Len: 8}}, 4, true, testRand(9))
	require.NoError(t, err)

	for _, pos := range []int{-1, plan.Len(), plan.Len() + 5} {
		_, err := plan.Batch(pos)
		require.Error(t, err)
		var rangeErr *errors.OutOfRangeError
		assert.ErrorAs(t, err, &rangeErr)
	}
}
