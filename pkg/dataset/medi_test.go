package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

func rawTriplet(task, q, p, n string) types.RawRecord {
	return types.RawRecord{
		TaskName: task,
		Query:    []string{"instr", q},
		Pos:      []string{"instr", p},
		Neg:      []string{"instr", n},
	}
}

func TestMediDataset_JoinMode(t *testing.T) {
	raw := []types.RawRecord{{
		TaskName: "t1",
		Query:    []string{"instr", "q1"},
		Pos:      []string{"instr", "p1"},
		Neg:      []string{"instr", "n1"},
	}}

	d, err := NewMedi(raw, MediConfig{
		BatchSize:  1,
		Kind:       KindTriplet,
		WithPrompt: true,
		JoinWith:   "\n",
		Rand:       testRand(1),
	})
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())

	batch, err := d.Get(0)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	rec, ok := batch[0].(types.TripletRecord)
	require.True(t, ok)
	assert.Equal(t, "instr\nq1", rec.Text)
	assert.Equal(t, "instr\np1", rec.TextPos)
	assert.Equal(t, "instr\nn1", rec.TextNeg)
}

func TestMediDataset_NoPromptMode(t *testing.T) {
	raw := []types.RawRecord{rawTriplet("t1", "q1", "p1", "n1")}

	d, err := NewMedi(raw, MediConfig{BatchSize: 1, Kind: KindTriplet, Rand: testRand(1)})
	require.NoError(t, err)

	batch, err := d.Get(0)
	require.NoError(t, err)
	rec := batch[0].(types.TripletRecord)
	assert.Equal(t, "q1", rec.Text)
	assert.Equal(t, "p1", rec.TextPos)
	assert.Equal(t, "n1", rec.TextNeg)
}

func TestMediDataset_PairKindDropsNegative(t *testing.T) {
	raw := []types.RawRecord{rawTriplet("t1", "q1", "p1", "n1")}

	d, err := NewMedi(raw, MediConfig{BatchSize: 1, Kind: KindPair, Rand: testRand(1)})
	require.NoError(t, err)

	batch, err := d.Get(0)
	require.NoError(t, err)
	rec, ok := batch[0].(types.PairRecord)
	require.True(t, ok)
	assert.Equal(t, "q1", rec.Text)
	assert.Equal(t, "p1", rec.TextPos)
}

func TestMediDataset_GroupingIsDeterministic(t *testing.T) {
	raw := []types.RawRecord{
		rawTriplet("zeta", "q1", "p1", "n1"),
		rawTriplet("alpha", "q2", "p2", "n2"),
		rawTriplet("zeta", "q3", "p3", "n3"),
		rawTriplet("mid", "q4", "p4", "n4"),
	}

	for range 3 {
		d, err := NewMedi(raw, MediConfig{BatchSize: 2, Rand: testRand(1)})
		require.NoError(t, err)
		// First-seen insertion order, independent of any random seed.
		assert.Equal(t, []string{"zeta", "alpha", "mid"}, d.Tasks())
	}
}

func TestMediDataset_TaskPurity(t *testing.T) {
	var raw []types.RawRecord
	for i := range 20 {
		raw = append(raw, rawTriplet("a", "qa", "pa", "na"))
		if i < 9 {
			raw = append(raw, rawTriplet("b", "qb", "pb", "nb"))
		}
	}

	d, err := NewMedi(raw, MediConfig{BatchSize: 4, DropLast: true, Rand: testRand(2)})
	require.NoError(t, err)
	// floor(20/4) + floor(9/4) = 5 + 2
	require.Equal(t, 7, d.Len())

	for i := 0; i < d.Len(); i++ {
		batch, err := d.Get(i)
		require.NoError(t, err)
		require.NotEmpty(t, batch)
		first := batch[0].(types.TripletRecord).Text
		for _, rec := range batch {
			assert.Equal(t, first, rec.(types.TripletRecord).Text, "batch %d mixes tasks", i)
		}
	}
}

func TestMediDataset_RefreshRerandomizes(t *testing.T) {
	var raw []types.RawRecord
	for range 64 {
		raw = append(raw, rawTriplet("a", "qa", "pa", "na"))
		raw = append(raw, rawTriplet("b", "qb", "pb", "nb"))
	}

	d, err := NewMedi(raw, MediConfig{BatchSize: 4, DropLast: true, Rand: testRand(3)})
	require.NoError(t, err)
	require.Equal(t, 32, d.Len())

	taskOrder := func() []string {
		var tasks []string
		for i := 0; i < d.Len(); i++ {
			batch, err := d.Get(i)
			require.NoError(t, err)
			tasks = append(tasks, batch[0].(types.TripletRecord).Text)
		}
		return tasks
	}

	before := taskOrder()
	d.Refresh()
	assert.Equal(t, 32, d.Len())
	assert.NotEqual(t, before, taskOrder())
}

func TestMediDataset_UnknownKind(t *testing.T) {
	_, err := NewMedi(nil, MediConfig{Kind: Kind("quadruplet")})
	require.Error(t, err)
	var cfgErr *errors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestMediDataset_MalformedNoPromptRecord(t *testing.T) {
	raw := []types.RawRecord{{TaskName: "t", Query: []string{"only-one"}, Pos: []string{"i", "p"}, Neg: []string{"i", "n"}}}
	_, err := NewMedi(raw, MediConfig{BatchSize: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query")
}

func TestMediDataset_GetOutOfRange(t *testing.T) {
	d, err := NewMedi([]types.RawRecord{rawTriplet("t", "q", "p", "n")}, MediConfig{BatchSize: 1, Rand: testRand(4)})
	require.NoError(t, err)

	_, err = d.Get(d.Len())
	var rangeErr *errors.OutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}
