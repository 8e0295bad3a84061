package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegaviazhang/uniem/pkg/errors"
)

func pairTable(n int, prefix string) MemoryTable {
	t := make(MemoryTable, n)
	for i := range t {
		t[i] = Row{
			"text":     fmt.Sprintf("%s-text-%d", prefix, i),
			"text_pos": fmt.Sprintf("%s-pos-%d", prefix, i),
		}
	}
	return t
}

func TestTabularDataset_InstructionPrefix(t *testing.T) {
	tables := []TableWithInfo{{
		Table:       pairTable(4, "sts"),
		Name:        "sts",
		Instruction: "判断两个句子的相似度：",
	}}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 4, WithInstruction: true, Rand: testRand(1)})
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())

	batch, err := d.Get(0)
	require.NoError(t, err)
	require.Len(t, batch, 4)
	for _, rec := range batch {
		// Prefix goes on the anchor only, plain concatenation.
		assert.Contains(t, rec.Text, "判断两个句子的相似度：sts-text-")
		assert.NotContains(t, rec.TextPos, "判断")
	}
}

func TestTabularDataset_NoInstruction(t *testing.T) {
	tables := []TableWithInfo{{Table: pairTable(2, "x"), Name: "x", Instruction: "prefix:"}}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 2, Rand: testRand(1)})
	require.NoError(t, err)

	batch, err := d.Get(0)
	require.NoError(t, err)
	for _, rec := range batch {
		assert.NotContains(t, rec.Text, "prefix:")
	}
}

func TestTabularDataset_DropsInvalidRows(t *testing.T) {
	table := MemoryTable{
		{"text": "  ", "text_pos": "ok"}, // whitespace-only anchor
		{"text": "ok", "text_pos": ""},   // empty positive
		{"text": 42, "text_pos": "ok"},   // non-string anchor
		{"text": "好的", "text_pos": "可以"}, // valid
	}
	tables := []TableWithInfo{{Table: table, Name: "t"}}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 4, Rand: testRand(2)})
	require.NoError(t, err)

	batch, err := d.Get(0)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "好的", batch[0].Text)
	assert.Equal(t, "可以", batch[0].TextPos)
}

func TestTabularDataset_EmptyBatchError(t *testing.T) {
	table := MemoryTable{
		{"text": "  ", "text_pos": "ok"},
		{"text": nil, "text_pos": "ok"},
	}
	tables := []TableWithInfo{{Table: table, Name: "bad"}}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 2, Rand: testRand(3)})
	require.NoError(t, err)

	_, err = d.Get(0)
	require.Error(t, err)
	var emptyErr *errors.EmptyBatchError
	require.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, "bad", emptyErr.Task)
	assert.Len(t, emptyErr.Rows, 2, "offending raw rows must be attached")
}

func TestTabularDataset_TaskPurity(t *testing.T) {
	tables := []TableWithInfo{
		{Table: pairTable(10, "a"), Name: "a"},
		{Table: pairTable(7, "b"), Name: "b"},
	}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 3, DropLast: false, Rand: testRand(4)})
	require.NoError(t, err)
	// ceil(10/3) + ceil(7/3) = 4 + 3
	require.Equal(t, 7, d.Len())

	for i := 0; i < d.Len(); i++ {
		batch, err := d.Get(i)
		require.NoError(t, err)
		require.Len(t, batch, 3)
		task := batch[0].TextPos[:1]
		for _, rec := range batch {
			assert.Equal(t, task, rec.TextPos[:1], "batch %d mixes tasks", i)
		}
	}
}

func TestTabularDataset_ShortTableFallback(t *testing.T) {
	tables := []TableWithInfo{{Table: pairTable(2, "tiny"), Name: "tiny"}}

	d, err := NewTabular(tables, TabularConfig{BatchSize: 4, DropLast: true, Rand: testRand(5)})
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())

	batch, err := d.Get(0)
	require.NoError(t, err)
	assert.Len(t, batch, 2)
}

func TestTabularDataset_InvalidConfig(t *testing.T) {
	var cfgErr *errors.ConfigError

	_, err := NewTabular([]TableWithInfo{{Table: pairTable(1, "a"), Name: "a"}}, TabularConfig{BatchSize: -2})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewTabular([]TableWithInfo{{Table: pairTable(1, "a")}}, TabularConfig{BatchSize: 2})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)

	_, err = NewTabular([]TableWithInfo{{Name: "a"}}, TabularConfig{BatchSize: 2})
	require.Error(t, err)
	assert.ErrorAs(t, err, &cfgErr)
}

func TestTabularDataset_GetOutOfRange(t *testing.T) {
	d, err := NewTabular([]TableWithInfo{{Table: pairTable(4, "a"), Name: "a"}}, TabularConfig{BatchSize: 4, Rand: testRand(6)})
	require.NoError(t, err)

	_, err = d.Get(-1)
	var rangeErr *errors.OutOfRangeError
	assert.ErrorAs(t, err, &rangeErr)
}
