package types_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegaviazhang/uniem/pkg/types"
)

func TestPairRecord_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(types.PairRecord{Text: "q", TextPos: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"q","text_pos":"p"}`, string(data))
}

func TestTripletRecord_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(types.TripletRecord{Text: "q", TextPos: "p", TextNeg: "n"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"q","text_pos":"p","text_neg":"n"}`, string(data))
}

func TestRecord_Accessors(t *testing.T) {
	var r types.Record = types.TripletRecord{Text: "a", TextPos: "b", TextNeg: "c"}
	assert.Equal(t, "a", r.Anchor())
	assert.Equal(t, "b", r.Positive())

	r = types.PairRecord{Text: "a", TextPos: "b"}
	assert.Equal(t, "a", r.Anchor())
	assert.Equal(t, "b", r.Positive())
}

func TestIsValidText(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"plain string", "hello", true},
		{"chinese text", "今天天气真好", true},
		{"empty string", "", false},
		{"whitespace only", "  \t\n ", false},
		{"not a string", 42, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, types.IsValidText(tt.in))
		})
	}
}
