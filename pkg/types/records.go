// Package types defines the record shapes shared by the dataset wrappers and
// the embedding model adapters. The JSON tags on the record structs are the
// contract with external tokenizer/collator code.
package types

import "strings"

// Record is a contrastive training example. A record always carries an anchor
// text and a positive example; triplet records additionally carry a negative.
type Record interface {
	// Anchor returns the primary text the record contrasts against.
	Anchor() string
	// Positive returns the text believed semantically close to the anchor.
	Positive() string
}

// PairRecord is an anchor text with one positive example.
type PairRecord struct {
	Text    string `json:"text"`
	TextPos string `json:"text_pos"`
}

// Anchor implements Record.
func (r PairRecord) Anchor() string { return r.Text }

// Positive implements Record.
func (r PairRecord) Positive() string { return r.TextPos }

// TripletRecord is an anchor text with one positive and one negative example.
type TripletRecord struct {
	Text    string `json:"text"`
	TextPos string `json:"text_pos"`
	TextNeg string `json:"text_neg"`
}

// Anchor implements Record.
func (r TripletRecord) Anchor() string { return r.Text }

// Positive implements Record.
func (r TripletRecord) Positive() string { return r.TextPos }

// Negative returns the text believed semantically distant from the anchor.
func (r TripletRecord) Negative() string { return r.TextNeg }

// RawRecord is one entry of a medi-format training file. Each field holds an
// ordered list of strings, conventionally [instruction, text].
type RawRecord struct {
	TaskName string   `json:"task_name"`
	Query    []string `json:"query"`
	Pos      []string `json:"pos"`
	Neg      []string `json:"neg"`
}

// IsValidText reports whether v is a non-empty string after trimming
// whitespace. Anything that is not a string is invalid.
func IsValidText(v any) bool {
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) != ""
}
