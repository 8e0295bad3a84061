package dataset

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

// Kind selects the record shape produced by a MediDataset.
type Kind string

const (
	KindPair    Kind = "pair"
	KindTriplet Kind = "triplet"
)

// MediConfig configures a MediDataset.
type MediConfig struct {
	// BatchSize is the fixed batch size. Defaults to 32.
	BatchSize int
	// Kind selects pair or triplet records. Defaults to KindTriplet.
	Kind Kind
	// WithPrompt keeps the instruction component of each field, joining the
	// field's string list with JoinWith. When off, only the second element of
	// each list is used and the instruction is discarded.
	WithPrompt bool
	// JoinWith separates the joined components in prompt mode. Defaults to "\n".
	JoinWith string
	// DropLast discards a task's remainder instead of padding a final batch
	// with repeated records.
	DropLast bool
	// Rand is the random source for partitioning and shuffling. A fresh
	// time-seeded source is used when nil.
	Rand *rand.Rand
}

func (c *MediConfig) withDefaults() error {
	if c.BatchSize == 0 {
		c.BatchSize = 32
	}
	if c.BatchSize < 0 {
		return errors.NewConfigError("batch_size", "must be positive, got %d", c.BatchSize)
	}
	if c.Kind == "" {
		c.Kind = KindTriplet
	}
	if c.Kind != KindPair && c.Kind != KindTriplet {
		return errors.NewConfigError("kind", "must be %q or %q, got %q", KindPair, KindTriplet, c.Kind)
	}
	if c.JoinWith == "" {
		c.JoinWith = "\n"
	}
	return nil
}

// MediDataset assembles task-pure batches from a flat list of heterogeneous
// task records (the medi training data format). Records are grouped by task
// name in first-seen order at construction; Refresh re-randomizes the batch
// partition without touching the grouped records.
type MediDataset struct {
	cfg     MediConfig
	tasks   []string
	records map[string][]types.Record
	plan    *BatchPlan
}

// NewMedi groups raw records by task and builds the initial batch plan.
// Grouping is a pure transform: the same raw input and flags always produce
// the same per-task collections.
func NewMedi(raw []types.RawRecord, cfg MediConfig) (*MediDataset, error) {
	if err := cfg.withDefaults(); err != nil {
		return nil, err
	}

	d := &MediDataset{
		cfg:     cfg,
		records: make(map[string][]types.Record),
	}
	for i, r := range raw {
		rec, err := cfg.convert(r)
		if err != nil {
			return nil, fmt.Errorf("record %d (task %q): %w", i, r.TaskName, err)
		}
		if _, seen := d.records[r.TaskName]; !seen {
			d.tasks = append(d.tasks, r.TaskName)
		}
		d.records[r.TaskName] = append(d.records[r.TaskName], rec)
	}

	d.Refresh()
	return d, nil
}

// LoadMediFile reads a medi-format JSON file and builds a dataset from it.
func LoadMediFile(path string, cfg MediConfig) (*MediDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read medi file: %w", err)
	}
	var raw []types.RawRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse medi file: %w", err)
	}
	return NewMedi(raw, cfg)
}

func (c MediConfig) convert(r types.RawRecord) (types.Record, error) {
	pick := func(name string, field []string) (string, error) {
		if c.WithPrompt {
			return strings.Join(field, c.JoinWith), nil
		}
		if len(field) < 2 {
			return "", fmt.Errorf("field %s needs [instruction, text], got %d elements", name, len(field))
		}
		return field[1], nil
	}

	text, err := pick("query", r.Query)
	if err != nil {
		return nil, err
	}
	pos, err := pick("pos", r.Pos)
	if err != nil {
		return nil, err
	}
	if c.Kind == KindPair {
		return types.PairRecord{Text: text, TextPos: pos}, nil
	}
	neg, err := pick("neg", r.Neg)
	if err != nil {
		return nil, err
	}
	return types.TripletRecord{Text: text, TextPos: pos, TextNeg: neg}, nil
}

// Refresh rebuilds the batch partition and global order from scratch,
// typically once per training epoch. The grouped records are reused as-is.
func (d *MediDataset) Refresh() {
	sources := make([]Source, 0, len(d.tasks))
	for _, task := range d.tasks {
		sources = append(sources, Source{Task: task, Len: len(d.records[task])})
	}
	// Config was validated at construction, BuildPlan cannot fail here.
	plan, _ := BuildPlan(sources, d.cfg.BatchSize, d.cfg.DropLast, d.cfg.Rand)
	d.plan = plan
}

// Len returns the number of batches in the current plan.
func (d *MediDataset) Len() int { return d.plan.Len() }

// Tasks returns the task names in first-seen order.
func (d *MediDataset) Tasks() []string { return d.tasks }

// Get resolves a batch position to its records, in the order stored in the
// batch index.
func (d *MediDataset) Get(position int) ([]types.Record, error) {
	tbi, err := d.plan.Batch(position)
	if err != nil {
		return nil, err
	}
	records := d.records[tbi.Task]
	batch := make([]types.Record, len(tbi.Indices))
	for i, idx := range tbi.Indices {
		batch[i] = records[idx]
	}
	return batch, nil
}
