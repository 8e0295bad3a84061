package dataset

import (
	"math/rand/v2"

	"github.com/vegaviazhang/uniem/pkg/errors"
	"github.com/vegaviazhang/uniem/pkg/types"
)

// Row is one raw tabular record. The dataset wrapper reads the "text" and
// "text_pos" keys; everything else is carried along untouched for diagnosis.
type Row map[string]any

// Table is the narrow contract with an external tabular data loader.
type Table interface {
	Len() int
	Row(i int) Row
}

// MemoryTable is an in-memory Table backed by a slice of rows.
type MemoryTable []Row

// Len implements Table.
func (t MemoryTable) Len() int { return len(t) }

// Row implements Table.
func (t MemoryTable) Row(i int) Row { return t[i] }

// TableWithInfo tags a table with its task name and an optional instruction
// prefix for anchor texts.
type TableWithInfo struct {
	Table       Table
	Name        string
	Instruction string
}

// TabularConfig configures a TabularDataset.
type TabularConfig struct {
	// BatchSize is the fixed batch size. Defaults to 32.
	BatchSize int
	// WithInstruction prepends each task's instruction to anchor texts.
	WithInstruction bool
	// DropLast discards a task's remainder instead of padding a final batch.
	DropLast bool
	// Rand is the random source for partitioning and shuffling.
	Rand *rand.Rand
}

// TabularDataset assembles task-pure batches of pair records from named
// tabular datasets, validating and transforming rows at lookup time. Rows
// whose anchor or positive text is missing, non-string, or blank are dropped
// from their batch; a batch losing every row surfaces as an EmptyBatchError.
type TabularDataset struct {
	cfg          TabularConfig
	tables       []TableWithInfo
	byName       map[string]Table
	instructions map[string]string // nil when instructions are disabled
	plan         *BatchPlan
}

// NewTabular builds a dataset over the given tables and computes the initial
// batch plan.
func NewTabular(tables []TableWithInfo, cfg TabularConfig) (*TabularDataset, error) {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 32
	}
	if cfg.BatchSize < 0 {
		return nil, errors.NewConfigError("batch_size", "must be positive, got %d", cfg.BatchSize)
	}
	for i, t := range tables {
		if t.Name == "" {
			return nil, errors.NewConfigError("tables", "table %d has no name", i)
		}
		if t.Table == nil {
			return nil, errors.NewConfigError("tables", "table %q is nil", t.Name)
		}
	}

	d := &TabularDataset{
		cfg:    cfg,
		tables: tables,
		byName: make(map[string]Table, len(tables)),
	}
	if cfg.WithInstruction {
		d.instructions = make(map[string]string, len(tables))
	}
	for _, t := range tables {
		d.byName[t.Name] = t.Table
		if d.instructions != nil {
			d.instructions[t.Name] = t.Instruction
		}
	}

	d.Refresh()
	return d, nil
}

// Refresh rebuilds the batch partition and global order from scratch.
func (d *TabularDataset) Refresh() {
	sources := make([]Source, 0, len(d.tables))
	for _, t := range d.tables {
		sources = append(sources, Source{Task: t.Name, Len: t.Table.Len()})
	}
	// Config was validated at construction, BuildPlan cannot fail here.
	plan, _ := BuildPlan(sources, d.cfg.BatchSize, d.cfg.DropLast, d.cfg.Rand)
	d.plan = plan
}

// Len returns the number of batches in the current plan.
func (d *TabularDataset) Len() int { return d.plan.Len() }

// Get resolves a batch position to validated pair records. Invalid rows are
// silently dropped; if nothing survives, the raw rows come back inside an
// EmptyBatchError so the caller can diagnose the source data.
func (d *TabularDataset) Get(position int) ([]types.PairRecord, error) {
	tbi, err := d.plan.Batch(position)
	if err != nil {
		return nil, err
	}
	table := d.byName[tbi.Task]

	rows := make([]Row, len(tbi.Indices))
	for i, idx := range tbi.Indices {
		rows[i] = table.Row(idx)
	}

	records := make([]types.PairRecord, 0, len(rows))
	for _, row := range rows {
		text, textPos := row["text"], row["text_pos"]
		if !types.IsValidText(text) || !types.IsValidText(textPos) {
			continue
		}
		anchor := text.(string)
		if d.instructions != nil {
			anchor = d.instructions[tbi.Task] + anchor
		}
		records = append(records, types.PairRecord{Text: anchor, TextPos: textPos.(string)})
	}

	if len(records) == 0 {
		raw := make([]map[string]any, len(rows))
		for i, r := range rows {
			raw[i] = map[string]any(r)
		}
		return nil, errors.NewEmptyBatchError(tbi.Task, raw)
	}
	return records, nil
}
