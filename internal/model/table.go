package model

import (
	"context"
	"fmt"

	"github.com/samcharles93/imcap/pkg/ptab"
)

// TableModel is a deterministic step model backed by a fixed transition
// table: row t is the next-token distribution emitted whenever the last
// token was t. It stands in for a real captioning network in tests,
// benchmarks and the CLI demo path.
type TableModel struct {
	rows [][]float32
}

type tableState struct {
	step int
}

// NewTableModel builds a model from an in-memory transition table. Every
// row must cover the full vocabulary, which equals the number of rows.
func NewTableModel(rows [][]float32) (*TableModel, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty transition table")
	}
	for i, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("row %d: got %d columns, want %d", i, len(row), len(rows))
		}
	}
	return &TableModel{rows: rows}, nil
}

// LoadTableModel reads a transition table from a PTAB checkpoint file.
func LoadTableModel(path string) (*TableModel, error) {
	f, err := ptab.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.Table()
	if err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return NewTableModel(rows)
}

// VocabSize returns the size of the vocabulary the table covers.
func (m *TableModel) VocabSize() int { return len(m.rows) }

// Initialize ignores the input bytes; the table model conditions only on
// the token sequence.
func (m *TableModel) Initialize(ctx context.Context, input []byte) (State, error) {
	return tableState{}, nil
}

// Step looks up the transition row for each batch element. The returned
// distributions alias the table and must be treated as read-only.
func (m *TableModel) Step(ctx context.Context, lastTokens []int32, states []State) ([]Prediction, error) {
	if len(lastTokens) != len(states) {
		return nil, fmt.Errorf("batch mismatch: %d tokens, %d states", len(lastTokens), len(states))
	}
	out := make([]Prediction, len(lastTokens))
	for i, tok := range lastTokens {
		st, ok := states[i].(tableState)
		if !ok {
			return nil, fmt.Errorf("batch element %d: unexpected state type %T", i, states[i])
		}
		if tok < 0 || int(tok) >= len(m.rows) {
			return nil, fmt.Errorf("batch element %d: token %d outside vocabulary of %d", i, tok, len(m.rows))
		}
		out[i] = Prediction{
			Probs: m.rows[tok],
			State: tableState{step: st.step + 1},
		}
	}
	return out, nil
}
