// Package align builds multiple sequence alignments. The heavy lifting is an
// external aligner concern (Mafft); a built-in center-star aligner covers runs
// where no external binary is available.
package align

import (
	"context"
	"errors"
	"fmt"
)

// Gap is the alignment gap character.
const Gap = '-'

// ErrTooFewSequences is returned when an alignment is requested on fewer than
// two sequences: a single-sequence "alignment" is degenerate and never useful.
var ErrTooFewSequences = errors.New("alignment requires at least 2 sequences")

// Alignment is an ordered set of equal-length gapped sequences. Labels[i]
// corresponds to Seqs[i] throughout.
type Alignment struct {
	Labels []string
	Seqs   [][]byte
}

// New validates label/sequence correspondence and equal lengths.
func New(labels []string, seqs [][]byte) (*Alignment, error) {
	if len(labels) != len(seqs) {
		return nil, fmt.Errorf("align: %d labels for %d sequences", len(labels), len(seqs))
	}
	if len(seqs) < 2 {
		return nil, fmt.Errorf("align: %w, got %d", ErrTooFewSequences, len(seqs))
	}
	width := len(seqs[0])
	for i, s := range seqs {
		if len(s) != width {
			return nil, fmt.Errorf("align: row %d has length %d, want %d", i, len(s), width)
		}
	}
	return &Alignment{Labels: labels, Seqs: seqs}, nil
}

// Len is the alignment width (0 when empty).
func (a *Alignment) Len() int {
	if len(a.Seqs) == 0 {
		return 0
	}
	return len(a.Seqs[0])
}

// NumSeqs is the number of rows.
func (a *Alignment) NumSeqs() int { return len(a.Seqs) }

// Row returns the gapped sequence for a label.
func (a *Alignment) Row(label string) ([]byte, bool) {
	for i, l := range a.Labels {
		if l == label {
			return a.Seqs[i], true
		}
	}
	return nil, false
}

// Aligner produces an Alignment from raw (unaligned) sequences, preserving the
// label↔sequence correspondence of its input.
type Aligner interface {
	Align(ctx context.Context, labels []string, seqs [][]byte) (*Alignment, error)
}

func checkInput(labels []string, seqs [][]byte) error {
	if len(labels) != len(seqs) {
		return fmt.Errorf("align: %d labels for %d sequences", len(labels), len(seqs))
	}
	if len(seqs) < 2 {
		return fmt.Errorf("align: %w, got %d", ErrTooFewSequences, len(seqs))
	}
	for i, s := range seqs {
		if len(s) == 0 {
			return fmt.Errorf("align: sequence %q is empty", labels[i])
		}
	}
	return nil
}
