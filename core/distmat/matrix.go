// Package distmat computes pairwise genetic distance matrices, either from an
// alignment under a nucleotide substitution model or alignment-free from
// k-mer frequency vectors.
package distmat

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a square, symmetric, zero-diagonal distance matrix over a label
// set. Labels[i] names row/column i.
type Matrix struct {
	Labels []string
	d      *mat.SymDense
}

// NewMatrix allocates a zero matrix over labels.
func NewMatrix(labels []string) *Matrix {
	out := make([]string, len(labels))
	copy(out, labels)
	return &Matrix{Labels: out, d: mat.NewSymDense(len(labels), nil)}
}

// Dim is the number of taxa.
func (m *Matrix) Dim() int { return len(m.Labels) }

// At returns d(i,j).
func (m *Matrix) At(i, j int) float64 { return m.d.At(i, j) }

// Set sets d(i,j) = d(j,i) = v.
func (m *Matrix) Set(i, j int, v float64) {
	if i == j {
		return // diagonal is identically zero
	}
	m.d.SetSym(i, j, v)
}

// Index returns the row of a label, or -1.
func (m *Matrix) Index(label string) int {
	for i, l := range m.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// Check verifies the matrix invariants: zero diagonal, symmetry (structural
// with SymDense), non-negative entries.
func (m *Matrix) Check() error {
	for i := 0; i < m.Dim(); i++ {
		if m.d.At(i, i) != 0 {
			return fmt.Errorf("distmat: d(%d,%d) = %g, want 0", i, i, m.d.At(i, i))
		}
		for j := i + 1; j < m.Dim(); j++ {
			if v := m.d.At(i, j); v < 0 {
				return fmt.Errorf("distmat: d(%s,%s) = %g is negative", m.Labels[i], m.Labels[j], v)
			}
		}
	}
	return nil
}

// Sym exposes the underlying symmetric matrix for numeric consumers.
func (m *Matrix) Sym() *mat.SymDense { return m.d }
