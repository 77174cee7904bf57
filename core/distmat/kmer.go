package distmat

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultK is the k-mer length used by the reference analysis.
const DefaultK = 5

// FromKmers computes alignment-free distances: normalized k-mer frequency
// vectors per raw sequence, then pairwise Euclidean distance. No alignment is
// involved, so sequences of very different lengths compare cleanly.
func FromKmers(labels []string, seqs [][]byte, k int) (*Matrix, error) {
	if k <= 0 {
		return nil, fmt.Errorf("distmat: k-mer length must be positive, got %d", k)
	}
	if len(labels) != len(seqs) {
		return nil, fmt.Errorf("distmat: %d labels for %d sequences", len(labels), len(seqs))
	}
	if len(seqs) < 2 {
		return nil, fmt.Errorf("distmat: need at least 2 sequences, got %d", len(seqs))
	}

	counts := make([]map[string]float64, len(seqs))
	universe := make(map[string]struct{})
	for i, s := range seqs {
		counts[i] = kmerFrequencies(s, k)
		for km := range counts[i] {
			universe[km] = struct{}{}
		}
	}
	keys := make([]string, 0, len(universe))
	for km := range universe {
		keys = append(keys, km)
	}
	sort.Strings(keys)

	vecs := make([][]float64, len(seqs))
	for i := range seqs {
		v := make([]float64, len(keys))
		for j, km := range keys {
			v[j] = counts[i][km]
		}
		vecs[i] = v
	}

	m := NewMatrix(labels)
	for i := 0; i < len(seqs); i++ {
		for j := i + 1; j < len(seqs); j++ {
			m.Set(i, j, floats.Distance(vecs[i], vecs[j], 2))
		}
	}
	return m, m.Check()
}

// kmerFrequencies counts k-mers over ACGT (ambiguity codes and gaps break a
// window) and normalizes by the number of counted windows.
func kmerFrequencies(seq []byte, k int) map[string]float64 {
	counts := make(map[string]float64)
	if len(seq) < k {
		return counts
	}
	total := 0.0
	buf := make([]byte, k)
window:
	for i := 0; i+k <= len(seq); i++ {
		for j := 0; j < k; j++ {
			b := normBase(seq[i+j])
			if b < 0 {
				continue window
			}
			buf[j] = "ACGT"[b]
		}
		counts[string(buf)]++
		total++
	}
	if total > 0 {
		for km := range counts {
			counts[km] /= total
		}
	}
	return counts
}
