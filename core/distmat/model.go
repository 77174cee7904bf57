package distmat

import (
	"fmt"
	"math"

	"phylopipe-core/align"
)

// Model names a nucleotide substitution model.
type Model string

const (
	// JC69 assumes equal base frequencies and one substitution rate.
	JC69 Model = "JC69"
	// K80 separates transition and transversion rates.
	K80 Model = "K80"
	// TN93 separates the two transition classes and uses observed base
	// frequencies: the transition/transversion-and-frequency-aware model.
	TN93 Model = "TN93"
)

// ParseModel validates a model name.
func ParseModel(s string) (Model, error) {
	switch Model(s) {
	case JC69, K80, TN93:
		return Model(s), nil
	}
	return "", fmt.Errorf("unknown substitution model %q (want JC69, K80 or TN93)", s)
}

// saturated is the distance reported when the model correction diverges
// (log argument <= 0): the pair is beyond what the model can resolve.
const saturated = 10.0

// FromAlignment computes pairwise model-based distances. With pairwiseDeletion
// each pair skips only its own gap-containing columns; otherwise columns with
// a gap in any row are dropped for every pair (complete deletion).
// Identical sequences yield exactly 0, even under different labels.
func FromAlignment(aln *align.Alignment, model Model, pairwiseDeletion bool) (*Matrix, error) {
	if _, err := ParseModel(string(model)); err != nil {
		return nil, err
	}
	n := aln.NumSeqs()
	if n < 2 {
		return nil, fmt.Errorf("distmat: %w, got %d", align.ErrTooFewSequences, n)
	}

	usable := make([]bool, aln.Len())
	for c := range usable {
		usable[c] = true
	}
	if !pairwiseDeletion {
		for c := 0; c < aln.Len(); c++ {
			for _, row := range aln.Seqs {
				if isGap(row[c]) {
					usable[c] = false
					break
				}
			}
		}
	}

	m := NewMatrix(aln.Labels)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d, err := pairDistance(aln.Seqs[i], aln.Seqs[j], usable, model)
			if err != nil {
				return nil, fmt.Errorf("distmat: %s vs %s: %w", aln.Labels[i], aln.Labels[j], err)
			}
			m.Set(i, j, d)
		}
	}
	return m, m.Check()
}

// siteCounts tallies comparable sites between two gapped rows.
type siteCounts struct {
	sites         int
	transitionsAG int // A<->G
	transitionsCT int // C<->T
	transversions int
	freq          [4]int // A C G T pooled over both rows
}

func pairDistance(a, b []byte, usable []bool, model Model) (float64, error) {
	var sc siteCounts
	for c := range a {
		if !usable[c] {
			continue
		}
		x, y := normBase(a[c]), normBase(b[c])
		if x < 0 || y < 0 {
			continue // gap or ambiguity at this site for this pair
		}
		sc.sites++
		sc.freq[x]++
		sc.freq[y]++
		if x == y {
			continue
		}
		switch {
		case (x == baseA && y == baseG) || (x == baseG && y == baseA):
			sc.transitionsAG++
		case (x == baseC && y == baseT) || (x == baseT && y == baseC):
			sc.transitionsCT++
		default:
			sc.transversions++
		}
	}
	if sc.sites == 0 {
		return 0, fmt.Errorf("no comparable sites")
	}
	switch model {
	case JC69:
		return jc69(sc), nil
	case K80:
		return k80(sc), nil
	default:
		return tn93(sc), nil
	}
}

const (
	baseA = 0
	baseC = 1
	baseG = 2
	baseT = 3
)

func normBase(b byte) int {
	switch b {
	case 'A', 'a':
		return baseA
	case 'C', 'c':
		return baseC
	case 'G', 'g':
		return baseG
	case 'T', 't', 'U', 'u':
		return baseT
	}
	return -1
}

func isGap(b byte) bool { return b == align.Gap || b == '.' }

func jc69(sc siteCounts) float64 {
	p := float64(sc.transitionsAG+sc.transitionsCT+sc.transversions) / float64(sc.sites)
	arg := 1 - 4*p/3
	if arg <= 0 {
		return saturated
	}
	return clampZero(-0.75 * math.Log(arg))
}

func k80(sc siteCounts) float64 {
	n := float64(sc.sites)
	p := float64(sc.transitionsAG+sc.transitionsCT) / n
	q := float64(sc.transversions) / n
	a1 := 1 - 2*p - q
	a2 := 1 - 2*q
	if a1 <= 0 || a2 <= 0 {
		return saturated
	}
	return clampZero(-0.5*math.Log(a1) - 0.25*math.Log(a2))
}

func tn93(sc siteCounts) float64 {
	n := float64(sc.sites)
	total := float64(2 * sc.sites)
	piA := float64(sc.freq[baseA]) / total
	piC := float64(sc.freq[baseC]) / total
	piG := float64(sc.freq[baseG]) / total
	piT := float64(sc.freq[baseT]) / total
	piR := piA + piG
	piY := piC + piT

	p1 := float64(sc.transitionsAG) / n
	p2 := float64(sc.transitionsCT) / n
	q := float64(sc.transversions) / n

	// Degenerate composition: fall back to the simpler correction rather than
	// divide by zero (happens on very short or biased test sequences).
	if piA*piG == 0 || piC*piT == 0 || piR == 0 || piY == 0 {
		return k80(sc)
	}

	a1 := 1 - piR*p1/(2*piA*piG) - q/(2*piR)
	a2 := 1 - piY*p2/(2*piC*piT) - q/(2*piY)
	b := 1 - q/(2*piR*piY)
	if a1 <= 0 || a2 <= 0 || b <= 0 {
		return saturated
	}
	k1 := 2 * piA * piG / piR
	k2 := 2 * piC * piT / piY
	k3 := 2 * (piR*piY - piA*piG*piY/piR - piC*piT*piR/piY)
	return clampZero(-k1*math.Log(a1) - k2*math.Log(a2) - k3*math.Log(b))
}

// clampZero guards against -0 and tiny negative float noise.
func clampZero(v float64) float64 {
	if v <= 0 {
		return 0
	}
	return v
}
