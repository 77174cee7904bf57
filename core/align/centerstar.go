package align

import "context"

// CenterStar is the built-in aligner: center-star construction over
// Needleman–Wunsch pairwise alignments, with a bounded number of refinement
// rounds that re-pick the center from the previous round's alignment.
type CenterStar struct {
	// Rounds bounds the refinement iterations. <=0 means DefaultRounds.
	Rounds int
}

// DefaultRounds bounds center refinement.
const DefaultRounds = 3

func (cs CenterStar) Align(ctx context.Context, labels []string, seqs [][]byte) (*Alignment, error) {
	if err := checkInput(labels, seqs); err != nil {
		return nil, err
	}
	rounds := cs.Rounds
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	center := pickCenterByScore(seqs)
	var rows [][]byte
	for r := 0; r < rounds; r++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows = buildStar(center, seqs)
		next := pickCenterByColumns(rows)
		if next == center {
			break
		}
		center = next
	}

	out := make([]string, len(labels))
	copy(out, labels)
	return New(out, rows)
}

// pickCenterByScore chooses the sequence maximizing its total pairwise
// alignment score against all others. Ties break on the lower index.
func pickCenterByScore(seqs [][]byte) int {
	n := len(seqs)
	totals := make([]int, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := nwScore(seqs[i], seqs[j])
			totals[i] += s
			totals[j] += s
		}
	}
	best := 0
	for i := 1; i < n; i++ {
		if totals[i] > totals[best] {
			best = i
		}
	}
	return best
}

// pickCenterByColumns chooses the row with the fewest mismatches against the
// rest of the current alignment, used to refine the center between rounds.
func pickCenterByColumns(rows [][]byte) int {
	n := len(rows)
	width := len(rows[0])
	mismatches := make([]int, n)
	for c := 0; c < width; c++ {
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				if toUpper(rows[i][c]) != toUpper(rows[j][c]) {
					mismatches[i]++
					mismatches[j]++
				}
			}
		}
	}
	best := 0
	for i := 1; i < n; i++ {
		if mismatches[i] < mismatches[best] {
			best = i
		}
	}
	return best
}

// buildStar merges pairwise center alignments into one multiple alignment.
// The master center accumulates gaps ("once a gap, always a gap").
func buildStar(center int, seqs [][]byte) [][]byte {
	master := append([]byte(nil), seqs[center]...)
	// aligned[i] for i != center, filled as sequences are merged
	aligned := make([][]byte, len(seqs))

	for i, s := range seqs {
		if i == center {
			continue
		}
		ac, as := needlemanWunsch(seqs[center], s)
		master, aligned[i] = mergeIntoMaster(master, aligned, ac, as, i)
	}
	aligned[center] = master
	return aligned
}

// mergeIntoMaster reconciles a fresh pairwise center alignment (ac, as) with
// the gapped master center, inserting gap columns into already-merged rows as
// needed. Non-gap characters of master and ac are the same center letters in
// the same order, which is what makes the two-pointer walk valid.
func mergeIntoMaster(master []byte, aligned [][]byte, ac, as []byte, upto int) (newMaster, newRow []byte) {
	type col struct {
		masterIdx int // -1 for a fresh gap column
		newChar   byte
	}
	var cols []col
	i, j := 0, 0
	for i < len(master) || j < len(ac) {
		switch {
		case i < len(master) && j < len(ac) && master[i] != Gap && ac[j] != Gap:
			cols = append(cols, col{i, as[j]})
			i++
			j++
		case i < len(master) && master[i] == Gap && (j >= len(ac) || ac[j] != Gap):
			cols = append(cols, col{i, Gap})
			i++
		case j < len(ac) && ac[j] == Gap && (i >= len(master) || master[i] != Gap):
			cols = append(cols, col{-1, as[j]})
			j++
		default: // both gaps
			cols = append(cols, col{i, as[j]})
			i++
			j++
		}
	}

	newMaster = make([]byte, len(cols))
	newRow = make([]byte, len(cols))
	rebuilt := make([][]byte, 0, upto)
	for r := 0; r < upto; r++ {
		if aligned[r] != nil {
			rebuilt = append(rebuilt, make([]byte, 0, len(cols)))
		} else {
			rebuilt = append(rebuilt, nil)
		}
	}
	for c, cc := range cols {
		if cc.masterIdx >= 0 {
			newMaster[c] = master[cc.masterIdx]
			for r := 0; r < upto; r++ {
				if aligned[r] != nil {
					rebuilt[r] = append(rebuilt[r], aligned[r][cc.masterIdx])
				}
			}
		} else {
			newMaster[c] = Gap
			for r := 0; r < upto; r++ {
				if aligned[r] != nil {
					rebuilt[r] = append(rebuilt[r], Gap)
				}
			}
		}
		newRow[c] = cc.newChar
	}
	for r := 0; r < upto; r++ {
		if aligned[r] != nil {
			aligned[r] = rebuilt[r]
		}
	}
	return newMaster, newRow
}
