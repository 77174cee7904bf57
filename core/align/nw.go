package align

// Needleman–Wunsch global pairwise alignment with linear gap cost.
// Deterministic traceback: diagonal, then up (gap in b), then left (gap in a).

const (
	nwMatch    = 2
	nwMismatch = -1
	nwGap      = -2
)

func nwScoreCell(x, y byte) int {
	if toUpper(x) == toUpper(y) {
		return nwMatch
	}
	return nwMismatch
}

func toUpper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// needlemanWunsch returns gapped copies of a and b with equal length.
func needlemanWunsch(a, b []byte) (ga, gb []byte) {
	n, m := len(a), len(b)
	// score rows reused; full traceback matrix kept (sequences here are a few kb).
	score := make([][]int, n+1)
	for i := range score {
		score[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		score[i][0] = i * nwGap
	}
	for j := 1; j <= m; j++ {
		score[0][j] = j * nwGap
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			diag := score[i-1][j-1] + nwScoreCell(a[i-1], b[j-1])
			up := score[i-1][j] + nwGap
			left := score[i][j-1] + nwGap
			best := diag
			if up > best {
				best = up
			}
			if left > best {
				best = left
			}
			score[i][j] = best
		}
	}

	// traceback
	var ra, rb []byte
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && score[i][j] == score[i-1][j-1]+nwScoreCell(a[i-1], b[j-1]):
			ra = append(ra, a[i-1])
			rb = append(rb, b[j-1])
			i--
			j--
		case i > 0 && score[i][j] == score[i-1][j]+nwGap:
			ra = append(ra, a[i-1])
			rb = append(rb, Gap)
			i--
		default:
			ra = append(ra, Gap)
			rb = append(rb, b[j-1])
			j--
		}
	}
	reverse(ra)
	reverse(rb)
	return ra, rb
}

// nwScore is the alignment score without traceback, used for center selection.
func nwScore(a, b []byte) int {
	n, m := len(a), len(b)
	prev := make([]int, m+1)
	cur := make([]int, m+1)
	for j := 1; j <= m; j++ {
		prev[j] = j * nwGap
	}
	for i := 1; i <= n; i++ {
		cur[0] = i * nwGap
		for j := 1; j <= m; j++ {
			best := prev[j-1] + nwScoreCell(a[i-1], b[j-1])
			if v := prev[j] + nwGap; v > best {
				best = v
			}
			if v := cur[j-1] + nwGap; v > best {
				best = v
			}
			cur[j] = best
		}
		prev, cur = cur, prev
	}
	return prev[m]
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
