package tree

import (
	"fmt"

	"phylopipe-core/distmat"
)

// NeighborJoining builds an unrooted tree from a bare distance matrix by the
// standard agglomeration: repeatedly join the pair minimizing the corrected
// distance criterion, replace it with a merged node, update distances. The
// final trifurcation acts as the root node. For N taxa the result has exactly
// N tips and N-2 internal nodes; N=3 yields a single internal node (a star).
func NeighborJoining(m *distmat.Matrix) (*Tree, error) {
	n := m.Dim()
	if n < 2 {
		return nil, fmt.Errorf("tree: neighbor-joining needs at least 2 taxa, got %d", n)
	}

	nodes := make([]*Node, n)
	for i, label := range m.Labels {
		nodes[i] = &Node{Label: label}
	}
	if n == 2 {
		half := m.At(0, 1) / 2
		nodes[0].Length, nodes[1].Length = half, half
		return &Tree{Root: &Node{Children: nodes}}, nil
	}

	// working copy of the distance matrix
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = m.At(i, j)
		}
	}

	for len(nodes) > 3 {
		k := len(nodes)
		r := make([]float64, k)
		for i := 0; i < k; i++ {
			for j := 0; j < k; j++ {
				r[i] += d[i][j]
			}
		}

		// minimize Q(i,j); ties break on the lower (i,j) pair for determinism
		bi, bj := 0, 1
		bestQ := float64(k-2)*d[0][1] - r[0] - r[1]
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				q := float64(k-2)*d[i][j] - r[i] - r[j]
				if q < bestQ {
					bestQ, bi, bj = q, i, j
				}
			}
		}

		li := d[bi][bj]/2 + (r[bi]-r[bj])/(2*float64(k-2))
		lj := d[bi][bj] - li
		nodes[bi].Length = clampBranch(li)
		nodes[bj].Length = clampBranch(lj)
		merged := &Node{Children: []*Node{nodes[bi], nodes[bj]}}

		// distances from the merged node to everything still active
		du := make([]float64, k)
		for x := 0; x < k; x++ {
			if x == bi || x == bj {
				continue
			}
			du[x] = clampBranch((d[bi][x] + d[bj][x] - d[bi][bj]) / 2)
		}

		// rebuild actives without bi/bj, appending the merged node
		var nextNodes []*Node
		var keep []int
		for x := 0; x < k; x++ {
			if x == bi || x == bj {
				continue
			}
			nextNodes = append(nextNodes, nodes[x])
			keep = append(keep, x)
		}
		nextNodes = append(nextNodes, merged)

		nd := make([][]float64, len(nextNodes))
		for i := range nd {
			nd[i] = make([]float64, len(nextNodes))
		}
		for a, xa := range keep {
			for b, xb := range keep {
				nd[a][b] = d[xa][xb]
			}
			nd[a][len(keep)] = du[xa]
			nd[len(keep)][a] = du[xa]
		}
		nodes, d = nextNodes, nd
	}

	// final three-way join
	a, b, c := d[0][1], d[0][2], d[1][2]
	nodes[0].Length = clampBranch((a + b - c) / 2)
	nodes[1].Length = clampBranch((a + c - b) / 2)
	nodes[2].Length = clampBranch((b + c - a) / 2)
	return &Tree{Root: &Node{Children: nodes}}, nil
}

func clampBranch(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
