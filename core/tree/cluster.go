package tree

import (
	"fmt"

	"phylopipe-core/align"
	"phylopipe-core/distmat"
)

// Cluster infers a tree from an alignment by model-driven hierarchical
// clustering: model-based distances (pairwise deletion), then UPGMA average
// linkage. Deterministic given identical inputs and model. The cutoff is a
// merge-height threshold: tips joined at or below it share a cluster in the
// returned assignment map.
func Cluster(aln *align.Alignment, model distmat.Model, cutoff float64) (*Tree, map[string]int, error) {
	if cutoff < 0 {
		return nil, nil, fmt.Errorf("tree: clustering cutoff must be >= 0, got %g", cutoff)
	}
	m, err := distmat.FromAlignment(aln, model, true)
	if err != nil {
		return nil, nil, err
	}
	return upgma(m, cutoff)
}

// upgma performs average-linkage agglomeration over a distance matrix.
func upgma(m *distmat.Matrix, cutoff float64) (*Tree, map[string]int, error) {
	n := m.Dim()
	if n < 2 {
		return nil, nil, fmt.Errorf("tree: clustering needs at least 2 taxa, got %d", n)
	}

	type cluster struct {
		node   *Node
		size   int
		height float64
		tips   []int // original taxon indices
	}
	active := make([]*cluster, n)
	for i, label := range m.Labels {
		active[i] = &cluster{node: &Node{Label: label}, size: 1, tips: []int{i}}
	}

	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
		for j := range d[i] {
			d[i][j] = m.At(i, j)
		}
	}

	// union-find over original taxa for the cutoff assignment
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for len(active) > 1 {
		k := len(active)
		bi, bj := 0, 1
		for i := 0; i < k; i++ {
			for j := i + 1; j < k; j++ {
				if d[i][j] < d[bi][bj] {
					bi, bj = i, j
				}
			}
		}

		ci, cj := active[bi], active[bj]
		height := d[bi][bj] / 2
		ci.node.Length = clampBranch(height - ci.height)
		cj.node.Length = clampBranch(height - cj.height)
		merged := &cluster{
			node:   &Node{Children: []*Node{ci.node, cj.node}},
			size:   ci.size + cj.size,
			height: height,
			tips:   append(append([]int(nil), ci.tips...), cj.tips...),
		}
		if height <= cutoff {
			parent[find(ci.tips[0])] = find(cj.tips[0])
		}

		du := make([]float64, k)
		for x := 0; x < k; x++ {
			if x == bi || x == bj {
				continue
			}
			du[x] = (float64(ci.size)*d[bi][x] + float64(cj.size)*d[bj][x]) / float64(merged.size)
		}

		var nextActive []*cluster
		var keep []int
		for x := 0; x < k; x++ {
			if x == bi || x == bj {
				continue
			}
			nextActive = append(nextActive, active[x])
			keep = append(keep, x)
		}
		nextActive = append(nextActive, merged)

		nd := make([][]float64, len(nextActive))
		for i := range nd {
			nd[i] = make([]float64, len(nextActive))
		}
		for a, xa := range keep {
			for b, xb := range keep {
				nd[a][b] = d[xa][xb]
			}
			nd[a][len(keep)] = du[xa]
			nd[len(keep)][a] = du[xa]
		}
		active, d = nextActive, nd
	}

	// normalize cluster ids by taxon order
	assign := make(map[string]int, n)
	idByRoot := make(map[int]int)
	for i, label := range m.Labels {
		root := find(i)
		id, ok := idByRoot[root]
		if !ok {
			id = len(idByRoot)
			idByRoot[root] = id
		}
		assign[label] = id
	}
	return &Tree{Root: active[0].node}, assign, nil
}
