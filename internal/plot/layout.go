// Package plot renders the pipeline's terminal artifacts: family-colored
// dendrograms, a tanglegram juxtaposing two trees, and the grouped prey-count
// bar chart.
package plot

import (
	"phylopipe-core/tree"
)

// segment is one straight piece of a drawn tree edge.
type segment struct {
	x0, y0, x1, y1 float64
}

// tipPoint locates one labeled tip on the canvas.
type tipPoint struct {
	label string
	x, y  float64
}

// treeLayout is a left-to-right dendrogram layout: tips at integer y positions
// (top tip highest), node x = cumulative branch length from the root.
type treeLayout struct {
	segments []segment
	tips     []tipPoint
	maxDepth float64
}

func layoutTree(t *tree.Tree) *treeLayout {
	lo := &treeLayout{}
	nTips := len(t.Tips())
	nextY := float64(nTips)

	// y of an internal node is the mean of its children's y
	var place func(n *tree.Node, depth float64) float64
	place = func(n *tree.Node, depth float64) float64 {
		if depth > lo.maxDepth {
			lo.maxDepth = depth
		}
		if n.IsLeaf() {
			y := nextY
			nextY--
			lo.tips = append(lo.tips, tipPoint{label: n.Label, x: depth, y: y})
			return y
		}
		childYs := make([]float64, len(n.Children))
		childXs := make([]float64, len(n.Children))
		sum := 0.0
		for i, c := range n.Children {
			cx := depth + c.Length
			childYs[i] = place(c, cx)
			childXs[i] = cx
			sum += childYs[i]
		}
		y := sum / float64(len(n.Children))
		// vertical connector spanning the children, then horizontal stubs
		minY, maxY := childYs[0], childYs[0]
		for _, cy := range childYs[1:] {
			if cy < minY {
				minY = cy
			}
			if cy > maxY {
				maxY = cy
			}
		}
		lo.segments = append(lo.segments, segment{depth, minY, depth, maxY})
		for i := range n.Children {
			lo.segments = append(lo.segments, segment{depth, childYs[i], childXs[i], childYs[i]})
		}
		return y
	}
	if t.Root != nil {
		place(t.Root, 0)
	}
	return lo
}

// scaled returns a copy with x mapped through x' = off + scale*x (scale < 0
// mirrors, for the right-hand tree of a tanglegram).
func (lo *treeLayout) scaled(off, scale float64) *treeLayout {
	out := &treeLayout{maxDepth: lo.maxDepth}
	for _, s := range lo.segments {
		out.segments = append(out.segments, segment{off + scale*s.x0, s.y0, off + scale*s.x1, s.y1})
	}
	for _, tp := range lo.tips {
		out.tips = append(out.tips, tipPoint{tp.label, off + scale*tp.x, tp.y})
	}
	return out
}
