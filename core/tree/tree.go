// Package tree infers and manipulates phylogenetic trees: neighbor-joining
// over a distance matrix and model-driven hierarchical clustering over an
// alignment.
package tree

import (
	"fmt"
	"strings"
)

// Node is one vertex of a tree. Leaves carry a Label; internal nodes carry
// children. Length is the branch length to the parent (0 for the root).
type Node struct {
	Label    string
	Length   float64
	Children []*Node
}

// IsLeaf reports whether the node is a tip.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Tree is a rooted representation; an unrooted tree is rooted at its final
// join (a trifurcation for neighbor-joining).
type Tree struct {
	Root *Node
}

// Tips returns leaf nodes in deterministic (depth-first, child-order) order.
func (t *Tree) Tips() []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(n *Node) {
		if n.IsLeaf() {
			out = append(out, n)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return out
}

// TipLabels returns tip labels in traversal order.
func (t *Tree) TipLabels() []string {
	tips := t.Tips()
	out := make([]string, len(tips))
	for i, n := range tips {
		out[i] = n.Label
	}
	return out
}

// TipSet returns the label set.
func (t *Tree) TipSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, l := range t.TipLabels() {
		out[l] = struct{}{}
	}
	return out
}

// InternalCount returns the number of internal (non-leaf) nodes.
func (t *Tree) InternalCount() int {
	count := 0
	var walk func(*Node)
	walk = func(n *Node) {
		if !n.IsLeaf() {
			count++
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return count
}

// Newick encodes the tree in Newick format with branch lengths.
func (t *Tree) Newick() string {
	if t.Root == nil {
		return ";"
	}
	var sb strings.Builder
	writeNewick(&sb, t.Root, true)
	sb.WriteByte(';')
	return sb.String()
}

func writeNewick(sb *strings.Builder, n *Node, root bool) {
	if n.IsLeaf() {
		sb.WriteString(sanitizeLabel(n.Label))
	} else {
		sb.WriteByte('(')
		for i, c := range n.Children {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeNewick(sb, c, false)
		}
		sb.WriteByte(')')
	}
	if !root {
		fmt.Fprintf(sb, ":%.6g", n.Length)
	}
}

func sanitizeLabel(l string) string {
	r := strings.NewReplacer(" ", "_", "(", "_", ")", "_", ",", "_", ":", "_", ";", "_")
	return r.Replace(l)
}

// Relabel reattaches labels to the tree's tips in traversal order. Required
// after builders that do not propagate labels (the alignment-free path).
func Relabel(t *Tree, labels []string) error {
	tips := t.Tips()
	if len(tips) != len(labels) {
		return fmt.Errorf("tree: %d labels for %d tips", len(labels), len(tips))
	}
	for i, n := range tips {
		n.Label = labels[i]
	}
	return nil
}
