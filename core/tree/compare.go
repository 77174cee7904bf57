package tree

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTipSetMismatch is returned when two trees are compared over different
// taxon sets. Comparing them anyway would silently misalign tips.
var ErrTipSetMismatch = errors.New("trees have different tip-label sets")

// SameTipSet reports whether two trees cover the same labels.
func SameTipSet(a, b *Tree) bool {
	as, bs := a.TipSet(), b.TipSet()
	if len(as) != len(bs) {
		return false
	}
	for l := range as {
		if _, ok := bs[l]; !ok {
			return false
		}
	}
	return true
}

// CheckComparable validates the comparison precondition.
func CheckComparable(a, b *Tree) error {
	if !SameTipSet(a, b) {
		return fmt.Errorf("tree: %w (%d vs %d tips)", ErrTipSetMismatch,
			len(a.TipSet()), len(b.TipSet()))
	}
	return nil
}

// RobinsonFoulds is the symmetric-difference topology distance: the number of
// non-trivial bipartitions present in exactly one of the two trees. Both trees
// must share a tip set. 0 means identical topologies.
func RobinsonFoulds(a, b *Tree) (int, error) {
	if err := CheckComparable(a, b); err != nil {
		return 0, err
	}
	n := len(a.TipSet())
	pa := bipartitions(a, n)
	pb := bipartitions(b, n)
	diff := 0
	for p := range pa {
		if _, ok := pb[p]; !ok {
			diff++
		}
	}
	for p := range pb {
		if _, ok := pa[p]; !ok {
			diff++
		}
	}
	return diff, nil
}

// SharedBipartitions returns the non-trivial splits present in both trees,
// keyed by the canonical side (used to color agreeing subtrees in the
// tanglegram).
func SharedBipartitions(a, b *Tree) (map[string]struct{}, error) {
	if err := CheckComparable(a, b); err != nil {
		return nil, err
	}
	n := len(a.TipSet())
	pa := bipartitions(a, n)
	pb := bipartitions(b, n)
	shared := make(map[string]struct{})
	for p := range pa {
		if _, ok := pb[p]; ok {
			shared[p] = struct{}{}
		}
	}
	return shared, nil
}

// Clades returns the tip-set encoding of every non-root internal node. Used
// for display-level agreement between two rooted trees.
func Clades(t *Tree) map[string]struct{} {
	out := make(map[string]struct{})
	var walk func(*Node) []string
	walk = func(nd *Node) []string {
		if nd.IsLeaf() {
			return []string{nd.Label}
		}
		var below []string
		for _, c := range nd.Children {
			below = append(below, walk(c)...)
		}
		if nd != t.Root {
			out[encodeClade(below)] = struct{}{}
		}
		return below
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return out
}

// TipClade returns the encoding of the smallest internal clade containing
// label (its parent's tip set), or "" when the label is absent.
func TipClade(t *Tree, label string) string {
	var found string
	var walk func(*Node) []string
	walk = func(nd *Node) []string {
		if nd.IsLeaf() {
			return []string{nd.Label}
		}
		var below []string
		contains := false
		for _, c := range nd.Children {
			tips := walk(c)
			for _, l := range tips {
				if l == label {
					contains = true
				}
			}
			below = append(below, tips...)
		}
		if contains && found == "" {
			found = encodeClade(below)
		}
		return below
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return found
}

func encodeClade(labels []string) string {
	sorted := append([]string(nil), labels...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// bipartitions collects canonical encodings of each internal edge's tip-side
// set, skipping trivial splits (single tips or the whole set minus one).
func bipartitions(t *Tree, n int) map[string]struct{} {
	all := t.TipLabels()
	sort.Strings(all)
	out := make(map[string]struct{})
	var walk func(*Node) []string
	walk = func(nd *Node) []string {
		if nd.IsLeaf() {
			return []string{nd.Label}
		}
		var below []string
		for _, c := range nd.Children {
			below = append(below, walk(c)...)
		}
		if nd != t.Root && len(below) >= 2 && len(below) <= n-2 {
			out[canonicalSplit(below, all)] = struct{}{}
		}
		return below
	}
	if t.Root != nil {
		walk(t.Root)
	}
	return out
}

// canonicalSplit encodes a split identically from either side: use the side
// containing the lexicographically smallest label.
func canonicalSplit(side []string, all []string) string {
	in := make(map[string]struct{}, len(side))
	for _, l := range side {
		in[l] = struct{}{}
	}
	if _, ok := in[all[0]]; !ok {
		var other []string
		for _, l := range all {
			if _, here := in[l]; !here {
				other = append(other, l)
			}
		}
		side = other
	}
	sorted := append([]string(nil), side...)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}
