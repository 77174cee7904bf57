package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phylopipe-core/diet"
	"phylopipe-core/tree"
)

func testTree(labels ...string) *tree.Tree {
	nodes := make([]*tree.Node, len(labels))
	for i, l := range labels {
		nodes[i] = &tree.Node{Label: l, Length: float64(i + 1)}
	}
	inner := &tree.Node{Children: nodes[:2], Length: 0.5}
	rest := append([]*tree.Node{inner}, nodes[2:]...)
	return &tree.Tree{Root: &tree.Node{Children: rest}}
}

func familyOf(label string) string { return label[:1] }

func TestDendrogramWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.png")
	tr := testTree("A_x", "A_y", "B_z")
	require.NoError(t, Dendrogram(tr, "blind snakes", familyOf, path))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestTanglegramRequiresSameTips(t *testing.T) {
	dir := t.TempDir()
	a := testTree("A_x", "A_y", "B_z")
	b := testTree("A_x", "A_y", "B_q")
	err := Tanglegram(a, b, "cmp", filepath.Join(dir, "t.png"))
	require.ErrorIs(t, err, tree.ErrTipSetMismatch)

	c := testTree("A_y", "A_x", "B_z") // same set, different order: fine
	require.NoError(t, Tanglegram(a, c, "cmp", filepath.Join(dir, "t.png")))
}

func TestPreyBarsWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prey.svg")
	counts := []diet.PreyCount{
		{Family: "Leptotyphlopidae", Prey: "Formicidae", Count: 3},
		{Family: "Typhlopidae", Prey: "Formicidae", Count: 2},
		{Family: "Typhlopidae", Prey: "Isoptera", Count: 4},
	}
	require.NoError(t, PreyBars(counts, "prey by family", path))
	st, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, st.Size())
}

func TestEmptyPathRejected(t *testing.T) {
	require.Error(t, PreyBars(nil, "x", ""))
}
