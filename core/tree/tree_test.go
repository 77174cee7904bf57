package tree

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phylopipe-core/align"
	"phylopipe-core/distmat"
)

func matrixFrom(t *testing.T, labels []string, d [][]float64) *distmat.Matrix {
	t.Helper()
	m := distmat.NewMatrix(labels)
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			m.Set(i, j, d[i][j])
		}
	}
	require.NoError(t, m.Check())
	return m
}

func TestNJThreeTaxaStar(t *testing.T) {
	m := matrixFrom(t, []string{"a", "b", "c"}, [][]float64{
		{0, 2, 4},
		{2, 0, 4},
		{4, 4, 0},
	})
	tr, err := NeighborJoining(m)
	require.NoError(t, err)
	assert.Len(t, tr.Tips(), 3)
	assert.Equal(t, 1, tr.InternalCount(), "N=3 must be a single-internal-node star")
}

func TestNJTipAndInternalCounts(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 8} {
		labels := make([]string, n)
		d := make([][]float64, n)
		for i := range labels {
			labels[i] = string(rune('a' + i))
			d[i] = make([]float64, n)
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				d[i][j] = float64(j - i) // metric enough for structure checks
				d[j][i] = d[i][j]
			}
		}
		tr, err := NeighborJoining(matrixFrom(t, labels, d))
		require.NoError(t, err, "n=%d", n)
		assert.Len(t, tr.Tips(), n, "n=%d", n)
		if n >= 3 {
			assert.Equal(t, n-2, tr.InternalCount(), "n=%d", n)
		}
	}
}

func TestNJRecoversAdditiveTopology(t *testing.T) {
	// ((A:1,B:2):5,(C:3,D:4)) — additive distances
	m := matrixFrom(t, []string{"A", "B", "C", "D"}, [][]float64{
		{0, 3, 9, 10},
		{3, 0, 10, 11},
		{9, 10, 0, 7},
		{10, 11, 7, 0},
	})
	got, err := NeighborJoining(m)
	require.NoError(t, err)

	want := &Tree{Root: &Node{Children: []*Node{
		{Children: []*Node{{Label: "A"}, {Label: "B"}}},
		{Label: "C"},
		{Label: "D"},
	}}}
	rf, err := RobinsonFoulds(got, want)
	require.NoError(t, err)
	assert.Zero(t, rf, "NJ must recover the AB|CD split: %s", got.Newick())
}

func TestTreeMatrixLabelRoundTrip(t *testing.T) {
	labels := []string{"x", "y", "z", "w"}
	m := matrixFrom(t, labels, [][]float64{
		{0, 1, 2, 3},
		{1, 0, 2, 3},
		{2, 2, 0, 3},
		{3, 3, 3, 0},
	})
	tr, err := NeighborJoining(m)
	require.NoError(t, err)
	assert.ElementsMatch(t, labels, tr.TipLabels(), "tip set must match matrix labels")
}

func TestRelabel(t *testing.T) {
	tr := &Tree{Root: &Node{Children: []*Node{
		{Label: "t0"}, {Label: "t1"}, {Label: "t2"},
	}}}
	require.NoError(t, Relabel(tr, []string{"a", "b", "c"}))
	assert.Equal(t, []string{"a", "b", "c"}, tr.TipLabels())
	require.Error(t, Relabel(tr, []string{"a", "b"}))
}

func TestClusterDeterministicWithCutoff(t *testing.T) {
	labels := []string{"L_a", "L_b", "T_c", "T_d"}
	seqs := [][]byte{
		[]byte("ACGTACGTACGTACGTACGT"),
		[]byte("ACGTACGTACGTACGTACGA"), // one step from a
		[]byte("TTGGCCAATTGGCCAATTGG"),
		[]byte("TTGGCCAATTGGCCAATTGC"), // one step from c
	}
	aln, err := align.New(labels, seqs)
	require.NoError(t, err)

	t1, assign1, err := Cluster(aln, distmat.JC69, 0.1)
	require.NoError(t, err)
	t2, assign2, err := Cluster(aln, distmat.JC69, 0.1)
	require.NoError(t, err)
	assert.Equal(t, t1.Newick(), t2.Newick(), "clustering must be deterministic")
	assert.Equal(t, assign1, assign2)

	// close pairs share clusters, distant pairs do not
	assert.Equal(t, assign1["L_a"], assign1["L_b"])
	assert.Equal(t, assign1["T_c"], assign1["T_d"])
	assert.NotEqual(t, assign1["L_a"], assign1["T_c"])

	assert.Len(t, t1.Tips(), 4)
}

func TestCompareMismatchedTipSets(t *testing.T) {
	a := &Tree{Root: &Node{Children: []*Node{{Label: "x"}, {Label: "y"}, {Label: "z"}}}}
	b := &Tree{Root: &Node{Children: []*Node{{Label: "x"}, {Label: "y"}, {Label: "q"}}}}
	_, err := RobinsonFoulds(a, b)
	require.ErrorIs(t, err, ErrTipSetMismatch)
	_, err = SharedBipartitions(a, b)
	require.ErrorIs(t, err, ErrTipSetMismatch)
}

func TestNewickShape(t *testing.T) {
	tr := &Tree{Root: &Node{Children: []*Node{
		{Children: []*Node{{Label: "a a", Length: 1}, {Label: "b", Length: 2}}, Length: 0.5},
		{Label: "c", Length: 3},
	}}}
	nw := tr.Newick()
	assert.Equal(t, "((a_a:1,b:2):0.5,c:3);", nw)
}

func TestClusterContext(t *testing.T) {
	// Cluster takes no context by design (pure CPU over small inputs); this
	// guards the aligner path which does.
	aln, err := align.CenterStar{}.Align(context.Background(),
		[]string{"a", "b"}, [][]byte{[]byte("ACGTACGT"), []byte("ACGTACGA")})
	require.NoError(t, err)
	_, _, err = Cluster(aln, distmat.K80, 0.5)
	require.NoError(t, err)
}
