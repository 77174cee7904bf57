package distmat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phylopipe-core/align"
)

func mustAlign(t *testing.T, labels []string, rows []string) *align.Alignment {
	t.Helper()
	seqs := make([][]byte, len(rows))
	for i, r := range rows {
		seqs[i] = []byte(r)
	}
	aln, err := align.New(labels, seqs)
	require.NoError(t, err)
	return aln
}

func checkInvariants(t *testing.T, m *Matrix) {
	t.Helper()
	require.NoError(t, m.Check())
	for i := 0; i < m.Dim(); i++ {
		assert.Zero(t, m.At(i, i))
		for j := 0; j < m.Dim(); j++ {
			assert.InDelta(t, m.At(i, j), m.At(j, i), 1e-12)
			assert.GreaterOrEqual(t, m.At(i, j), 0.0)
		}
	}
}

func TestModelDistanceIdenticalSequencesZero(t *testing.T) {
	aln := mustAlign(t,
		[]string{"x", "y", "z"},
		[]string{"ACGTACGTCC", "ACGTACGTCC", "ACGTACTTCC"})
	for _, model := range []Model{JC69, K80, TN93} {
		m, err := FromAlignment(aln, model, true)
		require.NoError(t, err, model)
		checkInvariants(t, m)
		assert.Zero(t, m.At(0, 1), "identical sequences under %s", model)
		assert.Greater(t, m.At(0, 2), 0.0, model)
	}
}

func TestPairwiseDeletionSkipsGapColumns(t *testing.T) {
	aln := mustAlign(t,
		[]string{"x", "y", "z"},
		[]string{"ACGTAC-TCC", "ACGTACGTCC", "AC--ACGTCC"})
	mPair, err := FromAlignment(aln, JC69, true)
	require.NoError(t, err)
	// x and y differ only where x has a gap: pairwise deletion ignores it.
	assert.Zero(t, mPair.At(0, 1))

	mComplete, err := FromAlignment(aln, JC69, false)
	require.NoError(t, err)
	assert.Zero(t, mComplete.At(0, 1))
	checkInvariants(t, mPair)
	checkInvariants(t, mComplete)
}

func TestJC69MatchesClosedForm(t *testing.T) {
	// 2 differences over 8 sites: p = 0.25
	aln := mustAlign(t, []string{"x", "y"}, []string{"ACGTACGT", "ACGTACAA"})
	m, err := FromAlignment(aln, JC69, true)
	require.NoError(t, err)
	want := -0.75 * math.Log(1-4*0.25/3)
	assert.InDelta(t, want, m.At(0, 1), 1e-12)
}

func TestParseModel(t *testing.T) {
	_, err := ParseModel("GTR")
	require.Error(t, err)
	got, err := ParseModel("TN93")
	require.NoError(t, err)
	assert.Equal(t, TN93, got)
}

func TestKmerIdenticalZeroDisjointPositive(t *testing.T) {
	labels := []string{"a", "b", "c"}
	seqs := [][]byte{
		[]byte("ACGTACGTACGTACGT"),
		[]byte("ACGTACGTACGTACGT"),
		[]byte("GGGGGGGGGGGGGGGG"), // disjoint 5-mer composition
	}
	m, err := FromKmers(labels, seqs, DefaultK)
	require.NoError(t, err)
	checkInvariants(t, m)
	assert.Zero(t, m.At(0, 1))
	assert.Greater(t, m.At(0, 2), 0.0)
}

func TestKmerLengthRobustness(t *testing.T) {
	// Same composition, wildly different lengths: distance stays small, and
	// nothing breaks even though alignment-based comparison would be useless.
	short := []byte("ACGTACGTACGT")
	long := append([]byte(nil), short...)
	for i := 0; i < 20; i++ {
		long = append(long, short...)
	}
	m, err := FromKmers([]string{"s", "l"}, [][]byte{short, long}, DefaultK)
	require.NoError(t, err)
	assert.Less(t, m.At(0, 1), 0.05)
}

func TestKmerRejectsBadInput(t *testing.T) {
	_, err := FromKmers([]string{"a", "b"}, [][]byte{[]byte("ACGT"), []byte("ACGT")}, 0)
	require.Error(t, err)
	_, err = FromKmers([]string{"a"}, [][]byte{[]byte("ACGT")}, 5)
	require.Error(t, err)
}
