package cli

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, argv ...string) (Options, error) {
	t.Helper()
	fs := NewFlagSet("phylopipe")
	fs.SetOutput(io.Discard)
	return ParseArgs(fs, argv)
}

func TestParseMinimal(t *testing.T) {
	opt, err := parse(t, "--diet", "diet.csv", "--sequences", "seqs.fasta")
	require.NoError(t, err)
	assert.Equal(t, "diet.csv", opt.DietFile)
	assert.Equal(t, []string{"seqs.fasta"}, opt.SeqFiles)
	assert.Equal(t, "builtin", opt.Aligner)
	assert.Equal(t, "tsv", opt.Format)
}

func TestParseRepeatableSequences(t *testing.T) {
	opt, err := parse(t, "--diet", "d.csv", "-s", "a.fasta", "--sequences", "b.fasta")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.fasta", "b.fasta"}, opt.SeqFiles)
}

func TestParseRejects(t *testing.T) {
	cases := [][]string{
		{"--sequences", "s.fasta"},                                        // missing --diet
		{"--diet", "d.csv"},                                               // missing sequences
		{"--diet", "d.csv", "-s", "s.fasta", "--aligner", "clustal"},      // bad aligner
		{"--diet", "d.csv", "-s", "s.fasta", "--format", "xml"},           // bad format
		{"--diet", "d.csv", "-s", "s.fasta", "--model", "GTR"},            // bad model
		{"--diet", "d.csv", "-s", "s.fasta", "--kmer", "-1"},              // bad k
		{"--diet", "d.csv", "-s", "s.fasta", "--plot-format", "jpeg"},     // bad plot format
	}
	for _, argv := range cases {
		_, err := parse(t, argv...)
		assert.Error(t, err, "argv %v", argv)
	}
}

func TestModelNormalizedToUpper(t *testing.T) {
	opt, err := parse(t, "--diet", "d.csv", "-s", "s.fasta", "--model", "tn93")
	require.NoError(t, err)
	assert.Equal(t, "TN93", opt.Model)
}

func TestVersionShortCircuitsValidation(t *testing.T) {
	opt, err := parse(t, "--version")
	require.NoError(t, err)
	assert.True(t, opt.Version)
}
