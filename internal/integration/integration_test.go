// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phylopipe/internal/app"
)

const dietCSV = `predator_taxon,prey
Serpentes;Typhlopoidea;Leptotyphlopidae;Rena;Rena dulcis,Isoptera
Serpentes;Typhlopoidea;Leptotyphlopidae;Rena;Rena dulcis,Formicidae
Serpentes;Typhlopoidea;Leptotyphlopidae;Rena;Rena dulcis,Formicidae
Serpentes;Typhlopoidea;Leptotyphlopidae;Rena;Rena humilis,Formicidae
Serpentes;Typhlopoidea;Typhlopidae;Typhlops;Typhlops jamaicensis,Formicidae
Serpentes;Typhlopoidea;Typhlopidae;Amerotyphlops;Amerotyphlops brongersmianus,Isoptera
Serpentes;Booidea;Boidae;Boa;Boa constrictor,Mammalia
Serpentes;Booidea;Boidae;Boa;Boa constrictor,Mammalia
`

// 60 bp backbone with a handful of substitutions per taxon, divergent enough
// for non-zero distances but far from model saturation
const (
	seqBase = "ATGGCAACCCTAATCACCGCTGTAGCCCTACTAACCGGCACCGCAATCTCAATCTGATGA"
	seqsFA  = ">a1 Rena dulcis cytochrome b\n" +
		"ATGGCAACCCTAATCACCGCTGTAGCCCTACTAACCGGCACCGCAATCTCAATCTGATGA\n" +
		">a2 Rena humilis cytochrome b\n" +
		"ATGGCAACCCTAATCACCGCTGTAGCCCTACTAACCGGCACCGCAATCTCTATCTGATGA\n" +
		">a3 Typhlops jamaicensis cytochrome b\n" +
		"ATGGCTACCCTAATCACCGCTGTAGCCCTACTTACCGGCACCGCAATCTCAATTTGATGA\n" +
		">a4 Amerotyphlops brongersmianus cytochrome b\n" +
		"ATGGCTACCCTAATCACCGCTGTAGCCTTACTTACCGGCACCGCAATCTCAATTTGATGA\n"
	outgroupFA = ">og1 Boa constrictor cytochrome b\n" +
		"ATGGCAACACTAATCACTGCTGTAGCCCTACTAACCGGAACCGCAATCTCAATCTGGTGA\n"
)

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestEndToEnd(t *testing.T) {
	dir := t.TempDir()
	diet := write(t, dir, "diet.csv", dietCSV)
	seqs := write(t, dir, "seqs.fasta", seqsFA)
	og := write(t, dir, "outgroups.fasta", outgroupFA)
	outDir := filepath.Join(dir, "out")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--diet", diet,
		"--sequences", seqs,
		"--outgroups", og,
		"--model", "JC69",
		"--out", outDir,
		"--no-plots",
		"--quiet",
	}, &out, &errBuf)
	require.Equal(t, 0, code, "stderr: %s", errBuf.String())
	assert.Contains(t, out.String(), "family\tprey\tcount")

	for _, f := range []string{
		"seq_table.tsv",
		"prey_counts.tsv",
		"blind_model_dist.tsv",
		"blind_kmer_dist.tsv",
		"blind_cluster.nwk",
		"blind_nj.nwk",
		"blind_nj_kmer.nwk",
		"expanded_model_dist.tsv",
		"expanded_nj.nwk",
	} {
		_, err := os.Stat(filepath.Join(outDir, f))
		assert.NoError(t, err, f)
	}

	table, err := os.ReadFile(filepath.Join(outDir, "seq_table.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(table), "Rena dulcis\tLeptotyphlopidae")
	assert.Contains(t, string(table), "Boa constrictor\tBoidae")

	nwk, err := os.ReadFile(filepath.Join(outDir, "blind_nj.nwk"))
	require.NoError(t, err)
	assert.Contains(t, string(nwk), "Typhlopidae_Typhlops_jamaicensis")
}

func TestDeterministicAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	diet := write(t, dir, "diet.csv", dietCSV)
	seqs := write(t, dir, "seqs.fasta", seqsFA)

	run := func(outDir string) string {
		var out, errBuf bytes.Buffer
		code := app.Run([]string{
			"--diet", diet,
			"--sequences", seqs,
			"--model", "JC69",
			"--out", outDir,
			"--no-plots", "--quiet",
		}, &out, &errBuf)
		require.Equal(t, 0, code, "stderr: %s", errBuf.String())
		nwk, err := os.ReadFile(filepath.Join(outDir, "blind_nj.nwk"))
		require.NoError(t, err)
		return string(nwk)
	}

	first := run(filepath.Join(dir, "out1"))
	second := run(filepath.Join(dir, "out2"))
	assert.Equal(t, first, second)
}

func TestUsageErrorExits2(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{"--sequences", "x.fasta"}, &out, &errBuf)
	assert.Equal(t, 2, code)
	assert.Contains(t, errBuf.String(), "--diet")
}

func TestTooFewAnnotatedExits1(t *testing.T) {
	dir := t.TempDir()
	diet := write(t, dir, "diet.csv", dietCSV)
	// only one record joins the diet table: alignment precondition fails
	solo := write(t, dir, "solo.fasta", ">a1 Rena dulcis cytb\n"+seqBase+"\n")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--diet", diet,
		"--sequences", solo,
		"--out", filepath.Join(dir, "out"),
		"--no-plots", "--quiet",
	}, &out, &errBuf)
	assert.Equal(t, 1, code)
}
