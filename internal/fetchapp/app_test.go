package fetchapp

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const base = "http://eutils.test/entrez/eutils"

func mockEutils(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder("GET", base+"/esearch.fcgi",
		httpmock.NewStringResponder(200, `{"esearchresult":{"idlist":["101"]}}`))
	httpmock.RegisterResponder("GET", base+"/esummary.fcgi",
		httpmock.NewStringResponder(200, `{"result":{"101":{"organism":"Boa constrictor"}}}`))
	httpmock.RegisterResponder("GET", base+"/efetch.fcgi",
		httpmock.NewStringResponder(200, ">NC_101 Boa constrictor cytochrome b\nACGTACGTACGT\n"))
}

func TestRunWritesCache(t *testing.T) {
	mockEutils(t)
	out := filepath.Join(t.TempDir(), "outgroups.fasta")

	var stdout, stderr bytes.Buffer
	code := Run([]string{
		"--organism", "Boa constrictor",
		"--base-url", base,
		"--out", out,
		"--quiet",
	}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Boa constrictor")
	assert.Contains(t, string(data), "ACGTACGTACGT")
}

func TestRunNoHitsExits1(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder("GET", base+"/esearch.fcgi",
		httpmock.NewStringResponder(200, `{"esearchresult":{"idlist":[]}}`))

	out := filepath.Join(t.TempDir(), "outgroups.fasta")
	var stdout, stderr bytes.Buffer
	code := Run([]string{
		"--organism", "Nullius taxon",
		"--base-url", base,
		"--out", out,
		"--quiet",
	}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "cache must not be written on empty fetch")
}

func TestRunUsageErrorExits2(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"--gene", "cytb"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "--organism")
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"--version"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout.String(), "phylofetch version")
}
