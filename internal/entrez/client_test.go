package entrez

import (
	"context"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const base = "https://eutils.test/entrez/eutils"

func newTestClient() *Client {
	c := New(base, zap.NewNop())
	c.MaxRetries = 2
	return c
}

func TestSearchParsesIDList(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "=~^"+base+"/esearch\\.fcgi",
		httpmock.NewStringResponder(200,
			`{"esearchresult":{"idlist":["11","22","33"]}}`))

	ids, err := newTestClient().Search(context.Background(), "nucleotide", "Boa constrictor[Organism] AND cytb[Gene]", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"11", "22", "33"}, ids)
}

func TestSearchEmptyResultIsNotError(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "=~^"+base+"/esearch\\.fcgi",
		httpmock.NewStringResponder(200, `{"esearchresult":{"idlist":[]}}`))

	ids, err := newTestClient().Search(context.Background(), "nucleotide", "Nothing[Organism]", 3)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestSummaryToleratesMissingOrganism(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "=~^"+base+"/esummary\\.fcgi",
		httpmock.NewStringResponder(200, `{"result":{"uids":["11"],"11":{"title":"something"}}}`))

	name, err := newTestClient().Summary(context.Background(), "nucleotide", "11")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestGetRetriesOn500(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("GET", "=~^"+base+"/efetch\\.fcgi",
		func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 2 {
				return httpmock.NewStringResponse(500, "boom"), nil
			}
			return httpmock.NewStringResponse(200, ">id1 Boa constrictor cytb\nACGT\n"), nil
		})

	body, err := newTestClient().FetchFASTA(context.Background(), "nucleotide", []string{"11"})
	require.NoError(t, err)
	assert.Contains(t, string(body), "Boa constrictor")
	assert.Equal(t, 2, calls)
}

func TestGet404IsPermanent(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	calls := 0
	httpmock.RegisterResponder("GET", "=~^"+base+"/esearch\\.fcgi",
		func(*http.Request) (*http.Response, error) {
			calls++
			return httpmock.NewStringResponse(404, "gone"), nil
		})

	_, err := newTestClient().Search(context.Background(), "nucleotide", "x", 1)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "4xx must not be retried")
}

func TestFetchOutgroupsPartialFailure(t *testing.T) {
	httpmock.Activate()
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", "=~^"+base+"/esearch\\.fcgi",
		func(req *http.Request) (*http.Response, error) {
			term := req.URL.Query().Get("term")
			if term == "Boa constrictor[Organism] AND cytb[Gene]" {
				return httpmock.NewStringResponse(200, `{"esearchresult":{"idlist":["11"]}}`), nil
			}
			return httpmock.NewStringResponse(200, `{"esearchresult":{"idlist":[]}}`), nil
		})
	httpmock.RegisterResponder("GET", "=~^"+base+"/esummary\\.fcgi",
		httpmock.NewStringResponder(200, `{"result":{"uids":["11"],"11":{"organism":"Boa constrictor"}}}`))
	httpmock.RegisterResponder("GET", "=~^"+base+"/efetch\\.fcgi",
		httpmock.NewStringResponder(200, ">id11 Boa constrictor cytb\nACGTACGT\n"))

	recs, err := newTestClient().FetchOutgroups(context.Background(), "nucleotide", []Query{
		{Organism: "Boa constrictor", Gene: "cytb"},
		{Organism: "Unknownia nonexistens", Gene: "cytb"}, // empty hit list: skipped
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "id11", recs[0].ID)
}
