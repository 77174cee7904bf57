// Package entrez is a minimal NCBI E-utilities client: id search, per-id
// summary lookup, FASTA fetch. The repository is slow and rate-limited, so
// every call retries with exponential backoff and callers are expected to
// degrade to a cached local file rather than fail the whole run.
package entrez

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// DefaultBaseURL is the public E-utilities endpoint.
const DefaultBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client talks to one E-utilities endpoint.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tool       string // identifies the pipeline to NCBI
	Email      string
	MaxRetries uint64
	Log        *zap.Logger
}

// New returns a client with sane timeouts against base (DefaultBaseURL when
// empty).
func New(base string, log *zap.Logger) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		BaseURL:    base,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Tool:       "phylopipe",
		MaxRetries: 4,
		Log:        log,
	}
}

// Search runs esearch and returns up to retmax record identifiers for term.
// An empty result set is not an error: the caller just gets no ids.
func (c *Client) Search(ctx context.Context, db, term string, retmax int) ([]string, error) {
	q := url.Values{
		"db":      {db},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {fmt.Sprint(retmax)},
	}
	body, err := c.get(ctx, "esearch.fcgi", q)
	if err != nil {
		return nil, fmt.Errorf("entrez search %q: %w", term, err)
	}
	var parsed struct {
		ESearchResult struct {
			IDList []string `json:"idlist"`
		} `json:"esearchresult"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("entrez search %q: %w", term, err)
	}
	return parsed.ESearchResult.IDList, nil
}

// Summary runs esummary for one id and returns its organism name. A summary
// without an organism field yields "" and no error; the caller decides what a
// missing name means.
func (c *Client) Summary(ctx context.Context, db, id string) (string, error) {
	q := url.Values{
		"db":      {db},
		"id":      {id},
		"retmode": {"json"},
	}
	body, err := c.get(ctx, "esummary.fcgi", q)
	if err != nil {
		return "", fmt.Errorf("entrez summary %s: %w", id, err)
	}
	var parsed struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("entrez summary %s: %w", id, err)
	}
	raw, ok := parsed.Result[id]
	if !ok {
		return "", nil
	}
	var doc struct {
		Organism string `json:"organism"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", nil // malformed docsum: treat as missing, not fatal
	}
	return doc.Organism, nil
}

// FetchFASTA runs efetch for a batch of ids and returns raw FASTA text.
func (c *Client) FetchFASTA(ctx context.Context, db string, ids []string) ([]byte, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := url.Values{
		"db":      {db},
		"id":      {strings.Join(ids, ",")},
		"rettype": {"fasta"},
		"retmode": {"text"},
	}
	body, err := c.get(ctx, "efetch.fcgi", q)
	if err != nil {
		return nil, fmt.Errorf("entrez fetch %d ids: %w", len(ids), err)
	}
	return body, nil
}

// get performs one E-utilities GET with retry. 4xx responses other than 429
// are permanent; everything else backs off and retries.
func (c *Client) get(ctx context.Context, endpoint string, q url.Values) ([]byte, error) {
	if c.Tool != "" {
		q.Set("tool", c.Tool)
	}
	if c.Email != "" {
		q.Set("email", c.Email)
	}
	u := strings.TrimRight(c.BaseURL, "/") + "/" + endpoint + "?" + q.Encode()

	var body []byte
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			err := fmt.Errorf("%s: HTTP %d", endpoint, resp.StatusCode)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			c.Log.Warn("entrez request failed, retrying",
				zap.String("endpoint", endpoint), zap.Int("status", resp.StatusCode))
			return err
		}
		body, err = io.ReadAll(resp.Body)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.MaxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return body, nil
}
