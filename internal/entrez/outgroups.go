package entrez

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"phylopipe-core/fasta"
)

// Query asks for reference sequences of one organism and gene keyword.
type Query struct {
	Organism string
	Gene     string
	Retmax   int // ids to consider per organism; <=0 means 3
}

// Term renders the E-utilities search term.
func (q Query) Term() string {
	return fmt.Sprintf("%s[Organism] AND %s[Gene]", q.Organism, q.Gene)
}

// FetchOutgroups resolves each query to FASTA records: id search, summary
// lookup for the organism name, batch fetch. Partial failures (no hits, a
// missing organism name, one organism's fetch erroring out) are logged and
// skipped; the call only fails when every query failed outright.
func (c *Client) FetchOutgroups(ctx context.Context, db string, queries []Query) ([]fasta.Record, error) {
	var out []fasta.Record
	failures := 0
	for _, q := range queries {
		recs, err := c.fetchOne(ctx, db, q)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			failures++
			c.Log.Warn("outgroup fetch failed, continuing",
				zap.String("organism", q.Organism), zap.Error(err))
			continue
		}
		out = append(out, recs...)
	}
	if len(queries) > 0 && failures == len(queries) {
		return nil, fmt.Errorf("entrez: all %d outgroup queries failed", failures)
	}
	return out, nil
}

func (c *Client) fetchOne(ctx context.Context, db string, q Query) ([]fasta.Record, error) {
	retmax := q.Retmax
	if retmax <= 0 {
		retmax = 3
	}
	ids, err := c.Search(ctx, db, q.Term(), retmax)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		c.Log.Warn("no repository hits", zap.String("term", q.Term()))
		return nil, nil
	}

	// Keep the first id whose summary names the organism we asked for; fall
	// back to the first id when no summary carries a usable name.
	chosen := ids[0]
	for _, id := range ids {
		name, err := c.Summary(ctx, db, id)
		if err != nil {
			c.Log.Warn("summary lookup failed", zap.String("id", id), zap.Error(err))
			continue
		}
		if name == q.Organism {
			chosen = id
			break
		}
	}

	raw, err := c.FetchFASTA(ctx, db, []string{chosen})
	if err != nil {
		return nil, err
	}
	var recs []fasta.Record
	if err := fasta.StreamCtx(ctx, bytes.NewReader(raw), func(r fasta.Record) error {
		recs = append(recs, r)
		return nil
	}); err != nil {
		return nil, err
	}
	return recs, nil
}
