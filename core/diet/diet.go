// Package diet models predation-event records and the family-level
// bookkeeping around them: extracting a family rank from a predator taxonomy
// string, normalizing inconsistent labels through an explicit alias table, and
// summarizing prey composition per family.
package diet

import (
	"regexp"
	"strings"
)

// Record is one observed or attempted predation event. Family is derived from
// PredatorTaxon after load and is the only field ever rewritten.
type Record struct {
	PredatorTaxon string
	Prey          string
	Family        string
}

// familyRank is the 0-based position of the family token in a
// semicolon-delimited predator taxonomy (order;suborder;family;genus;...).
// Rank ordering is not fully consistent across sources, so genus-level
// stragglers land here too; Aliases corrects the known ones.
const familyRank = 2

// ExtractFamily returns the family-rank token of a predator taxonomy string,
// or "" when the string has too few ranks. Callers must drop empty-family
// records downstream rather than treat this as fatal.
func ExtractFamily(taxon string) string {
	parts := strings.Split(taxon, ";")
	if len(parts) <= familyRank {
		return ""
	}
	return strings.TrimSpace(parts[familyRank])
}

// Aliases collapses known synonyms and genus-level mislabels into canonical
// family names. Unknown labels pass through unchanged, so stray labels stay
// visible instead of being silently hidden.
type Aliases map[string]string

// Apply normalizes one label. Idempotent: canonical names are never keys that
// map elsewhere.
func (a Aliases) Apply(family string) string {
	if canon, ok := a[family]; ok {
		return canon
	}
	return family
}

// Annotate derives and normalizes Family for every record in place-order,
// returning a new slice. Record order is preserved: the annotator's
// first-match-wins join depends on it.
func Annotate(recs []Record, aliases Aliases) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		r.Family = aliases.Apply(ExtractFamily(r.PredatorTaxon))
		out[i] = r
	}
	return out
}

// FilterFamilies keeps records whose predator taxonomy matches the family
// alternation pattern.
func FilterFamilies(recs []Record, pattern *regexp.Regexp) []Record {
	var out []Record
	for _, r := range recs {
		if pattern.MatchString(r.PredatorTaxon) {
			out = append(out, r)
		}
	}
	return out
}

// DropUnassigned removes records whose family came out empty (taxonomy with
// fewer ranks than the family index).
func DropUnassigned(recs []Record) []Record {
	var out []Record
	for _, r := range recs {
		if r.Family != "" {
			out = append(out, r)
		}
	}
	return out
}
