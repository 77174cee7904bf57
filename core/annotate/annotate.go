// Package annotate joins sequence records to diet records by species name,
// assigning each sequence a family label.
package annotate

import (
	"strings"

	"phylopipe-core/diet"
	"phylopipe-core/fasta"
)

// Record is a DNA sequence with its derived species name and family.
type Record struct {
	ID     string
	Name   string // species binomial from the FASTA header
	Family string // "" until Assign, survivors always non-empty
	Seq    []byte
}

// TipLabel is the display label used on alignments, matrices and tree tips.
func (r Record) TipLabel() string {
	return r.Family + "_" + strings.ReplaceAll(r.Name, " ", "_")
}

// Policy controls how species names are matched against predator taxonomies.
type Policy struct {
	// ExactToken requires the binomial to appear as a whole ;-delimited token
	// sequence rather than anywhere in the string. Off by default: loose
	// containment with first-match-wins over a stable record order keeps
	// assignment reproducible.
	ExactToken bool
}

// FromFasta derives annotator records from raw FASTA records.
func FromFasta(recs []fasta.Record) []Record {
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		out = append(out, Record{ID: r.ID, Name: fasta.SpeciesName(r.Desc), Seq: r.Seq})
	}
	return out
}

// Assign sets Family on each record from the first diet record whose predator
// taxonomy contains the species name. Diet record order is significant and
// must be stable across runs. Records with no match keep Family == "".
func Assign(recs []Record, dietRecs []diet.Record, pol Policy) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		if r.Name != "" {
			for _, d := range dietRecs {
				if pol.matches(d.PredatorTaxon, r.Name) {
					r.Family = d.Family
					break
				}
			}
		}
		out[i] = r
	}
	return out
}

func (p Policy) matches(taxon, name string) bool {
	if !p.ExactToken {
		return strings.Contains(taxon, name)
	}
	for _, tok := range strings.Split(taxon, ";") {
		if strings.TrimSpace(tok) == name {
			return true
		}
	}
	// Binomials usually span genus and species ranks; accept "genus;species".
	return strings.Contains(";"+strings.ReplaceAll(taxon, "; ", ";")+";",
		";"+strings.ReplaceAll(name, " ", ";")+";")
}

// Dedupe drops records without a family and keeps only the first occurrence
// of each species name. After it, every survivor has a non-empty family and a
// unique name.
func Dedupe(recs []Record) []Record {
	seen := make(map[string]struct{}, len(recs))
	out := make([]Record, 0, len(recs))
	for _, r := range recs {
		if r.Family == "" {
			continue
		}
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Override applies explicit species→family corrections after assignment.
// The table is configuration, not code: corrections stay auditable.
func Override(recs []Record, overrides map[string]string) []Record {
	if len(overrides) == 0 {
		return recs
	}
	out := make([]Record, len(recs))
	for i, r := range recs {
		if fam, ok := overrides[r.Name]; ok {
			r.Family = fam
		}
		out[i] = r
	}
	return out
}
