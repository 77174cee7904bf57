package fasta

import "strings"

// SpeciesName derives a species binomial from a FASTA header: the 2nd and 3rd
// whitespace tokens (GenBank headers put genus and species there, after the
// accession). Headers with fewer tokens yield a partial name, never an error;
// downstream matching simply finds nothing for them.
func SpeciesName(desc string) string {
	tok := strings.Fields(desc)
	switch {
	case len(tok) >= 3:
		return tok[1] + " " + tok[2]
	case len(tok) == 2:
		return tok[1]
	default:
		return ""
	}
}
