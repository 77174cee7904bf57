package diet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads a diet-event table from a CSV file. Columns are addressed by
// header name, not position; predator_taxon and prey are required, anything
// else is ignored.
func Load(path string) ([]Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	recs, err := Read(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

// Read parses diet records from r.
func Read(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("diet table header: %w", err)
	}
	taxonCol, preyCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "predator_taxon":
			taxonCol = i
		case "prey":
			preyCol = i
		}
	}
	if taxonCol < 0 || preyCol < 0 {
		return nil, fmt.Errorf("diet table needs predator_taxon and prey columns, got %v", header)
	}

	var out []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("diet table row: %w", err)
		}
		if taxonCol >= len(row) || preyCol >= len(row) {
			continue // short row, nothing usable
		}
		out = append(out, Record{
			PredatorTaxon: strings.TrimSpace(row[taxonCol]),
			Prey:          strings.TrimSpace(row[preyCol]),
		})
	}
	return out, nil
}
