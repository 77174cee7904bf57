package writers

import (
	"fmt"
	"io"

	"phylopipe-core/distmat"
	"phylopipe-core/tree"
)

// WriteMatrix renders a distance matrix as labeled TSV (header row + row
// labels), which spreadsheet tools and R both ingest directly.
func WriteMatrix(w io.Writer, m *distmat.Matrix) error {
	for _, l := range m.Labels {
		if _, err := fmt.Fprintf(w, "\t%s", l); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for i, l := range m.Labels {
		if _, err := fmt.Fprint(w, l); err != nil {
			return err
		}
		for j := range m.Labels {
			if _, err := fmt.Fprintf(w, "\t%.6g", m.At(i, j)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteNewick renders a tree in Newick format with a trailing newline.
func WriteNewick(w io.Writer, t *tree.Tree) error {
	_, err := fmt.Fprintln(w, t.Newick())
	return err
}
