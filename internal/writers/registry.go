// Package writers renders pipeline artifacts (sequence table, prey summary,
// distance matrices, trees) in the supported output formats. Formats register
// themselves into per-artifact maps; dispatch is by name.
package writers

import (
	"fmt"
	"io"

	"phylopipe-core/annotate"
	"phylopipe-core/diet"
)

var (
	seqTableWriters  = map[string]func(io.Writer, []annotate.Record) error{}
	preyTableWriters = map[string]func(io.Writer, []diet.PreyCount) error{}
)

// RegisterSeqTable installs a sequence-table format (last registration wins).
func RegisterSeqTable(format string, fn func(io.Writer, []annotate.Record) error) {
	seqTableWriters[format] = fn
}

// RegisterPreyTable installs a prey-summary format.
func RegisterPreyTable(format string, fn func(io.Writer, []diet.PreyCount) error) {
	preyTableWriters[format] = fn
}

// WriteSeqTable renders the annotated sequence table.
func WriteSeqTable(format string, w io.Writer, recs []annotate.Record) error {
	fn, ok := seqTableWriters[format]
	if !ok {
		return fmt.Errorf("unknown sequence-table format %q", format)
	}
	return fn(w, recs)
}

// WritePreyTable renders the prey-count summary.
func WritePreyTable(format string, w io.Writer, counts []diet.PreyCount) error {
	fn, ok := preyTableWriters[format]
	if !ok {
		return fmt.Errorf("unknown prey-table format %q", format)
	}
	return fn(w, counts)
}

// Formats lists the registered table formats (for CLI validation).
func Formats() []string {
	out := make([]string, 0, len(seqTableWriters))
	for f := range seqTableWriters {
		out = append(out, f)
	}
	return out
}
