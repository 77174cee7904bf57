package fasta

import (
	"context"
)

// Record is a parsed FASTA sequence.
// ID is the first header token; Desc is the full header line after '>'.
type Record struct {
	ID   string
	Desc string
	Seq  []byte
}

// ReadFile loads every record from path ("-" for stdin, gzip transparent).
func ReadFile(path string) ([]Record, error) {
	return ReadFileCtx(context.Background(), path)
}

// ReadFileCtx is the ctx-aware variant of ReadFile. Cancellation is honored
// between records.
func ReadFileCtx(ctx context.Context, path string) ([]Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var out []Record
	if err := StreamCtx(ctx, rc, func(r Record) error {
		out = append(out, r)
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}
