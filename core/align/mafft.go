package align

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"phylopipe-core/fasta"
)

// Mafft aligns by shelling out to the mafft binary (iterative refinement,
// bounded by --maxiterate). Sequences round-trip through a temp FASTA keyed by
// synthetic IDs so arbitrary labels survive the external call.
type Mafft struct {
	Path       string // binary, default "mafft"
	MaxIterate int    // --maxiterate bound, default 2
	Dir        string // temp dir, default os temp
}

// Available reports whether the mafft binary can be found.
func (m Mafft) Available() bool {
	path := m.Path
	if path == "" {
		path = "mafft"
	}
	_, err := exec.LookPath(path)
	return err == nil
}

func (m Mafft) Align(ctx context.Context, labels []string, seqs [][]byte) (*Alignment, error) {
	if err := checkInput(labels, seqs); err != nil {
		return nil, err
	}
	bin := m.Path
	if bin == "" {
		bin = "mafft"
	}
	maxIter := m.MaxIterate
	if maxIter <= 0 {
		maxIter = 2
	}

	dir, err := os.MkdirTemp(m.Dir, "phylopipe-mafft-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "unaligned.fasta")
	recs := make([]fasta.Record, len(seqs))
	for i, s := range seqs {
		id := fmt.Sprintf("s%d", i)
		recs[i] = fasta.Record{ID: id, Desc: id, Seq: s}
	}
	fh, err := os.Create(in)
	if err != nil {
		return nil, err
	}
	if err := fasta.Write(fh, recs); err != nil {
		fh.Close()
		return nil, err
	}
	if err := fh.Close(); err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "--auto", "--quiet",
		"--maxiterate", fmt.Sprint(maxIter), in)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("mafft: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}

	byID := make(map[string][]byte, len(seqs))
	if err := fasta.StreamCtx(ctx, &stdout, func(r fasta.Record) error {
		byID[r.ID] = bytes.ToUpper(r.Seq)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("mafft output: %w", err)
	}

	rows := make([][]byte, len(seqs))
	for i := range seqs {
		row, ok := byID[fmt.Sprintf("s%d", i)]
		if !ok {
			return nil, fmt.Errorf("mafft output missing sequence %q", labels[i])
		}
		rows[i] = row
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return New(out, rows)
}
