package fasta

import (
	"bufio"
	"fmt"
	"io"
)

const wrapWidth = 70

// Write renders records as FASTA, wrapping sequence lines at 70 columns.
func Write(w io.Writer, recs []Record) error {
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		hdr := r.Desc
		if hdr == "" {
			hdr = r.ID
		}
		if _, err := fmt.Fprintf(bw, ">%s\n", hdr); err != nil {
			return err
		}
		for off := 0; off < len(r.Seq); off += wrapWidth {
			end := off + wrapWidth
			if end > len(r.Seq) {
				end = len(r.Seq)
			}
			if _, err := bw.Write(r.Seq[off:end]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
