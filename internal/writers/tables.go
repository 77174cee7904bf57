package writers

import (
	"encoding/json"
	"fmt"
	"io"

	"phylopipe-core/annotate"
	"phylopipe-core/diet"
)

func init() {
	RegisterSeqTable("tsv", writeSeqTableTSV)
	RegisterSeqTable("json", writeSeqTableJSON)
	RegisterPreyTable("tsv", writePreyTableTSV)
	RegisterPreyTable("json", writePreyTableJSON)
}

func writeSeqTableTSV(w io.Writer, recs []annotate.Record) error {
	if _, err := fmt.Fprintln(w, "id\tname\tfamily\ttip_label\tlength"); err != nil {
		return err
	}
	for _, r := range recs {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			r.ID, r.Name, r.Family, r.TipLabel(), len(r.Seq)); err != nil {
			return err
		}
	}
	return nil
}

type seqRow struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Family   string `json:"family"`
	TipLabel string `json:"tip_label"`
	Length   int    `json:"length"`
}

func writeSeqTableJSON(w io.Writer, recs []annotate.Record) error {
	rows := make([]seqRow, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, seqRow{r.ID, r.Name, r.Family, r.TipLabel(), len(r.Seq)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func writePreyTableTSV(w io.Writer, counts []diet.PreyCount) error {
	if _, err := fmt.Fprintln(w, "family\tprey\tcount"); err != nil {
		return err
	}
	for _, c := range counts {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%d\n", c.Family, c.Prey, c.Count); err != nil {
			return err
		}
	}
	return nil
}

type preyRow struct {
	Family string `json:"family"`
	Prey   string `json:"prey"`
	Count  int    `json:"count"`
}

func writePreyTableJSON(w io.Writer, counts []diet.PreyCount) error {
	rows := make([]preyRow, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, preyRow{c.Family, c.Prey, c.Count})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
