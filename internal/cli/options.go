package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"phylopipe/internal/version"
)

// Options holds all CLI flags for the pipeline binary.
type Options struct {
	// Inputs
	DietFile     string
	SeqFiles     []string
	OutgroupFile string // cached FASTA from phylofetch (optional)
	ConfigFile   string

	// Analysis parameters (override config when set)
	Model  string
	Kmer   int
	Cutoff float64

	// Alignment
	Aligner   string // mafft | builtin
	MafftPath string

	// Output
	OutDir     string
	Format     string // tsv | json
	PlotFormat string // png | svg
	NoPlots    bool

	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: comparative phylogenetics of blind-snake families

Builds alignments, distance matrices (model-based and k-mer), neighbor-joining
and clustering trees, a tanglegram, and a prey-composition summary from a
FASTA file and a predator-prey diet table.

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

// sliceValue appends each value to a *[]string (for repeatable flags).
type sliceValue struct{ dst *[]string }

func (s *sliceValue) String() string {
	if s.dst == nil {
		return ""
	}
	return fmt.Sprint(*s.dst)
}
func (s *sliceValue) Set(v string) error {
	*s.dst = append(*s.dst, v)
	return nil
}

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Inputs
	fs.StringVar(&opt.DietFile, "diet", "", "diet-event CSV (predator_taxon, prey columns) [*]")
	seqVal := &sliceValue{dst: &opt.SeqFiles}
	fs.Var(seqVal, "sequences", "FASTA file(s) (repeatable or '-') [*]")
	fs.Var(seqVal, "s", "alias of --sequences")
	fs.StringVar(&opt.OutgroupFile, "outgroups", "", "cached outgroup FASTA (from phylofetch)")
	fs.StringVar(&opt.ConfigFile, "config", "", "YAML run config (families, aliases, overrides)")

	// Analysis
	fs.StringVar(&opt.Model, "model", "", "substitution model: JC69 | K80 | TN93 (default from config)")
	fs.IntVar(&opt.Kmer, "kmer", 0, "k-mer length for alignment-free distances (default from config)")
	fs.Float64Var(&opt.Cutoff, "cutoff", -1, "clustering merge-height cutoff (default from config)")

	// Alignment
	fs.StringVar(&opt.Aligner, "aligner", "builtin", "aligner: mafft | builtin [builtin]")
	fs.StringVar(&opt.MafftPath, "mafft-path", "", "mafft binary (default: found on PATH)")

	// Output
	fs.StringVar(&opt.OutDir, "out", "phylopipe-out", "output directory for artifacts [phylopipe-out]")
	fs.StringVar(&opt.Format, "format", "tsv", "table format: tsv | json [tsv]")
	fs.StringVar(&opt.PlotFormat, "plot-format", "png", "plot format: png | svg [png]")
	fs.BoolVar(&opt.NoPlots, "no-plots", false, "skip plot rendering [false]")

	fs.BoolVar(&opt.Quiet, "quiet", false, "log warnings only [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Version, "v", false, "print version and exit (shorthand) [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&help, "h", false, "show this help message (shorthand) [false]")

	if err := fs.Parse(argv); err != nil {
		return opt, err
	}
	if help {
		fs.Usage()
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	// Validation
	if opt.DietFile == "" {
		return opt, errors.New("--diet is required")
	}
	if len(opt.SeqFiles) == 0 {
		return opt, errors.New("at least one --sequences file is required")
	}
	if opt.Kmer < 0 {
		return opt, errors.New("--kmer must be ≥ 0")
	}
	switch opt.Aligner {
	case "mafft", "builtin":
	default:
		return opt, fmt.Errorf("invalid --aligner %q", opt.Aligner)
	}
	switch opt.Format {
	case "tsv", "json":
	default:
		return opt, fmt.Errorf("invalid --format %q", opt.Format)
	}
	switch opt.PlotFormat {
	case "png", "svg":
	default:
		return opt, fmt.Errorf("invalid --plot-format %q", opt.PlotFormat)
	}
	if opt.Model != "" {
		switch strings.ToUpper(opt.Model) {
		case "JC69", "K80", "TN93":
			opt.Model = strings.ToUpper(opt.Model)
		default:
			return opt, fmt.Errorf("invalid --model %q", opt.Model)
		}
	}
	return opt, nil
}
