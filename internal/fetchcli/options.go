package fetchcli

import (
	"errors"
	"flag"
	"fmt"

	"phylopipe/internal/version"
)

// Options holds all CLI flags for the outgroup fetcher.
type Options struct {
	Organisms []string
	Gene      string
	Database  string
	Retmax    int
	Out       string
	BaseURL   string
	Email     string

	Quiet   bool
	Version bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			`%s: fetch outgroup reference sequences from NCBI

Searches the nucleotide repository by organism and gene keyword, resolves
organism names through summary lookups, and writes the fetched sequences to a
local FASTA cache that phylopipe --outgroups consumes. Partial failures are
skipped, not fatal.

Version: %s

Usage of %s:
`, name, version.Version, name)
		fs.PrintDefaults()
	}
	return fs
}

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

	orgVal := &sliceValue{dst: &opt.Organisms}
	fs.Var(orgVal, "organism", "organism to fetch (repeatable) [*]")
	fs.Var(orgVal, "o", "alias of --organism")
	fs.StringVar(&opt.Gene, "gene", "cytb", "gene keyword [cytb]")
	fs.StringVar(&opt.Database, "db", "nucleotide", "repository database [nucleotide]")
	fs.IntVar(&opt.Retmax, "retmax", 3, "ids to consider per organism [3]")
	fs.StringVar(&opt.Out, "out", "outgroups.fasta", "output FASTA cache [outgroups.fasta]")
	fs.StringVar(&opt.BaseURL, "base-url", "", "E-utilities endpoint (default: NCBI)")
	fs.StringVar(&opt.Email, "email", "", "contact email passed to the repository")

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

	if len(opt.Organisms) == 0 {
		return opt, errors.New("at least one --organism is required")
	}
	if opt.Gene == "" {
		return opt, errors.New("--gene must not be empty")
	}
	if opt.Retmax <= 0 {
		return opt, errors.New("--retmax must be ≥ 1")
	}
	if opt.Out == "" {
		return opt, errors.New("--out must not be empty")
	}
	return opt, nil
}
