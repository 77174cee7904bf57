// Package app wires the pipeline: diet loading/filtering, sequence loading,
// family annotation, alignment, distance matrices, tree inference, tree
// comparison, and the prey summary. Stages run strictly forward; each stage's
// output is immutable once built.
package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"phylopipe-core/align"
	"phylopipe-core/annotate"
	"phylopipe-core/diet"
	"phylopipe-core/distmat"
	"phylopipe-core/fasta"
	"phylopipe-core/tree"
	"phylopipe/internal/cli"
	"phylopipe/internal/cliutil"
	"phylopipe/internal/config"
	"phylopipe/internal/logutil"
	"phylopipe/internal/version"
	"phylopipe/internal/writers"
)

// Exit codes: 0 ok, 1 stage precondition failed, 2 usage, 3 runtime.
const (
	exitOK        = 0
	exitStageFail = 1
	exitUsage     = 2
	exitRuntime   = 3
)

// errStage marks structural stage-precondition failures (exit 1, not 3).
type errStage struct {
	stage string
	err   error
}

func (e *errStage) Error() string { return e.stage + ": " + e.err.Error() }
func (e *errStage) Unwrap() error { return e.err }

func stageFail(stage string, err error) error { return &errStage{stage: stage, err: err} }

// RunContext parses argv and executes the pipeline.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := cli.NewFlagSet("phylopipe")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(stdout)
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		return exitOK
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(stdout)
			fs.Usage()
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	if opts.Version {
		fmt.Fprintf(stdout, "phylopipe version %s\n", version.Version)
		return exitOK
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	// CLI overrides beat the config file
	if opts.Model != "" {
		cfg.Model = opts.Model
	}
	if opts.Kmer > 0 {
		cfg.Kmer = opts.Kmer
	}
	if opts.Cutoff >= 0 {
		cfg.Cutoff = opts.Cutoff
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	log := logutil.New(stderr, opts.Quiet)
	defer func() { _ = log.Sync() }()

	if err := run(parent, opts, cfg, log, stdout); err != nil {
		log.Error("pipeline failed", zap.Error(err))
		var se *errStage
		if errors.As(err, &se) {
			return exitStageFail
		}
		return exitRuntime
	}
	return exitOK
}

// Run is the background-context entry point used by main.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func run(ctx context.Context, opts cli.Options, cfg config.Config, log *zap.Logger, stdout io.Writer) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return err
	}

	dietRecs, err := loadDiet(opts.DietFile, cfg, log)
	if err != nil {
		return err
	}

	recs, err := loadSequences(ctx, opts, cfg, dietRecs, log)
	if err != nil {
		return err
	}

	if err := writeTable(opts, "seq_table", func(w io.Writer) error {
		return writers.WriteSeqTable(opts.Format, w, recs)
	}); err != nil {
		return err
	}

	p := &pipeline{opts: opts, cfg: cfg, log: log, familyOf: familyIndex(recs)}

	var blind []annotate.Record
	for _, r := range recs {
		if cfg.IsBlindSnake(r.Family) {
			blind = append(blind, r)
		}
	}
	if err := p.analyze(ctx, "blind", blind); err != nil {
		return err
	}
	if len(recs) > len(blind) {
		if err := p.analyze(ctx, "expanded", recs); err != nil {
			return err
		}
	} else {
		log.Info("no outgroup sequences, skipping expanded dataset")
	}

	return summarizeDiet(opts, cfg, dietRecs, log, stdout)
}

// loadDiet is stage 1: load, filter to the family alternation, extract and
// normalize family labels, drop records without a usable family.
func loadDiet(path string, cfg config.Config, log *zap.Logger) ([]diet.Record, error) {
	raw, err := diet.Load(path)
	if err != nil {
		return nil, err
	}
	pattern, err := cfg.FamilyPattern()
	if err != nil {
		return nil, err
	}
	filtered := diet.FilterFamilies(raw, pattern)
	annotated := diet.DropUnassigned(diet.Annotate(filtered, cfg.AliasTable()))
	log.Info("diet records loaded",
		zap.Int("total", len(raw)),
		zap.Int("filtered", len(filtered)),
		zap.Int("with_family", len(annotated)),
		zap.String("alias_version", cfg.AliasVersion))
	return annotated, nil
}

// loadSequences is stages 2-3: FASTA load, species-name derivation, family
// annotation against the diet records, dedupe. Outgroup sequences that have no
// diet record keep a synthetic "Outgroup" family instead of being dropped.
func loadSequences(ctx context.Context, opts cli.Options, cfg config.Config, dietRecs []diet.Record, log *zap.Logger) ([]annotate.Record, error) {
	paths, err := cliutil.ExpandPaths(opts.SeqFiles)
	if err != nil {
		return nil, err
	}
	var raw []fasta.Record
	for _, p := range paths {
		recs, err := fasta.ReadFileCtx(ctx, p)
		if err != nil {
			return nil, err
		}
		raw = append(raw, recs...)
	}

	seqs := annotate.Assign(annotate.FromFasta(raw), dietRecs, annotate.Policy{})

	if opts.OutgroupFile != "" {
		ogRaw, err := fasta.ReadFileCtx(ctx, opts.OutgroupFile)
		if err != nil {
			return nil, err
		}
		og := annotate.Assign(annotate.FromFasta(ogRaw), dietRecs, annotate.Policy{})
		for i := range og {
			if og[i].Family == "" {
				og[i].Family = "Outgroup"
			}
		}
		seqs = append(seqs, og...)
	}

	seqs = annotate.Override(seqs, cfg.SpeciesOverrides)
	kept := annotate.Dedupe(seqs)
	log.Info("sequences annotated",
		zap.Int("loaded", len(seqs)),
		zap.Int("kept", len(kept)))
	if len(kept) < 2 {
		return nil, stageFail("annotate",
			fmt.Errorf("%w, got %d annotated sequences", align.ErrTooFewSequences, len(kept)))
	}
	return kept, nil
}

// pipeline carries the per-dataset analysis (stages 4-7).
type pipeline struct {
	opts     cli.Options
	cfg      config.Config
	log      *zap.Logger
	familyOf func(string) string
}

func (p *pipeline) aligner() align.Aligner {
	if p.opts.Aligner == "mafft" {
		return align.Mafft{Path: p.opts.MafftPath}
	}
	return align.CenterStar{}
}

func (p *pipeline) analyze(ctx context.Context, name string, recs []annotate.Record) error {
	if len(recs) < 2 {
		return stageFail("align/"+name,
			fmt.Errorf("%w, got %d", align.ErrTooFewSequences, len(recs)))
	}
	labels := make([]string, len(recs))
	raws := make([][]byte, len(recs))
	for i, r := range recs {
		labels[i] = r.TipLabel()
		raws[i] = r.Seq
	}

	aln, err := p.aligner().Align(ctx, labels, raws)
	if err != nil {
		if errors.Is(err, align.ErrTooFewSequences) {
			return stageFail("align/"+name, err)
		}
		return err
	}
	p.log.Info("alignment built",
		zap.String("dataset", name),
		zap.Int("sequences", aln.NumSeqs()),
		zap.Int("width", aln.Len()))

	model := distmat.Model(p.cfg.Model)
	modelM, err := distmat.FromAlignment(aln, model, true)
	if err != nil {
		return stageFail("distance/"+name, err)
	}
	kmerM, err := distmat.FromKmers(labels, raws, p.cfg.Kmer)
	if err != nil {
		return stageFail("distance/"+name, err)
	}
	if err := p.writeMatrix(name+"_model_dist.tsv", modelM); err != nil {
		return err
	}
	if err := p.writeMatrix(name+"_kmer_dist.tsv", kmerM); err != nil {
		return err
	}

	clusterTree, clusters, err := tree.Cluster(aln, model, p.cfg.Cutoff)
	if err != nil {
		return stageFail("tree/"+name, err)
	}
	njTree, err := tree.NeighborJoining(modelM)
	if err != nil {
		return stageFail("tree/"+name, err)
	}
	njKmerTree, err := tree.NeighborJoining(kmerM)
	if err != nil {
		return stageFail("tree/"+name, err)
	}
	// the alignment-free path does not guarantee label propagation: re-attach
	// and verify before anything downstream trusts the tips
	if err := ensureLabels(njKmerTree, kmerM.Labels); err != nil {
		return stageFail("tree/"+name, err)
	}
	nClusters := 0
	seen := map[int]bool{}
	for _, id := range clusters {
		if !seen[id] {
			seen[id] = true
			nClusters++
		}
	}
	p.log.Info("trees inferred",
		zap.String("dataset", name),
		zap.String("model", p.cfg.Model),
		zap.Int("clusters_at_cutoff", nClusters))

	for file, t := range map[string]*tree.Tree{
		name + "_cluster.nwk": clusterTree,
		name + "_nj.nwk":      njTree,
		name + "_nj_kmer.nwk": njKmerTree,
	} {
		if err := p.writeNewick(file, t); err != nil {
			return err
		}
	}

	rf, err := tree.RobinsonFoulds(clusterTree, njTree)
	if err != nil {
		return stageFail("compare/"+name, err)
	}
	p.log.Info("trees compared",
		zap.String("dataset", name),
		zap.Int("robinson_foulds", rf))

	if p.opts.NoPlots {
		return nil
	}
	return p.renderPlots(name, clusterTree, njTree, njKmerTree)
}

// ensureLabels re-attaches the matrix label set to the tips when the builder
// did not propagate them, and rejects any residual mismatch.
func ensureLabels(t *tree.Tree, labels []string) error {
	got := t.TipSet()
	missing := false
	for _, l := range labels {
		if _, ok := got[l]; !ok {
			missing = true
			break
		}
	}
	if !missing && len(got) == len(labels) {
		return nil
	}
	return tree.Relabel(t, labels)
}

func (p *pipeline) writeMatrix(file string, m *distmat.Matrix) error {
	return writeFile(filepath.Join(p.opts.OutDir, file), func(w io.Writer) error {
		return writers.WriteMatrix(w, m)
	})
}

func (p *pipeline) writeNewick(file string, t *tree.Tree) error {
	return writeFile(filepath.Join(p.opts.OutDir, file), func(w io.Writer) error {
		return writers.WriteNewick(w, t)
	})
}

func familyIndex(recs []annotate.Record) func(string) string {
	byLabel := make(map[string]string, len(recs))
	for _, r := range recs {
		byLabel[r.TipLabel()] = r.Family
	}
	return func(label string) string { return byLabel[label] }
}

func summarizeDiet(opts cli.Options, cfg config.Config, dietRecs []diet.Record, log *zap.Logger, stdout io.Writer) error {
	counts := diet.Summarize(dietRecs, cfg.PreyMinCount)
	log.Info("diet summarized",
		zap.Int("groups", len(counts)),
		zap.Int("min_count", cfg.PreyMinCount))
	if err := writeTable(opts, "prey_counts", func(w io.Writer) error {
		return writers.WritePreyTable(opts.Format, w, counts)
	}); err != nil {
		return err
	}
	// headline summary also goes to stdout; a closed pipe downstream is fine
	if err := writers.WritePreyTable(opts.Format, stdout, counts); err != nil && !writers.IsBrokenPipe(err) {
		return err
	}
	if opts.NoPlots {
		return nil
	}
	return renderPreyBars(counts, filepath.Join(opts.OutDir, "prey_counts."+opts.PlotFormat))
}

func writeTable(opts cli.Options, stem string, write func(io.Writer) error) error {
	ext := opts.Format
	return writeFile(filepath.Join(opts.OutDir, stem+"."+ext), write)
}

func writeFile(path string, write func(io.Writer) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(fh); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
