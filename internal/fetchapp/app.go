// Package fetchapp drives the outgroup fetcher: resolve organism/gene queries
// against NCBI E-utilities and write the results to a local FASTA cache for
// phylopipe --outgroups.
package fetchapp

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"phylopipe-core/fasta"
	"phylopipe/internal/entrez"
	"phylopipe/internal/fetchcli"
	"phylopipe/internal/logutil"
	"phylopipe/internal/version"
)

const (
	exitOK      = 0
	exitNoData  = 1
	exitUsage   = 2
	exitRuntime = 3
)

// RunContext parses argv and runs the fetch.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	fs := fetchcli.NewFlagSet("phylofetch")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		fs.SetOutput(stdout)
		_, _ = fetchcli.ParseArgs(fs, []string{"-h"})
		return exitOK
	}

	opts, err := fetchcli.ParseArgs(fs, argv)
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
		fmt.Fprintf(stdout, "phylofetch version %s\n", version.Version)
		return exitOK
	}

	log := logutil.New(stderr, opts.Quiet)
	defer func() { _ = log.Sync() }()

	recs, err := fetch(parent, opts, log)
	if err != nil {
		log.Error("fetch failed", zap.Error(err))
		return exitRuntime
	}
	if len(recs) == 0 {
		log.Warn("no sequences fetched, cache not written")
		return exitNoData
	}
	if err := writeCache(opts.Out, recs); err != nil {
		log.Error("cache write failed", zap.Error(err))
		return exitRuntime
	}
	log.Info("outgroup cache written",
		zap.String("path", opts.Out),
		zap.Int("sequences", len(recs)))
	return exitOK
}

// Run is the background-context entry point used by main.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func fetch(ctx context.Context, opts fetchcli.Options, log *zap.Logger) ([]fasta.Record, error) {
	client := entrez.New(opts.BaseURL, log)
	client.Email = opts.Email

	queries := make([]entrez.Query, len(opts.Organisms))
	for i, org := range opts.Organisms {
		queries[i] = entrez.Query{Organism: org, Gene: opts.Gene, Retmax: opts.Retmax}
	}
	return client.FetchOutgroups(ctx, opts.Database, queries)
}

func writeCache(path string, recs []fasta.Record) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fasta.Write(fh, recs); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}
