package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/pipeline"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/store/segment"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/resilience"
)

type generateOptions struct {
	configPath  string
	input       string
	maxDistance int
	workers     int
	mirror      bool
	sort        bool
	format      string
	segmentDir  string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "pairctl",
		Short:         "Generate windowed word co-occurrence pairs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenerateCmd(), newLookupCmd(), newNormalizeCmd())
	return root
}

func newGenerateCmd() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Read a word,docID,position index and print (word1,word2,distance,docID) rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.configPath, "config", "", "optional config file supplying pairs defaults")
	f.StringVarP(&opts.input, "input", "i", "-", "index file to read, - for stdin")
	f.IntVar(&opts.maxDistance, "max-distance", 0, "widest token distance kept (default from config, else 5)")
	f.IntVar(&opts.workers, "workers", 0, "documents generated in parallel (default from config)")
	f.BoolVar(&opts.mirror, "mirror", false, "also emit the reverse of every non-self pair")
	f.BoolVar(&opts.sort, "sort", false, "order output by word1, word2, docID, distance")
	f.StringVar(&opts.format, "format", "csv", "output format: csv or json")
	f.StringVar(&opts.segmentDir, "segment-dir", "", "also write the pairs to a segment in this directory")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	if opts.format != "csv" && opts.format != "json" {
		return fmt.Errorf("unknown format %q, want csv or json", opts.format)
	}
	logger.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, "text")

	pairsCfg := config.PairsConfig{}
	if opts.configPath != "" {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		pairsCfg = cfg.Pairs
	}
	if opts.maxDistance > 0 {
		pairsCfg.MaxDistance = opts.maxDistance
	}
	if opts.workers > 0 {
		pairsCfg.Workers = opts.workers
	}

	in, closeIn, err := openInput(cmd, opts.input)
	if err != nil {
		return err
	}
	defer closeIn()
	occs, err := pipeline.ParseIndexFile(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", opts.input, err)
	}

	runner := pipeline.NewRunner(cooccur.NewGenerator(pairsCfg.MaxDistance), pairsCfg.Workers, nil)
	var results []pipeline.Result
	err = resilience.WithTimeout(cmd.Context(), pairsCfg.RunTimeout, "generate", func(ctx context.Context) error {
		var runErr error
		results, runErr = runner.Run(ctx, pipeline.GroupByDocument(occs))
		return runErr
	})
	if err != nil {
		return err
	}

	pairs := pipeline.Flatten(results)
	if opts.mirror {
		pairs = pipeline.Mirror(pairs)
	}
	if opts.sort {
		pipeline.SortPairs(pairs)
	}
	if opts.segmentDir != "" && len(pairs) > 0 {
		name, err := segment.NewWriter(opts.segmentDir).Write(segment.BuildEntries(pairs))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "wrote segment %s\n", name)
	}
	return writePairs(cmd.OutOrStdout(), opts.format, pairs)
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening input: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func writePairs(w io.Writer, format string, pairs []cooccur.Pair) error {
	if format == "json" {
		if pairs == nil {
			pairs = []cooccur.Pair{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pairs)
	}
	cw := csv.NewWriter(w)
	for _, p := range pairs {
		if err := cw.Write([]string{p.Word1, p.Word2, strconv.Itoa(p.Distance), p.DocumentID}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func newLookupCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "lookup WORD1 WORD2",
		Short: "Print the documents and distances stored for an ordered word pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("opening segment directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("segment directory %s is not a directory", dir)
			}
			sink, err := segment.OpenSink(config.SegmentsConfig{DataDir: dir}, nil)
			if err != nil {
				return err
			}
			defer sink.Close()
			postings, err := sink.Lookup(cooccur.Normalize(args[0]), cooccur.Normalize(args[1]))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range postings {
				for _, d := range p.Distances {
					fmt.Fprintf(out, "%s\t%d\n", p.DocumentID, d)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "data/segments", "segment directory")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize WORD...",
		Short: "Print the first-letter lowercase fold of each word",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, w := range args {
				fmt.Fprintln(cmd.OutOrStdout(), cooccur.Normalize(w))
			}
			return nil
		},
	}
}
