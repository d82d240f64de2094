// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/arxiv"
	"github.com/pdiddy/paper-feed/internal/index"
	"github.com/pdiddy/paper-feed/internal/pipeline"
	"github.com/pdiddy/paper-feed/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch new papers and merge them into the store (default action)",
	Long: `Fetch issues one arXiv query for the configured categories, merges the
results into the JSON store ahead of the papers already there, and keeps the
first --retain entries. If the request fails the store is left untouched.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printBanner(out)

	runner, closeIndex, err := newRunner(cfg, out)
	if err != nil {
		return err
	}
	defer closeIndex()

	_, err = runner.Run(commandContext(cmd))
	if errors.Is(err, pipeline.ErrFetchFailed) {
		// Skipped runs exit 0.
		return nil
	}
	return err
}

// newRunner wires the fetcher and, when configured, the search index. The
// returned func closes whatever was opened.
func newRunner(cfg types.FeedConfig, out io.Writer) (*pipeline.Runner, func(), error) {
	runner := pipeline.New(cfg, arxiv.NewClient(cfg, out), out)
	if cfg.IndexPath == "" {
		return runner, func() {}, nil
	}

	ix, err := index.Open(cfg.IndexPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening index %s: %w", cfg.IndexPath, err)
	}
	runner.Index = ix
	return runner, func() {
		if err := ix.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing index: %v\n", err)
		}
	}, nil
}

func printBanner(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "arXiv Paper Fetcher")
	fmt.Fprintln(w, rule)
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
