// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/index"
	"github.com/pdiddy/paper-feed/pkg/types"
)

const defaultIndexPath = "docs/data/papers.db"

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Mirror the store into the SQLite search index",
	Long: `Index reads the JSON store and replaces the contents of a SQLite
database with it, maintaining a full-text index over titles, summaries and
authors. Set --index (or "index" in the config file) to refresh it after
every fetch instead.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

var queryCmd = &cobra.Command{
	Use:   "query [terms...]",
	Short: "Search the SQLite index",
	Long: `Query runs a full-text search over the mirrored papers. Terms use
SQLite FTS4 MATCH syntax (e.g. "sparse attention", "title:bandit*").
Results come back in store order.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("filter", "", "filter by category term")
	queryCmd.Flags().Int("limit", 20, "maximum number of results")
	queryCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(queryCmd)
}

// indexPath returns the configured index, or the default next to the
// store data when none is configured.
func indexPath(cfg types.FeedConfig) string {
	if cfg.IndexPath != "" {
		return cfg.IndexPath
	}
	return defaultIndexPath
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}

	s, err := loadStore(cmd, cfg.StorePath)
	if err != nil {
		return err
	}

	path := indexPath(cfg)
	ix, err := index.Open(path)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Sync(commandContext(cmd), s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d papers into %s\n", n, path)
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}
	category, _ := cmd.Flags().GetString("filter")
	maxResults, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	opts := index.QueryOptions{
		Query:      strings.Join(args, " "),
		Category:   category,
		MaxResults: maxResults,
	}
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search terms or --filter")
	}

	ix, err := index.Open(indexPath(cfg))
	if err != nil {
		return err
	}
	defer ix.Close()

	ctx := commandContext(cmd)
	results, err := ix.Search(ctx, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		if results == nil {
			results = []types.Paper{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	formatTable(results, out)
	if rec, err := ix.LastSync(ctx); err == nil && rec != nil {
		fmt.Fprintf(out, "index synced %s (store updated %s)\n", rec.SyncedAt, rec.LastUpdated)
	}
	return nil
}
