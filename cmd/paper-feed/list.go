// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-feed/internal/store"
	"github.com/pdiddy/paper-feed/pkg/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the papers in the store",
	Long: `List reads the JSON store and prints its papers in stored order
(newest known first) as a table, or as JSON with --json.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().Int("limit", 0, "show at most N papers (0 = all)")
	listCmd.Flags().String("filter", "", "only papers with this category term")
	listCmd.Flags().Bool("json", false, "output papers as JSON")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := feedConfig(viper.GetViper())
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	category, _ := cmd.Flags().GetString("filter")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := loadStore(cmd, cfg.StorePath)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	papers := s.Papers
	if category != "" {
		papers = lo.Filter(papers, func(p types.Paper, _ int) bool {
			return p.Category == category
		})
	}
	if limit > 0 && len(papers) > limit {
		papers = papers[:limit]
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(lo.Ternary(papers == nil, []types.Paper{}, papers))
	}

	formatTable(papers, out)
	if s.LastUpdated != "" {
		fmt.Fprintf(out, "last updated %s\n", s.LastUpdated)
	}
	return nil
}

// loadStore reads the store, reporting dropped records on stderr instead
// of failing on them.
func loadStore(cmd *cobra.Command, path string) (types.Store, error) {
	s, err := store.Load(path)
	var dropped *store.RecordError
	if errors.As(err, &dropped) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", dropped)
		return s, nil
	}
	return s, err
}

// formatTable writes papers as a human-readable table to w.
func formatTable(papers []types.Paper, w io.Writer) {
	if len(papers) == 0 {
		fmt.Fprintln(w, "No papers found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-10s  %-8s  %-50s  %s\n",
		"#", "ID", "Published", "Category", "Title", "Authors")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range papers {
		fmt.Fprintf(w, "%-4d  %-16s  %-10s  %-8s  %-50s  %s\n",
			i+1, p.ID, p.Published, p.Category,
			lo.Ellipsis(p.Title, 50), formatAuthors(p.Authors))
	}

	fmt.Fprintf(w, "\n%d papers\n", len(papers))
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return lo.Ellipsis(authors[0], 20)
	default:
		return lo.Ellipsis(authors[0], 14) + " et al."
	}
}
