// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one update of the paper store: fetch, parse, load,
// merge, save.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/paper-feed/internal/arxiv"
	"github.com/pdiddy/paper-feed/internal/merge"
	"github.com/pdiddy/paper-feed/internal/store"
	"github.com/pdiddy/paper-feed/pkg/types"
)

// ErrFetchFailed marks a run that was skipped because nothing usable came
// back from the API. The store is left untouched.
var ErrFetchFailed = errors.New("fetch failed, skipping update")

// Fetcher returns the raw feed payload for one run.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Syncer mirrors a saved store somewhere else, e.g. a search index.
type Syncer interface {
	Sync(ctx context.Context, s types.Store) (int, error)
}

var (
	okMark   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render("✗")
)

// Summary holds the counts from one run.
type Summary struct {
	Fetched  int
	Skipped  int
	Existing int
	Merged   int
	Added    int
	Indexed  int
}

// Runner executes the update pipeline against one configuration.
type Runner struct {
	cfg     types.FeedConfig
	fetcher Fetcher
	out     io.Writer

	// Now stamps the saved store. Defaults to time.Now.
	Now func() time.Time

	// Index, when set, is refreshed after a successful save. A failure
	// there is reported but does not fail the run.
	Index Syncer
}

// New returns a Runner that writes progress to out.
func New(cfg types.FeedConfig, f Fetcher, out io.Writer) *Runner {
	if out == nil {
		out = io.Discard
	}
	return &Runner{cfg: cfg, fetcher: f, out: out, Now: time.Now}
}

// Run performs one update. A fetch or top-level parse failure returns an
// error wrapping ErrFetchFailed before the store is read or written.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	res, err := r.fetch(ctx)
	if err != nil {
		fmt.Fprintf(r.out, "Error fetching from arXiv: %v\n", err)
		fmt.Fprintln(r.out, "Failed to fetch papers, skipping update")
		return sum, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	sum.Fetched = len(res.Papers)
	sum.Skipped = len(res.Skipped)

	existing, err := store.LoadPapers(r.cfg.StorePath)
	var (
		corrupt *store.CorruptError
		dropped *store.RecordError
	)
	switch {
	case errors.As(err, &corrupt):
		fmt.Fprintf(r.out, "warning: ignoring %v\n", corrupt)
	case errors.As(err, &dropped):
		fmt.Fprintf(r.out, "warning: %v\n", dropped)
	}
	sum.Existing = len(existing)
	fmt.Fprintf(r.out, "\nExisting papers in database: %d\n", sum.Existing)

	merged, stats := merge.MergeWithStats(existing, res.Papers, r.cfg.RetainLimit)
	sum.Merged = len(merged)
	sum.Added = stats.Added
	fmt.Fprintf(r.out, "Total papers after merge: %d\n", sum.Merged)

	now := r.Now()
	if err := store.Save(r.cfg.StorePath, merged, now); err != nil {
		return sum, err
	}
	fmt.Fprintf(r.out, "Saved %d papers to %s\n", sum.Merged, r.cfg.StorePath)

	if r.Index != nil {
		n, err := r.Index.Sync(ctx, store.New(merged, now))
		if err != nil {
			fmt.Fprintf(r.out, "warning: index sync failed: %v\n", err)
		} else {
			sum.Indexed = n
			fmt.Fprintf(r.out, "Indexed %d papers\n", n)
		}
	}

	fmt.Fprintf(r.out, "\n%s Update complete!\n", okMark)
	return sum, nil
}

// fetch retrieves and parses the feed, reporting each entry.
func (r *Runner) fetch(ctx context.Context) (arxiv.ParseResult, error) {
	payload, err := r.fetcher.Fetch(ctx)
	if err != nil {
		return arxiv.ParseResult{}, err
	}

	res, err := arxiv.Parse(payload)
	if err != nil {
		return arxiv.ParseResult{}, err
	}

	for _, p := range res.Papers {
		fmt.Fprintf(r.out, "  %s %s: %s...\n", okMark, p.ID, runePrefix(p.Title, 60))
	}
	for _, e := range res.Skipped {
		fmt.Fprintf(r.out, "  %s Error parsing entry: %v\n", failMark, e)
	}
	fmt.Fprintf(r.out, "\nSuccessfully fetched %d papers\n", len(res.Papers))
	return res, nil
}

// runePrefix returns at most n runes of s.
func runePrefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
