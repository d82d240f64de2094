// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches the newest submissions for a set of categories from
// the arXiv query API and turns the Atom response into paper records.
package arxiv

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-feed/internal/httputil"
	"github.com/pdiddy/paper-feed/pkg/types"
)

// RequestInterval is the minimum spacing between two requests from the
// same Client, per the arXiv API terms of use.
const RequestInterval = 3 * time.Second

// Client issues the feed query described by a FeedConfig.
type Client struct {
	cfg     types.FeedConfig
	limiter *rate.Limiter

	// HTTP performs the request. NewClient sets its Timeout from the config.
	HTTP *http.Client

	// Progress receives human-readable status lines.
	Progress io.Writer
}

// NewClient returns a Client whose HTTP timeout comes from cfg.
func NewClient(cfg types.FeedConfig, progress io.Writer) *Client {
	if progress == nil {
		progress = io.Discard
	}
	return &Client{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Every(RequestInterval), 1),
		HTTP:     &http.Client{Timeout: cfg.Timeout},
		Progress: progress,
	}
}

// SearchQuery returns the search_query value: the configured categories
// OR-ed together inside parentheses.
func SearchQuery(categories []string) string {
	return "(" + strings.Join(categories, " OR ") + ")"
}

// QueryURL builds the request URL, newest submissions first.
func (c *Client) QueryURL() string {
	params := url.Values{}
	params.Set("search_query", SearchQuery(c.cfg.Categories))
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(c.cfg.MaxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	return c.cfg.BaseURL + "?" + params.Encode()
}

// Fetch performs the single GET and returns the raw Atom payload. Any
// error means the run has nothing to merge and should be skipped; it is
// never a stand-in for an empty result.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting to query arXiv: %w", err)
	}

	u := c.QueryURL()
	fmt.Fprintf(c.Progress, "Fetching papers from: %s...\n", truncate(u, 80))

	body, err := httputil.Get(ctx, c.HTTP, u, c.cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
