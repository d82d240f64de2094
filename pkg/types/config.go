// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"time"
)

// Defaults reproduce the behavior of an unconfigured run.
const (
	DefaultBaseURL     = "http://export.arxiv.org/api/query"
	DefaultMaxResults  = 100
	DefaultRetainLimit = 100
	DefaultTimeout     = 30 * time.Second
	DefaultStorePath   = "docs/data/arxiv.json"
	DefaultUserAgent   = "paper-feed/0.1"
)

// DefaultCategories are the arXiv category filters OR-ed into the query.
var DefaultCategories = []string{"cat:cs.AI", "cat:cs.LG", "cat:stat.ML"}

// HTTPConfig holds shared HTTP settings used by the fetcher.
type HTTPConfig struct {
	// Timeout bounds the whole request, including reading the body.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FeedConfig is the immutable configuration handed to each pipeline
// component. Build one with DefaultFeedConfig and override fields by value.
type FeedConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the arXiv query endpoint.
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Categories are search_query terms such as "cat:cs.AI".
	Categories []string `json:"categories" yaml:"categories"`

	// MaxResults is the max_results query parameter.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// RetainLimit caps the number of papers kept in the store.
	RetainLimit int `json:"retain" yaml:"retain"`

	// StorePath is the JSON store file.
	StorePath string `json:"store" yaml:"store"`

	// IndexPath is an optional SQLite mirror refreshed after each save.
	// Empty disables the mirror.
	IndexPath string `json:"index,omitempty" yaml:"index,omitempty"`
}

// DefaultFeedConfig returns the configuration used when nothing is
// overridden.
func DefaultFeedConfig() FeedConfig {
	cats := make([]string, len(DefaultCategories))
	copy(cats, DefaultCategories)
	return FeedConfig{
		HTTPConfig: HTTPConfig{
			Timeout:   DefaultTimeout,
			UserAgent: DefaultUserAgent,
		},
		BaseURL:     DefaultBaseURL,
		Categories:  cats,
		MaxResults:  DefaultMaxResults,
		RetainLimit: DefaultRetainLimit,
		StorePath:   DefaultStorePath,
	}
}

// Validate reports the first setting that would make a run meaningless.
func (c FeedConfig) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("base URL is required")
	case len(c.Categories) == 0:
		return fmt.Errorf("at least one category is required")
	case c.MaxResults <= 0:
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	case c.RetainLimit <= 0:
		return fmt.Errorf("retain limit must be positive, got %d", c.RetainLimit)
	case c.Timeout <= 0:
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	case c.StorePath == "":
		return fmt.Errorf("store path is required")
	}
	return nil
}
