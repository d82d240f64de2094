// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for paper-feed: the
// paper record, the persisted store, and the feed configuration.
package types

import "encoding/json"

// UnknownCategory is the category recorded when an entry's primary
// category carries no term.
const UnknownCategory = "Unknown"

// Paper holds the metadata kept for one arXiv paper. Field order matches
// the persisted JSON layout.
type Paper struct {
	// ID is the arXiv identifier taken from the entry locator, including
	// any version suffix (e.g. "2301.07041v1").
	ID string `json:"id" yaml:"id"`

	// Title is the paper title with surrounding whitespace stripped and
	// embedded newlines replaced by spaces.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Published is the submission date as YYYY-MM-DD.
	Published string `json:"published" yaml:"published"`

	// Summary is the abstract, normalized like Title.
	Summary string `json:"summary" yaml:"summary"`

	// Category is the primary category term (e.g. "cs.LG").
	Category string `json:"category" yaml:"category"`

	// URL is the abstract page, derived from ID.
	URL string `json:"url" yaml:"url"`

	// Extra holds members of a stored record that the fields above do not
	// capture: unknown keys, and known keys whose value has another type.
	// They are written back unchanged.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

// AbsURL returns the abstract page URL for an arXiv identifier.
func AbsURL(id string) string {
	return "https://arxiv.org/abs/" + id
}

// Store is the persisted collection: the papers plus the time of the last
// successful update.
type Store struct {
	LastUpdated string  `json:"lastUpdated" yaml:"lastUpdated"`
	Papers      []Paper `json:"papers" yaml:"papers"`
}

// IDs returns the identifiers of papers in order.
func IDs(papers []Paper) []string {
	ids := make([]string, len(papers))
	for i, p := range papers {
		ids[i] = p.ID
	}
	return ids
}
