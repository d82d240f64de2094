// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package arxiv

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// AtomNS is the namespace every field is looked up under.
const AtomNS = "http://www.w3.org/2005/Atom"

// arXiv Atom feed XML structures. Pointer fields distinguish a missing
// element from an empty one.
type atomFeed struct {
	Entries []atomEntry `xml:"http://www.w3.org/2005/Atom entry"`
}

type atomEntry struct {
	ID         *string        `xml:"http://www.w3.org/2005/Atom id"`
	Title      *string        `xml:"http://www.w3.org/2005/Atom title"`
	Published  *string        `xml:"http://www.w3.org/2005/Atom published"`
	Summary    *string        `xml:"http://www.w3.org/2005/Atom summary"`
	Authors    []atomAuthor   `xml:"http://www.w3.org/2005/Atom author"`
	Categories []atomCategory `xml:"http://www.w3.org/2005/Atom category"`
}

type atomAuthor struct {
	Name *string `xml:"http://www.w3.org/2005/Atom name"`
}

type atomCategory struct {
	Term *string `xml:"term,attr"`
}

// EntryError describes an entry that was dropped during parsing.
type EntryError struct {
	// Index is the entry's position in the payload.
	Index int
	// Field is the element that could not be extracted.
	Field string
}

func (e EntryError) Error() string {
	return fmt.Sprintf("entry %d: missing %s", e.Index, e.Field)
}

// ParseResult holds the papers extracted from a payload, in payload
// order, and the entries that were skipped.
type ParseResult struct {
	Papers  []types.Paper
	Skipped []EntryError
}

// Parse decodes an arXiv Atom payload. A payload that is not XML is an
// error for the whole batch; an entry lacking a required field is only
// recorded in Skipped and the remaining entries are still returned.
func Parse(payload []byte) (ParseResult, error) {
	var feed atomFeed
	dec := xml.NewDecoder(bytes.NewReader(payload))
	if err := dec.Decode(&feed); err != nil {
		return ParseResult{}, fmt.Errorf("parsing arXiv response: %w", err)
	}

	res := ParseResult{Papers: make([]types.Paper, 0, len(feed.Entries))}
	for i, entry := range feed.Entries {
		p, field := entry.paper()
		if field != "" {
			res.Skipped = append(res.Skipped, EntryError{Index: i, Field: field})
			continue
		}
		res.Papers = append(res.Papers, p)
	}
	return res, nil
}

// paper extracts a Paper, or names the first field it could not read.
func (e atomEntry) paper() (types.Paper, string) {
	if empty(e.ID) {
		return types.Paper{}, "id"
	}
	if empty(e.Title) {
		return types.Paper{}, "title"
	}
	if empty(e.Published) {
		return types.Paper{}, "published"
	}
	if empty(e.Summary) {
		return types.Paper{}, "summary"
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if a.Name == nil {
			return types.Paper{}, "author name"
		}
		authors = append(authors, *a.Name)
	}

	if len(e.Categories) == 0 {
		return types.Paper{}, "category"
	}
	category := types.UnknownCategory
	if t := e.Categories[0].Term; t != nil {
		category = *t
	}

	id := ExtractID(*e.ID)
	return types.Paper{
		ID:        id,
		Title:     normalize(*e.Title),
		Authors:   authors,
		Published: datePrefix(*e.Published),
		Summary:   normalize(*e.Summary),
		Category:  category,
		URL:       types.AbsURL(id),
	}, ""
}

// ExtractID returns the part of an entry locator after its last "/abs/"
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041v1"). The
// version suffix is kept. A locator without the marker is returned whole.
func ExtractID(locator string) string {
	const marker = "/abs/"
	if idx := strings.LastIndex(locator, marker); idx >= 0 {
		return locator[idx+len(marker):]
	}
	return locator
}

// normalize strips surrounding whitespace and turns each newline into a
// space. Runs of spaces around the newline are left as they are.
func normalize(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
}

// datePrefix keeps the YYYY-MM-DD part of an RFC 3339 timestamp.
func datePrefix(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func empty(s *string) bool {
	return s == nil || *s == ""
}
