// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store reads and writes the JSON file that holds the retained
// papers between runs.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// TimestampLayout formats lastUpdated: UTC, microsecond precision, "Z".
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// ErrNotFound is returned by Load when the store file does not exist.
var ErrNotFound = fmt.Errorf("store not found: %w", fs.ErrNotExist)

// CorruptError reports a store file that exists but holds no usable
// data: it cannot be read, is not JSON, or is not a JSON object.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("unreadable store %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// RecordError reports stored records that were dropped because they are
// not JSON objects. The rest of the store loaded normally.
type RecordError struct {
	Path    string
	Indexes []int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("store %s: dropped %d non-object records at positions %v", e.Path, len(e.Indexes), e.Indexes)
}

var errNotObject = errors.New("top level is not a JSON object")

// Load reads the store at path. A missing file yields ErrNotFound; an
// unreadable file, invalid JSON, a non-object top level or a non-array
// "papers" member yields a *CorruptError.
//
// Records are decoded one at a time and are not validated: a record with
// unexpected or mistyped members is kept, with those members carried in
// Paper.Extra. Only records that are not objects are dropped, reported
// through a *RecordError returned alongside the loaded store.
func Load(path string) (types.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Store{}, ErrNotFound
		}
		return types.Store{}, &CorruptError{Path: path, Err: err}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return types.Store{}, &CorruptError{Path: path, Err: err}
	}
	if top == nil {
		return types.Store{}, &CorruptError{Path: path, Err: errNotObject}
	}

	var s types.Store
	if raw, ok := top["lastUpdated"]; ok {
		if err := json.Unmarshal(raw, &s.LastUpdated); err != nil {
			s.LastUpdated = ""
		}
	}

	var records []json.RawMessage
	if raw, ok := top["papers"]; ok {
		if err := json.Unmarshal(raw, &records); err != nil {
			return types.Store{}, &CorruptError{Path: path, Err: fmt.Errorf("papers: %w", err)}
		}
	}

	s.Papers = make([]types.Paper, 0, len(records))
	var dropped []int
	for i, rec := range records {
		var p types.Paper
		if err := json.Unmarshal(rec, &p); err != nil {
			dropped = append(dropped, i)
			continue
		}
		s.Papers = append(s.Papers, p)
	}
	if len(dropped) > 0 {
		return s, &RecordError{Path: path, Indexes: dropped}
	}
	return s, nil
}

// LoadPapers returns the stored papers, or an empty slice when the store
// is missing or corrupt. The error is returned alongside for reporting;
// the papers are always safe to use.
func LoadPapers(path string) ([]types.Paper, error) {
	s, err := Load(path)
	if s.Papers == nil {
		return []types.Paper{}, err
	}
	return s.Papers, err
}

// New builds the store value written for papers at time now.
func New(papers []types.Paper, now time.Time) types.Store {
	if papers == nil {
		papers = []types.Paper{}
	}
	return types.Store{
		LastUpdated: now.UTC().Format(TimestampLayout),
		Papers:      papers,
	}
}

// Marshal encodes a store as 2-space-indented JSON with a trailing
// newline. Non-ASCII text and HTML characters are written as-is.
func Marshal(s types.Store) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("marshaling store: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes papers to path, stamped with now, creating the parent
// directory if needed. The previous file is overwritten in place.
func Save(path string, papers []types.Paper, now time.Time) error {
	data, err := Marshal(New(papers, now))
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating store directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing store %s: %w", path, err)
	}
	return nil
}

// ExportYAML writes the store as YAML to w.
func ExportYAML(s types.Store, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the store as indented JSON to w.
func ExportJSON(s types.Store, w io.Writer) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
