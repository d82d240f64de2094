// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
)

// paperKeys is the persisted member order of a Paper.
var paperKeys = []string{"id", "title", "authors", "published", "summary", "category", "url"}

// MarshalJSON writes the known members in paperKeys order followed by
// Extra members sorted by key. An Extra entry for a known key replaces
// that field. Nil Authors is written as [].
func (p Paper) MarshalJSON() ([]byte, error) {
	authors := p.Authors
	if authors == nil {
		authors = []string{}
	}
	values := []any{p.ID, p.Title, authors, p.Published, p.Summary, p.Category, p.URL}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range paperKeys {
		v := values[i]
		if raw, ok := p.Extra[key]; ok {
			v = raw
		}
		if err := writeMember(&buf, i > 0, key, v); err != nil {
			return nil, err
		}
	}
	for _, key := range slices.Sorted(maps.Keys(p.Extra)) {
		if slices.Contains(paperKeys, key) {
			continue
		}
		if err := writeMember(&buf, true, key, p.Extra[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeMember(buf *bytes.Buffer, comma bool, key string, v any) error {
	if comma {
		buf.WriteByte(',')
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(key); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	buf.WriteByte(':')
	if err := enc.Encode(v); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON accepts any JSON object. Members that do not decode into
// their field are kept in Extra instead of failing the record.
func (p *Paper) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	*p = Paper{}
	for key, raw := range members {
		var ok bool
		switch key {
		case "id":
			ok = decodeInto(raw, &p.ID)
		case "title":
			ok = decodeInto(raw, &p.Title)
		case "authors":
			ok = decodeInto(raw, &p.Authors)
		case "published":
			ok = decodeInto(raw, &p.Published)
		case "summary":
			ok = decodeInto(raw, &p.Summary)
		case "category":
			ok = decodeInto(raw, &p.Category)
		case "url":
			ok = decodeInto(raw, &p.URL)
		}
		if ok {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[key] = raw
	}
	return nil
}

// decodeInto sets *dst only when raw decodes cleanly into T.
func decodeInto[T any](raw json.RawMessage, dst *T) bool {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	*dst = v
	return true
}
