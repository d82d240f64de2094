// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge combines freshly fetched papers with the stored ones.
package merge

import (
	"github.com/samber/lo"

	"github.com/pdiddy/paper-feed/pkg/types"
)

// Stats describes what a merge did.
type Stats struct {
	// Added is the number of incoming papers whose id was not stored.
	Added int
	// Duplicates is the number of incoming papers already stored.
	Duplicates int
	// Truncated is the number of papers cut off by the limit.
	Truncated int
}

// Merge places the incoming papers whose id is not already in existing
// ahead of all existing papers, keeping both groups in their original
// order, and keeps only the first limit entries of the result.
//
// A paper that is both stored and incoming keeps its stored copy and
// position. Incoming papers are only checked against existing, not
// against each other. Truncation keeps the head of the list and drops the
// tail, whatever its age.
func Merge(existing, incoming []types.Paper, limit int) []types.Paper {
	merged, _ := MergeWithStats(existing, incoming, limit)
	return merged
}

// MergeWithStats is Merge plus counts for progress output.
func MergeWithStats(existing, incoming []types.Paper, limit int) ([]types.Paper, Stats) {
	stored := lo.SliceToMap(existing, func(p types.Paper) (string, struct{}) {
		return p.ID, struct{}{}
	})

	fresh := lo.Filter(incoming, func(p types.Paper, _ int) bool {
		_, ok := stored[p.ID]
		return !ok
	})

	merged := make([]types.Paper, 0, len(fresh)+len(existing))
	merged = append(merged, fresh...)
	merged = append(merged, existing...)

	stats := Stats{
		Added:      len(fresh),
		Duplicates: len(incoming) - len(fresh),
	}
	if limit >= 0 && len(merged) > limit {
		stats.Truncated = len(merged) - limit
		merged = merged[:limit]
	}
	return merged, stats
}
