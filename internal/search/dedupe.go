// Copyright EcoInfo AI, 2026. All rights reserved.

package search

import (
	"strings"

	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// Deduplicate merges the concatenated results of all providers for one
// species into one record per logical paper. The dedup key is the DOI when
// non-empty, otherwise the lower-cased, whitespace-trimmed title. The first
// occurrence wins (later duplicates are discarded even when they come from
// a different provider) and output preserves first-seen order. The second
// return value is the number of duplicates removed.
func Deduplicate(results []types.SearchResult) ([]types.SearchResult, int) {
	seen := make(map[string]struct{}, len(results))
	unique := make([]types.SearchResult, 0, len(results))
	removed := 0

	for _, r := range results {
		key := dedupKey(r)
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, r)
	}
	return unique, removed
}

func dedupKey(r types.SearchResult) string {
	if r.DOI != "" {
		return r.DOI
	}
	return strings.ToLower(strings.TrimSpace(r.Title))
}
