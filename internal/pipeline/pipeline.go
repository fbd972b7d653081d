// Copyright EcoInfo AI, 2026. All rights reserved.

// Package pipeline sequences a mining run: per species, build the query,
// fan out to every provider, deduplicate, persist to Zotero, and append
// the persisted records to the abstract cache.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/cache"
	"github.com/ecoinfoai/eDNA-lit-miner/internal/search"
	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// Store is the reference-store boundary the pipeline persists through.
// EnsureCollection may fail hard (the species is then skipped); AddItem
// failures are per-item and only skip that record.
type Store interface {
	EnsureCollection(ctx context.Context, name string) (string, error)
	AddItem(ctx context.Context, rec types.SearchResult, collectionKey string) (string, error)
}

// Options controls one mining run.
type Options struct {
	// Limit is the per-provider, per-species result cap.
	Limit int

	// DryRun searches and deduplicates but skips Zotero and the cache.
	DryRun bool

	// CollectionPrefix names the per-species collections:
	// "<prefix> - <species name>". Default "eDNA".
	CollectionPrefix string
}

// Summary holds counters for a completed run.
type Summary struct {
	Species        int
	UniqueResults  int
	ItemsAdded     int
	SpeciesSkipped int
}

// Run processes every species strictly sequentially. Provider failures are
// absorbed as zero results, per-item store failures skip the record, and a
// collection-creation failure skips the species for persistence; none of
// them abort the run. Progress and warnings are written to w as
// human-readable lines.
func Run(ctx context.Context, queries []types.SpeciesQuery, providers []search.Provider, store Store, c *cache.Cache, opts Options, w io.Writer) (Summary, error) {
	if len(providers) == 0 {
		return Summary{}, fmt.Errorf("no search providers available")
	}

	prefix := opts.CollectionPrefix
	if prefix == "" {
		prefix = "eDNA"
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	var summary Summary
	for _, sp := range queries {
		summary.Species++
		fmt.Fprintf(w, "\nProcessing species: %s\n", sp.Name)

		query := search.BuildQuery(sp.Name, sp.Synonyms, sp.Keywords)
		fmt.Fprintf(w, "  Query: %s\n", query)

		var all []types.SearchResult
		for _, p := range providers {
			results, err := p.Search(ctx, query, limit)
			if err != nil {
				// Provider faults never propagate: log and treat as
				// zero results from this source.
				fmt.Fprintf(w, "  warning: %s search failed for %s: %v\n", p.Name(), sp.Name, err)
				continue
			}
			fmt.Fprintf(w, "  %s: %d results\n", p.Name(), len(results))
			all = append(all, results...)
		}

		unique, removed := search.Deduplicate(all)
		summary.UniqueResults += len(unique)
		fmt.Fprintf(w, "  Unique results: %d (%d duplicates removed)\n", len(unique), removed)

		if opts.DryRun {
			for i, r := range unique {
				if i >= 3 {
					break
				}
				fmt.Fprintf(w, "    - [%s] %s (%s)\n", r.Source, r.Title, r.Year)
			}
			continue
		}

		added := persistSpecies(ctx, sp, unique, store, c, prefix, w, &summary)
		if added < 0 {
			summary.SpeciesSkipped++
		}
	}
	return summary, nil
}

// persistSpecies writes the unique records for one species to the store
// and appends the successful ones to the cache. Returns -1 when the
// species had to be skipped entirely.
func persistSpecies(ctx context.Context, sp types.SpeciesQuery, unique []types.SearchResult, store Store, c *cache.Cache, prefix string, w io.Writer, summary *Summary) int {
	collectionName := fmt.Sprintf("%s - %s", prefix, sp.Name)
	collectionKey, err := store.EnsureCollection(ctx, collectionName)
	if err != nil {
		fmt.Fprintf(w, "  error: collection for %s: %v (species skipped)\n", sp.Name, err)
		return -1
	}
	fmt.Fprintf(w, "  Target collection: %s\n", collectionKey)

	var persisted []types.SearchResult
	var keys []string
	for _, rec := range unique {
		key, err := store.AddItem(ctx, rec, collectionKey)
		if err != nil {
			fmt.Fprintf(w, "  warning: item %q not added for %s: %v\n", rec.Title, sp.Name, err)
			continue
		}
		persisted = append(persisted, rec)
		keys = append(keys, key)
	}
	fmt.Fprintf(w, "  Added %d items to Zotero.\n", len(keys))
	summary.ItemsAdded += len(keys)

	if len(keys) > 0 {
		if err := c.AddPapers(sp.Name, persisted, keys, sp.Keywords); err != nil {
			fmt.Fprintf(w, "  error: caching papers for %s: %v\n", sp.Name, err)
		} else {
			fmt.Fprintf(w, "  Cached %d papers.\n", len(keys))
		}
	}
	return len(keys)
}
