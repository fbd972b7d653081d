// Copyright EcoInfo AI, 2026. All rights reserved.

// Package search builds species queries and runs them against bibliographic
// providers, returning unified, deduplicated results.
package search

import (
	"context"

	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// Provider searches a single bibliographic source. Each provider (PubMed,
// Semantic Scholar) implements this interface per the Strategy pattern.
// Implementations return errors idiomatically; the pipeline absorbs every
// provider error into zero results so one failing source never aborts a
// species.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error)
}
