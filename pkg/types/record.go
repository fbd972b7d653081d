// Copyright EcoInfo AI, 2026. All rights reserved.

// Package types defines shared data structures for the lit-miner pipeline.
package types

// SearchResult is one bibliographic record returned by a search provider.
// Records carry no identity field; the deduplicator derives identity from
// the DOI when present, otherwise from the normalized title.
type SearchResult struct {
	// Title is the paper title as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// Authors lists author display names in source order, either
	// "Last, First" (PubMed) or a bare name (Semantic Scholar).
	Authors []string `json:"authors" yaml:"authors"`

	// Year is the publication year. Empty when the provider has none.
	Year string `json:"year" yaml:"year"`

	// DOI is the digital object identifier, possibly empty.
	DOI string `json:"doi" yaml:"doi"`

	// Source names the provider that returned this record
	// (e.g. "PubMed", "SemanticScholar").
	Source string `json:"source" yaml:"source"`

	// Abstract is the full abstract text, empty when unavailable.
	Abstract string `json:"abstract" yaml:"abstract"`

	// URL is the canonical landing page for the record.
	URL string `json:"url" yaml:"url"`
}

// SpeciesQuery is one unit of work from the input species list. Entries
// are created once at load time and never mutated.
type SpeciesQuery struct {
	// Name is the species name. Required.
	Name string `yaml:"name"`

	// Synonyms lists alternative names OR-combined with Name in queries.
	Synonyms []string `yaml:"synonyms"`

	// Keywords lists topic terms AND-combined with the name clause.
	Keywords []string `yaml:"keywords"`

	// DateRange is informational only; it is recorded but not applied
	// as a provider filter.
	DateRange string `yaml:"date_range,omitempty"`
}
