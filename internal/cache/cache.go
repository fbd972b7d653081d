// Copyright EcoInfo AI, 2026. All rights reserved.

// Package cache maintains a durable, species-partitioned YAML store of
// persisted bibliographic records and their abstracts, for downstream
// analysis. All papers live in a single document organized by species.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// Metadata is the document-level bookkeeping block. The counts are
// recomputed from the live contents on every write, never incremented, so
// they cannot drift.
type Metadata struct {
	CreatedAt    string `yaml:"created_at"`
	LastUpdated  string `yaml:"last_updated"`
	TotalSpecies int    `yaml:"total_species"`
	TotalPapers  int    `yaml:"total_papers"`
}

// Paper is one cached record: the persisted bibliographic fields plus the
// Zotero item key it was stored under.
type Paper struct {
	ZoteroKey string   `yaml:"zotero_key"`
	Title     string   `yaml:"title"`
	Authors   []string `yaml:"authors"`
	Year      string   `yaml:"year"`
	DOI       string   `yaml:"doi"`
	Source    string   `yaml:"source"`
	URL       string   `yaml:"url"`
	Abstract  string   `yaml:"abstract"`
	AddedAt   string   `yaml:"added_at"`
}

// SpeciesEntry groups the cached papers for one species. Name is unique
// within the document; Keywords are set at first creation and never merged
// on later appends; Papers is append-only.
type SpeciesEntry struct {
	Name        string   `yaml:"name"`
	Keywords    []string `yaml:"keywords"`
	Papers      []Paper  `yaml:"papers"`
	AddedAt     string   `yaml:"added_at"`
	LastUpdated string   `yaml:"last_updated"`
}

// document is the full on-disk structure. Both top-level keys are always
// present, even when empty.
type document struct {
	Metadata Metadata        `yaml:"metadata"`
	Species  []*SpeciesEntry `yaml:"species"`
}

// Cache manages the abstract cache file. Every append is one
// load-modify-store cycle over the whole document; a single process must
// own the file for the duration of a run (no locking).
type Cache struct {
	path string
	now  func() time.Time
}

// Open prepares the cache at path, creating the parent directory and a
// fresh zero-species document if the file does not exist yet.
func Open(path string) (*Cache, error) {
	c := &Cache{path: path, now: time.Now}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		ts := c.timestamp()
		doc := &document{
			Metadata: Metadata{CreatedAt: ts, LastUpdated: ts},
			Species:  []*SpeciesEntry{},
		}
		if err := c.write(doc); err != nil {
			return nil, fmt.Errorf("initializing cache: %w", err)
		}
	}
	return c, nil
}

// AddPapers appends one paper entry per record/key pair to the species'
// entry, creating the entry (with the given keywords) if absent. Records
// and keys are positionally paired and must have equal length. The
// species' last_updated timestamp and the document metadata are refreshed,
// and the whole document is rewritten.
func (c *Cache) AddPapers(species string, records []types.SearchResult, keys []string, keywords []string) error {
	if len(records) != len(keys) {
		return fmt.Errorf("records and zotero keys must pair up: %d records, %d keys", len(records), len(keys))
	}

	return c.update(func(doc *document) error {
		ts := c.timestamp()

		entry := findSpecies(doc, species)
		if entry == nil {
			entry = &SpeciesEntry{
				Name:        species,
				Keywords:    append([]string(nil), keywords...),
				Papers:      []Paper{},
				AddedAt:     ts,
				LastUpdated: ts,
			}
			doc.Species = append(doc.Species, entry)
		} else {
			entry.LastUpdated = ts
		}

		for i, rec := range records {
			entry.Papers = append(entry.Papers, Paper{
				ZoteroKey: keys[i],
				Title:     rec.Title,
				Authors:   append([]string(nil), rec.Authors...),
				Year:      rec.Year,
				DOI:       rec.DOI,
				Source:    rec.Source,
				URL:       rec.URL,
				Abstract:  rec.Abstract,
				AddedAt:   ts,
			})
		}

		doc.Metadata.LastUpdated = ts
		doc.Metadata.TotalSpecies = len(doc.Species)
		total := 0
		for _, sp := range doc.Species {
			total += len(sp.Papers)
		}
		doc.Metadata.TotalPapers = total
		return nil
	})
}

// GetSpecies returns the cached entry for an exact species name, or nil
// when the species is not in the cache.
func (c *Cache) GetSpecies(name string) (*SpeciesEntry, error) {
	doc, err := c.read()
	if err != nil {
		return nil, err
	}
	return findSpecies(doc, name), nil
}

// AbstractsText renders every cached paper for a species as plain text for
// LLM analysis. An absent species renders as an empty string; a species
// with zero papers still renders the header.
func (c *Cache) AbstractsText(name string) (string, error) {
	entry, err := c.GetSpecies(name)
	if err != nil {
		return "", err
	}
	if entry == nil {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Species: %s\n", entry.Name)
	fmt.Fprintf(&b, "Total papers: %d\n\n", len(entry.Papers))

	for i, paper := range entry.Papers {
		fmt.Fprintf(&b, "--- Paper %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", paper.Title)
		fmt.Fprintf(&b, "Authors: %s\n", strings.Join(paper.Authors, ", "))
		fmt.Fprintf(&b, "Year: %s\n", paper.Year)
		fmt.Fprintf(&b, "DOI: %s\n", paper.DOI)
		fmt.Fprintf(&b, "Source: %s\n", paper.Source)
		fmt.Fprintf(&b, "Zotero Key: %s\n", paper.ZoteroKey)
		fmt.Fprintf(&b, "\nAbstract:\n%s\n\n", paper.Abstract)
	}
	return b.String(), nil
}

// Statistics returns the live metadata block verbatim.
func (c *Cache) Statistics() (Metadata, error) {
	doc, err := c.read()
	if err != nil {
		return Metadata{}, err
	}
	return doc.Metadata, nil
}

// Species returns all species entries in document order.
func (c *Cache) Species() ([]*SpeciesEntry, error) {
	doc, err := c.read()
	if err != nil {
		return nil, err
	}
	return doc.Species, nil
}

// update is the single mutation boundary: load the document, apply mutate
// in memory, persist the result. A future multi-writer extension adds
// locking here without touching callers.
func (c *Cache) update(mutate func(doc *document) error) error {
	doc, err := c.read()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return c.write(doc)
}

func (c *Cache) read() (*document, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing cache file: %w", err)
	}
	if doc.Species == nil {
		doc.Species = []*SpeciesEntry{}
	}
	return &doc, nil
}

func (c *Cache) write(doc *document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling cache document: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}
	return nil
}

func (c *Cache) timestamp() string {
	return c.now().Format(time.RFC3339)
}

func findSpecies(doc *document, name string) *SpeciesEntry {
	for _, sp := range doc.Species {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}
