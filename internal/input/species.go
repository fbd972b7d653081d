// Copyright EcoInfo AI, 2026. All rights reserved.

// Package input loads the species list that drives a mining run.
package input

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// speciesFile is the on-disk species list: a top-level "species" sequence.
type speciesFile struct {
	Species []speciesEntry `yaml:"species"`
}

type speciesEntry struct {
	Name      string   `yaml:"name"`
	Synonyms  []string `yaml:"synonyms"`
	Keywords  []string `yaml:"keywords"`
	DateRange string   `yaml:"date_range"`
}

// LoadSpeciesList parses the YAML species list at path. Entries without a
// name are skipped; synonyms and keywords default to empty. A missing or
// malformed file is a load error (fatal at the CLI level).
func LoadSpeciesList(path string) ([]types.SpeciesQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading species list %s: %w", path, err)
	}

	var f speciesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing species list %s: %w", path, err)
	}
	if len(f.Species) == 0 {
		return nil, fmt.Errorf("species list %s: 'species' list is missing or empty", path)
	}

	queries := make([]types.SpeciesQuery, 0, len(f.Species))
	for _, entry := range f.Species {
		if entry.Name == "" {
			continue
		}
		queries = append(queries, types.SpeciesQuery{
			Name:      entry.Name,
			Synonyms:  entry.Synonyms,
			Keywords:  entry.Keywords,
			DateRange: entry.DateRange,
		})
	}
	return queries, nil
}
