// Copyright EcoInfo AI, 2026. All rights reserved.

package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// HTTPConfig holds shared HTTP settings for components that make network
// requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "lit-miner/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the search providers.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Limit is the maximum number of results requested per provider per
	// species (default 10).
	Limit int `json:"limit" yaml:"limit"`

	// Email is the contact email sent to NCBI E-utilities. Required for
	// the PubMed provider.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// EnablePubMed controls whether the PubMed provider is used.
	EnablePubMed bool `json:"enable_pubmed" yaml:"enable_pubmed"`

	// EnableSemanticScholar controls whether the Semantic Scholar
	// provider is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`
}

// ZoteroConfig holds credentials for the Zotero Web API.
type ZoteroConfig struct {
	// LibraryID is the numeric user or group library identifier.
	LibraryID string `json:"library_id" yaml:"library_id"`

	// LibraryType is "user" or "group" (default "group").
	LibraryType string `json:"library_type" yaml:"library_type"`

	// APIKey authenticates write access to the library.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// Validate checks that the Zotero credentials are usable for persistence.
func (c ZoteroConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.LibraryID, validation.Required, is.Digit),
		validation.Field(&c.LibraryType, validation.Required, validation.In("user", "group")),
		validation.Field(&c.APIKey, validation.Required),
	)
}

// CacheConfig holds paths for the abstract cache and its search index.
type CacheConfig struct {
	// File is the YAML abstract cache path (default "data/abstracts_cache.yaml").
	File string `json:"file" yaml:"file"`

	// IndexFile is the SQLite FTS index path (default "data/abstracts.db").
	IndexFile string `json:"index_file" yaml:"index_file"`
}

// MinerConfig groups all component configurations.
type MinerConfig struct {
	Search SearchConfig `json:"search" yaml:"search"`
	Zotero ZoteroConfig `json:"zotero" yaml:"zotero"`
	Cache  CacheConfig  `json:"cache" yaml:"cache"`
}

// Validate checks the configuration for a full (non dry-run) mining run.
// PubMed needs a contact email; persistence needs Zotero credentials.
func (c MinerConfig) Validate() error {
	if c.Search.EnablePubMed {
		if err := validation.Validate(c.Search.Email, validation.Required, is.Email); err != nil {
			return validation.Errors{"search.email": err}
		}
	}
	if err := c.Zotero.Validate(); err != nil {
		return err
	}
	return nil
}
