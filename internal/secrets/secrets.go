// Copyright EcoInfo AI, 2026. All rights reserved.

// Package secrets loads the mining credentials from a directory of
// plain-text key files. Each file holds one credential: the filename is the
// key name and the file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credential key files recognized in the secrets directory.
const (
	KeyZoteroAPIKey          = "zotero-api-key"
	KeyZoteroLibraryID       = "zotero-library-id"
	KeySemanticScholarAPIKey = "semantic-scholar-api-key"
	KeyNCBIEmail             = "ncbi-email"
)

var knownKeys = map[string]bool{
	KeyZoteroAPIKey:          true,
	KeyZoteroLibraryID:       true,
	KeySemanticScholarAPIKey: true,
	KeyNCBIEmail:             true,
}

// Load reads the recognized credential files in dir and returns a map of
// key name to trimmed contents. Files with other names are ignored. A
// missing directory or missing files are not errors; Load returns an empty
// map. Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !knownKeys[name] {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
