// Copyright EcoInfo AI, 2026. All rights reserved.

// Package zotero persists bibliographic records into a Zotero library
// through the Zotero Web API v3. The pipeline keeps one collection per
// species and one journalArticle item per unique record.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/httputil"
	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// apiBase is the Zotero Web API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.zotero.org"

// Client talks to one Zotero user or group library.
type Client struct {
	HTTP        *http.Client
	LibraryID   string
	LibraryType string // "user" or "group"
	APIKey      string
	UserAgent   string
}

// libraryPrefix returns the URL prefix for the configured library,
// e.g. "/groups/12345" or "/users/67890".
func (c *Client) libraryPrefix() string {
	if c.LibraryType == "user" {
		return "/users/" + c.LibraryID
	}
	return "/groups/" + c.LibraryID
}

// EnsureCollection returns the key of the collection with the given name,
// creating it when no existing collection matches exactly
// (case-sensitive). Creation failures propagate: a species cannot be
// persisted without its collection.
func (c *Client) EnsureCollection(ctx context.Context, name string) (string, error) {
	collections, err := c.listCollections(ctx)
	if err != nil {
		return "", err
	}
	for _, col := range collections {
		if col.Data.Name == name {
			return col.Key, nil
		}
	}
	return c.createCollection(ctx, name)
}

// AddItem stores one record as a journalArticle in the given collection
// and returns the item key assigned by Zotero. A failed write returns an
// error; callers skip the record and continue with the rest of the batch.
func (c *Client) AddItem(ctx context.Context, rec types.SearchResult, collectionKey string) (string, error) {
	item := itemPayload{
		ItemType:       "journalArticle",
		Title:          rec.Title,
		Creators:       parseCreators(rec.Authors),
		Date:           rec.Year,
		DOI:            rec.DOI,
		URL:            rec.URL,
		AbstractNote:   rec.Abstract,
		LibraryCatalog: rec.Source,
		Collections:    []string{collectionKey},
	}

	var resp writeResponse
	if err := c.post(ctx, "/items", []itemPayload{item}, &resp); err != nil {
		return "", fmt.Errorf("creating item %q: %w", rec.Title, err)
	}

	key, ok := resp.successKey()
	if !ok {
		return "", fmt.Errorf("creating item %q: store reported no success", rec.Title)
	}
	return key, nil
}

// parseCreators maps author display names to Zotero creator fields. A name
// with exactly one comma splits into last/first; anything else is stored
// as a single freeform name.
func parseCreators(authors []string) []creator {
	creators := make([]creator, 0, len(authors))
	for _, name := range authors {
		if strings.Count(name, ",") == 1 {
			parts := strings.SplitN(name, ",", 2)
			creators = append(creators, creator{
				CreatorType: "author",
				LastName:    strings.TrimSpace(parts[0]),
				FirstName:   strings.TrimSpace(parts[1]),
			})
			continue
		}
		creators = append(creators, creator{
			CreatorType: "author",
			Name:        strings.TrimSpace(name),
		})
	}
	return creators
}

func (c *Client) listCollections(ctx context.Context) ([]collection, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/collections", nil)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing collections: Zotero API returned HTTP %d", resp.StatusCode)
	}

	var collections []collection
	if err := json.NewDecoder(resp.Body).Decode(&collections); err != nil {
		return nil, fmt.Errorf("parsing collections response: %w", err)
	}
	return collections, nil
}

func (c *Client) createCollection(ctx context.Context, name string) (string, error) {
	var resp writeResponse
	if err := c.post(ctx, "/collections", []collectionPayload{{Name: name}}, &resp); err != nil {
		return "", fmt.Errorf("creating collection %q: %w", name, err)
	}

	key, ok := resp.successKey()
	if !ok {
		return "", fmt.Errorf("creating collection %q: store reported no success", name)
	}
	return key, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing write response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	url := apiBase + c.libraryPrefix() + path

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("Zotero-API-Key", c.APIKey)
	req.Header.Set("User-Agent", c.UserAgent)
	return req, nil
}

// Zotero Web API JSON structures.
type collection struct {
	Key  string         `json:"key"`
	Data collectionData `json:"data"`
}

type collectionData struct {
	Name string `json:"name"`
}

type collectionPayload struct {
	Name string `json:"name"`
}

type creator struct {
	CreatorType string `json:"creatorType"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Name        string `json:"name,omitempty"`
}

type itemPayload struct {
	ItemType       string    `json:"itemType"`
	Title          string    `json:"title"`
	Creators       []creator `json:"creators"`
	Date           string    `json:"date"`
	DOI            string    `json:"DOI"`
	URL            string    `json:"url"`
	AbstractNote   string    `json:"abstractNote"`
	LibraryCatalog string    `json:"libraryCatalog"`
	Collections    []string  `json:"collections"`
}

// writeResponse is the multi-object write envelope: "successful" maps the
// zero-based request index to the created object.
type writeResponse struct {
	Successful map[string]struct {
		Key string `json:"key"`
	} `json:"successful"`
	Failed map[string]struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"failed"`
}

// successKey returns the key of the first (index "0") successful write.
func (r writeResponse) successKey() (string, bool) {
	s, ok := r.Successful["0"]
	if !ok || s.Key == "" {
		return "", false
	}
	return s.Key, true
}
