// Copyright EcoInfo AI, 2026. All rights reserved.

package zotero

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		HTTP:        ts.Client(),
		LibraryID:   "12345",
		LibraryType: "group",
		APIKey:      "secret-key",
		UserAgent:   "lit-miner-test",
	}
}

func withAPIBase(t *testing.T, url string) {
	t.Helper()
	old := apiBase
	apiBase = url
	t.Cleanup(func() { apiBase = old })
}

func TestEnsureCollectionFindsExisting(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/12345/collections", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("Zotero-API-Key"))
		fmt.Fprint(w, `[
			{"key":"AAA","data":{"name":"eDNA - Other species"}},
			{"key":"BBB","data":{"name":"eDNA - Gadus morhua"}}
		]`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	key, err := testClient(ts).EnsureCollection(context.Background(), "eDNA - Gadus morhua")
	require.NoError(t, err)
	assert.Equal(t, "BBB", key)
}

func TestEnsureCollectionNameMatchIsCaseSensitive(t *testing.T) {
	var created bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[{"key":"AAA","data":{"name":"edna - gadus morhua"}}]`)
			return
		}
		created = true
		fmt.Fprint(w, `{"successful":{"0":{"key":"NEW1"}},"failed":{}}`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	key, err := testClient(ts).EnsureCollection(context.Background(), "eDNA - Gadus morhua")
	require.NoError(t, err)
	assert.True(t, created, "a differently-cased name must not match")
	assert.Equal(t, "NEW1", key)
}

func TestEnsureCollectionCreateFailurePropagates(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, `[]`)
			return
		}
		fmt.Fprint(w, `{"successful":{},"failed":{"0":{"code":500,"message":"boom"}}}`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	_, err := testClient(ts).EnsureCollection(context.Background(), "eDNA - Sp")
	assert.Error(t, err)
}

func TestAddItemPayload(t *testing.T) {
	var payload []map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/12345/items", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		fmt.Fprint(w, `{"successful":{"0":{"key":"ITEM1"}},"failed":{}}`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	rec := types.SearchResult{
		Title:    "Cod detection",
		Authors:  []string{"Smith, Jane", "Bob Lee", "One, Two, Three"},
		Year:     "2022",
		DOI:      "10.1/x",
		Source:   "PubMed",
		Abstract: "Body.",
		URL:      "https://example.org",
	}
	key, err := testClient(ts).AddItem(context.Background(), rec, "COL1")
	require.NoError(t, err)
	assert.Equal(t, "ITEM1", key)

	require.Len(t, payload, 1)
	item := payload[0]
	assert.Equal(t, "journalArticle", item["itemType"])
	assert.Equal(t, "Cod detection", item["title"])
	assert.Equal(t, "2022", item["date"])
	assert.Equal(t, "10.1/x", item["DOI"])
	assert.Equal(t, "PubMed", item["libraryCatalog"])
	assert.Equal(t, "Body.", item["abstractNote"])
	assert.Equal(t, []any{"COL1"}, item["collections"])

	creators, ok := item["creators"].([]any)
	require.True(t, ok)
	require.Len(t, creators, 3)

	// Exactly one comma splits into last/first.
	first := creators[0].(map[string]any)
	assert.Equal(t, "Smith", first["lastName"])
	assert.Equal(t, "Jane", first["firstName"])

	// No comma: freeform name.
	second := creators[1].(map[string]any)
	assert.Equal(t, "Bob Lee", second["name"])
	assert.Nil(t, second["lastName"])

	// More than one comma: also freeform.
	third := creators[2].(map[string]any)
	assert.Equal(t, "One, Two, Three", third["name"])
}

func TestAddItemFailureReturnsError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"successful":{},"failed":{"0":{"code":400,"message":"invalid"}}}`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	_, err := testClient(ts).AddItem(context.Background(), types.SearchResult{Title: "x"}, "COL1")
	assert.Error(t, err)
}

func TestUserLibraryPrefix(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()
	withAPIBase(t, ts.URL)

	c := testClient(ts)
	c.LibraryType = "user"
	c.LibraryID = "99"
	_, err := c.listCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/users/99/collections", path)
}
