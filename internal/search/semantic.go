// Copyright EcoInfo AI, 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/httputil"
	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const semanticFields = "title,abstract,authors,externalIds,year,url"

// SemanticScholarProvider queries the Semantic Scholar Graph API directly
// with the boolean query and a result-count cap.
type SemanticScholarProvider struct {
	Client    *http.Client
	APIKey    string
	UserAgent string
}

// Name returns the provider label recorded on results.
func (p *SemanticScholarProvider) Name() string { return "SemanticScholar" }

// Search queries the paper search endpoint and maps each returned paper to
// a SearchResult, with every field defaulting to empty on missing data.
func (p *SemanticScholarProvider) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)
	if p.APIKey != "" {
		req.Header.Set("x-api-key", p.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}

	var results []types.SearchResult
	for _, paper := range sr.Data {
		r := types.SearchResult{
			Title:    paper.Title,
			DOI:      paper.ExternalIDs.DOI,
			Source:   p.Name(),
			Abstract: paper.Abstract,
			URL:      paper.URL,
		}
		if paper.Year > 0 {
			r.Year = strconv.Itoa(paper.Year)
		}
		for _, a := range paper.Authors {
			r.Authors = append(r.Authors, a.Name)
		}
		results = append(results, r)
	}
	return results, nil
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID     string              `json:"paperId"`
	Title       string              `json:"title"`
	Abstract    string              `json:"abstract"`
	Year        int                 `json:"year"`
	URL         string              `json:"url"`
	Authors     []semanticAuthor    `json:"authors"`
	ExternalIDs semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI string `json:"DOI"`
}
