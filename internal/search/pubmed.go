// Copyright EcoInfo AI, 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ecoinfoai/eDNA-lit-miner/internal/httputil"
	"github.com/ecoinfoai/eDNA-lit-miner/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities endpoint root. Declared as a var so
// tests can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const pubmedTool = "lit-miner"

// PubMedProvider queries PubMed through NCBI E-utilities: esearch for up to
// limit PMIDs, then efetch for the structured records. NCBI requires a
// contact email on every request.
type PubMedProvider struct {
	Client    *http.Client
	Email     string
	UserAgent string
}

// Name returns the provider label recorded on results.
func (p *PubMedProvider) Name() string { return "PubMed" }

// Search runs the two-step esearch/efetch flow and maps the fetched
// articles to SearchResults.
func (p *PubMedProvider) Search(ctx context.Context, query string, limit int) ([]types.SearchResult, error) {
	ids, err := p.searchIDs(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return p.fetchArticles(ctx, ids)
}

// searchIDs calls esearch.fcgi and returns the matching PMIDs.
func (p *PubMedProvider) searchIDs(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {fmt.Sprintf("%d", limit)},
		"retmode": {"json"},
		"tool":    {pubmedTool},
		"email":   {p.Email},
	}
	reqURL := pubmedAPIBase + "/esearch.fcgi?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating esearch request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed esearch returned HTTP %d", resp.StatusCode)
	}

	var sr esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}
	return sr.Result.IDList, nil
}

// fetchArticles calls efetch.fcgi for the given PMIDs and extracts
// bibliographic fields from the returned XML.
func (p *PubMedProvider) fetchArticles(ctx context.Context, ids []string) ([]types.SearchResult, error) {
	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"xml"},
		"tool":    {pubmedTool},
		"email":   {p.Email},
	}
	reqURL := pubmedAPIBase + "/efetch.fcgi?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating efetch request: %w", err)
	}
	req.Header.Set("User-Agent", p.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var results []types.SearchResult
	for _, article := range set.Articles {
		data := article.Citation.Article
		r := types.SearchResult{
			Title:    data.Title,
			Year:     data.Journal.Year,
			Source:   p.Name(),
			Abstract: joinAbstract(data.Abstract.Texts),
			URL:      fmt.Sprintf("https://pubmed.ncbi.nlm.nih.gov/%s/", article.Citation.PMID),
		}

		for _, a := range data.Authors {
			if a.LastName == "" && a.ForeName == "" {
				continue
			}
			r.Authors = append(r.Authors, fmt.Sprintf("%s, %s", a.LastName, a.ForeName))
		}

		// First ELocationID whose EIdType marks it as a DOI.
		for _, eid := range data.ELocationIDs {
			if eid.Type == "doi" {
				r.DOI = strings.TrimSpace(eid.Value)
				break
			}
		}

		results = append(results, r)
	}
	return results, nil
}

// joinAbstract concatenates AbstractText fragments with a single space.
// Structured abstracts arrive as multiple labeled fragments; plain ones as
// a single element.
func joinAbstract(fragments []string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// efetch XML structures.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	Citation pubmedCitation `xml:"MedlineCitation"`
}

type pubmedCitation struct {
	PMID    string           `xml:"PMID"`
	Article pubmedArticleData `xml:"Article"`
}

type pubmedArticleData struct {
	Title        string            `xml:"ArticleTitle"`
	Abstract     pubmedAbstract    `xml:"Abstract"`
	Authors      []pubmedAuthor    `xml:"AuthorList>Author"`
	Journal      pubmedJournal     `xml:"Journal"`
	ELocationIDs []pubmedELocation `xml:"ELocationID"`
}

type pubmedAbstract struct {
	Texts []string `xml:"AbstractText"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
}

type pubmedJournal struct {
	Year string `xml:"JournalIssue>PubDate>Year"`
}

type pubmedELocation struct {
	Type  string `xml:"EIdType,attr"`
	Value string `xml:",chardata"`
}
