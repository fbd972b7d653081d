// Copyright EcoInfo AI, 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const efetchFixture = `<?xml version="1.0" ?>
<PubmedArticleSet>
  <PubmedArticle>
    <MedlineCitation>
      <PMID>12345678</PMID>
      <Article>
        <Journal>
          <JournalIssue>
            <PubDate>
              <Year>2021</Year>
            </PubDate>
          </JournalIssue>
        </Journal>
        <ArticleTitle>Environmental DNA detection of Atlantic cod</ArticleTitle>
        <ELocationID EIdType="pii">S0000</ELocationID>
        <ELocationID EIdType="doi">10.1234/edna.1</ELocationID>
        <Abstract>
          <AbstractText Label="BACKGROUND">Part one.</AbstractText>
          <AbstractText Label="RESULTS">Part two.</AbstractText>
        </Abstract>
        <AuthorList>
          <Author>
            <LastName>Smith</LastName>
            <ForeName>Jane</ForeName>
          </Author>
          <Author>
            <LastName>Jones</LastName>
            <ForeName></ForeName>
          </Author>
          <Author>
            <LastName></LastName>
            <ForeName></ForeName>
          </Author>
        </AuthorList>
      </Article>
    </MedlineCitation>
  </PubmedArticle>
</PubmedArticleSet>`

// newPubMedServer serves esearch and efetch from one httptest server.
func newPubMedServer(t *testing.T, idList string, efetchBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"esearchresult":{"count":"1","idlist":[%s]}}`, idList)
	})
	mux.HandleFunc("/efetch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, efetchBody)
	})
	return httptest.NewServer(mux)
}

func TestPubMedSearchExtractsFields(t *testing.T) {
	ts := newPubMedServer(t, `"12345678"`, efetchFixture)
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = old }()

	p := &PubMedProvider{Client: ts.Client(), Email: "test@example.com", UserAgent: "lit-miner-test"}
	results, err := p.Search(context.Background(), `"Gadus morhua"`, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}

	r := results[0]
	if r.Title != "Environmental DNA detection of Atlantic cod" {
		t.Errorf("Title = %q", r.Title)
	}
	if r.Year != "2021" {
		t.Errorf("Year = %q, want 2021", r.Year)
	}
	if r.DOI != "10.1234/edna.1" {
		t.Errorf("DOI = %q, want first doi-typed ELocationID", r.DOI)
	}
	if r.Source != "PubMed" {
		t.Errorf("Source = %q", r.Source)
	}
	if r.URL != "https://pubmed.ncbi.nlm.nih.gov/12345678/" {
		t.Errorf("URL = %q", r.URL)
	}
	if r.Abstract != "Part one. Part two." {
		t.Errorf("Abstract = %q, want fragments joined with one space", r.Abstract)
	}
	// Author with both parts empty is omitted; a missing forename is not.
	want := []string{"Smith, Jane", "Jones, "}
	if len(r.Authors) != len(want) {
		t.Fatalf("Authors = %v, want %v", r.Authors, want)
	}
	for i := range want {
		if r.Authors[i] != want[i] {
			t.Errorf("Authors[%d] = %q, want %q", i, r.Authors[i], want[i])
		}
	}
}

func TestPubMedSearchNoIDs(t *testing.T) {
	ts := newPubMedServer(t, ``, efetchFixture)
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = old }()

	p := &PubMedProvider{Client: ts.Client(), Email: "test@example.com"}
	results, err := p.Search(context.Background(), "nothing", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0 (efetch must not run)", len(results))
	}
}

func TestPubMedSearchRequestParams(t *testing.T) {
	var esearchReq *http.Request
	mux := http.NewServeMux()
	mux.HandleFunc("/esearch.fcgi", func(w http.ResponseWriter, r *http.Request) {
		esearchReq = r
		fmt.Fprint(w, `{"esearchresult":{"count":"0","idlist":[]}}`)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = old }()

	p := &PubMedProvider{Client: ts.Client(), Email: "researcher@example.com"}
	if _, err := p.Search(context.Background(), `"Sp1" AND "eDNA"`, 7); err != nil {
		t.Fatalf("Search: %v", err)
	}

	q := esearchReq.URL.Query()
	if got := q.Get("term"); got != `"Sp1" AND "eDNA"` {
		t.Errorf("term = %q", got)
	}
	if got := q.Get("retmax"); got != "7" {
		t.Errorf("retmax = %q, want 7", got)
	}
	if got := q.Get("db"); got != "pubmed" {
		t.Errorf("db = %q", got)
	}
	if got := q.Get("email"); got != "researcher@example.com" {
		t.Errorf("email = %q", got)
	}
}

func TestPubMedSearchUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := pubmedAPIBase
	pubmedAPIBase = ts.URL
	defer func() { pubmedAPIBase = old }()

	p := &PubMedProvider{Client: ts.Client(), Email: "test@example.com"}
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("want error on HTTP 500")
	}
}
