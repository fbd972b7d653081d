// Copyright EcoInfo AI, 2026. All rights reserved.

package search

import "strings"

// BuildQuery combines a species name, its synonyms, and topic keywords into
// one boolean query string consumable by any provider, e.g.
//
//	("Gadus morhua" OR "Atlantic cod") AND ("eDNA" OR "environmental DNA")
//
// Every term is individually quoted. The name group is parenthesized only
// when synonyms are present; the keyword clause is parenthesized only when
// there is more than one keyword, and omitted entirely when there are none.
// Term order is preserved as given, so output is deterministic.
func BuildQuery(name string, synonyms, keywords []string) string {
	terms := make([]string, 0, 1+len(synonyms))
	terms = append(terms, quote(name))
	for _, syn := range synonyms {
		terms = append(terms, quote(syn))
	}

	namePart := terms[0]
	if len(terms) > 1 {
		namePart = "(" + strings.Join(terms, " OR ") + ")"
	}

	if len(keywords) == 0 {
		return namePart
	}

	kwTerms := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kwTerms = append(kwTerms, quote(kw))
	}
	if len(kwTerms) == 1 {
		return namePart + " AND " + kwTerms[0]
	}
	return namePart + " AND (" + strings.Join(kwTerms, " OR ") + ")"
}

func quote(s string) string {
	return `"` + s + `"`
}
