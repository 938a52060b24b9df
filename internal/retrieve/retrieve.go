// Package retrieve scores corpus documents against a query using a
// longest-matching-blocks ratio. This is deliberate string similarity, not
// semantic search: the corpus is a small personal library and the cost of
// embeddings is not justified.
package retrieve

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/daniellegy/softia/internal/store"
)

const DefaultTopN = 6

type Result struct {
	Score float64
	Name  string
	Text  string
}

// Retrieve returns the topN corpus documents most similar to query, sorted
// by descending score with ties kept in corpus order. The corpus is never
// mutated; an empty corpus yields an empty result.
//
// Each comparison is O(query_len * doc_len), acceptable for a corpus of a
// few dozen documents.
func Retrieve(query string, corpus []store.CorpusDocument, topN int) []Result {
	if topN <= 0 || len(corpus) == 0 {
		return nil
	}

	querySeq := runes(strings.ToLower(query))

	results := make([]Result, 0, len(corpus))
	for _, doc := range corpus {
		matcher := difflib.NewMatcher(querySeq, runes(strings.ToLower(doc.Text)))
		results = append(results, Result{
			Score: matcher.Ratio(),
			Name:  doc.Name,
			Text:  doc.Text,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topN {
		results = results[:topN]
	}
	return results
}

// runes splits s into one-rune strings so the matcher aligns characters,
// matching the granularity of a character-level sequence ratio.
func runes(s string) []string {
	return strings.Split(s, "")
}
