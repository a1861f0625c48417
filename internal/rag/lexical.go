package rag

import (
	"math"
	"sort"
	"strings"
)

// BM25 Okapi parameters.
const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// lexicalDoc is one entry in a throwaway per-query index.
type lexicalDoc struct {
	ID     string
	Tokens []string
}

// LexicalIndex is a BM25 index built fresh for a single query over the
// caller's candidate chunks. It is never persisted or shared.
type LexicalIndex struct {
	docs   []lexicalDoc
	df     map[string]int
	avgLen float64
}

// NewLexicalIndex builds an index over (chunk ID, scoreable text) pairs.
func NewLexicalIndex(ids, texts []string) *LexicalIndex {
	idx := &LexicalIndex{df: make(map[string]int)}
	var total int
	for i, id := range ids {
		tokens := tokenize(texts[i])
		idx.docs = append(idx.docs, lexicalDoc{ID: id, Tokens: tokens})
		total += len(tokens)

		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			idx.df[tok]++
		}
	}
	if len(idx.docs) > 0 {
		idx.avgLen = float64(total) / float64(len(idx.docs))
	}
	return idx
}

// TopK returns the IDs of the k best-matching chunks, best first. Chunks
// that score zero or below are excluded entirely; an empty result is a valid
// outcome.
func (idx *LexicalIndex) TopK(query string, k int) []string {
	qTokens := tokenize(query)
	if len(qTokens) == 0 || len(idx.docs) == 0 {
		return nil
	}

	type scored struct {
		id    string
		score float64
		pos   int
	}
	var results []scored
	for pos, doc := range idx.docs {
		s := idx.score(qTokens, doc)
		if s > 0 {
			results = append(results, scored{id: doc.ID, score: s, pos: pos})
		}
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].pos < results[j].pos
	})

	if k > len(results) {
		k = len(results)
	}
	out := make([]string, 0, k)
	for _, r := range results[:k] {
		out = append(out, r.id)
	}
	return out
}

func (idx *LexicalIndex) score(qTokens []string, doc lexicalDoc) float64 {
	tf := make(map[string]int, len(doc.Tokens))
	for _, tok := range doc.Tokens {
		tf[tok]++
	}

	n := float64(len(idx.docs))
	docLen := float64(len(doc.Tokens))

	var total float64
	for _, tok := range qTokens {
		freq := float64(tf[tok])
		if freq == 0 {
			continue
		}
		df := float64(idx.df[tok])
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		norm := 1 - bm25B + bm25B*docLen/idx.avgLen
		total += idf * (freq * (bm25K1 + 1)) / (freq + bm25K1*norm)
	}
	return total
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
