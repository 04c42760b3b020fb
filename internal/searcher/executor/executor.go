// Package executor evaluates parsed queries against the frozen index using
// TF·IDF-weighted cosine similarity.
package executor

import (
	"log/slog"

	"github.com/quaero-search/quaero/internal/indexer/index"
	"github.com/quaero-search/quaero/internal/indexer/tokenizer"
	"github.com/quaero-search/quaero/internal/searcher/parser"
	"github.com/quaero-search/quaero/internal/searcher/ranker"
)

// Result is one query's ranked output.
type Result struct {
	QueryID    int                `json:"query_id"`
	K          int                `json:"k"`
	Normalized string             `json:"normalized_query"`
	Docs       []ranker.ScoredDoc `json:"results"`
}

// Executor scores queries against a single read-only index. Safe for
// concurrent use.
type Executor struct {
	idx    *index.Index
	logger *slog.Logger
}

// New creates an Executor over a weighted index.
func New(idx *index.Index) *Executor {
	return &Executor{
		idx:    idx,
		logger: slog.Default().With("component", "query-executor"),
	}
}

// Execute accumulates cosine-similarity scores for every document sharing a
// term with the query and returns the top q.K of them.
//
// Scoring iterates the raw token sequence, so a term repeated in the query
// contributes once per occurrence, on top of the count/max factor already in
// its query-vector weight.
func (e *Executor) Execute(q *parser.Query) *Result {
	qv := queryVector(e.idx, q.Tokens)
	sim := make(map[int]float32)
	for _, tok := range q.Tokens {
		w := qv[tok.Term]
		if w == 0 {
			continue
		}
		postings, ok := e.idx.Postings(tok.Term)
		if !ok {
			continue
		}
		idf, _ := e.idx.IDF(tok.Term)
		for _, p := range postings {
			sim[p.DocID] += p.TF * idf * w
		}
	}

	// Only documents with at least one posting are in sim, so every
	// magnitude here is positive.
	for docID, score := range sim {
		sim[docID] = score / e.idx.Magnitude(docID)
	}

	docs := ranker.TopK(sim, q.K)
	e.logger.Debug("query executed",
		"query_id", q.ID,
		"k", q.K,
		"candidates", len(sim),
		"results", len(docs),
	)
	return &Result{
		QueryID:    q.ID,
		K:          q.K,
		Normalized: q.Normalized,
		Docs:       docs,
	}
}

// queryVector weights each distinct query term by (count/maxCount)·idf.
// Terms missing from the index weigh zero.
func queryVector(ix *index.Index, tokens []tokenizer.Token) map[string]float32 {
	counts := make(map[string]float32, len(tokens))
	var max float32
	for _, tok := range tokens {
		counts[tok.Term]++
		if counts[tok.Term] > max {
			max = counts[tok.Term]
		}
	}
	for term, count := range counts {
		idf, ok := ix.IDF(term)
		if !ok {
			counts[term] = 0
			continue
		}
		counts[term] = count / max * idf
	}
	return counts
}
