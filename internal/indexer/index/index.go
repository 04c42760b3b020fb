// Package index holds the inverted-index data model: postings, worker-owned
// shards, and the merged global index with its TF·IDF weighting pipeline.
// All weighting arithmetic is single-precision.
package index

import (
	"fmt"
	"io"
	"math"
	"sort"
)

// Index is the merged retrieval index. It is written once by Merge and
// Weight, then strictly read-only, so concurrent query workers need no
// synchronisation.
type Index struct {
	terms      map[string]PostingList
	idf        map[string]float32
	docMaxFreq []int
	magnitudes []float32
	totalDocs  int
}

// New creates an empty index for a corpus of totalDocs documents.
func New(totalDocs int) *Index {
	return &Index{
		terms:      make(map[string]PostingList),
		idf:        make(map[string]float32),
		docMaxFreq: make([]int, totalDocs),
		magnitudes: make([]float32, totalDocs),
		totalDocs:  totalDocs,
	}
}

// Merge moves the shard's postings into the index and consumes the shard,
// leaving its dictionary empty. Per-term concatenation keeps the index's
// existing postings first and appends the shard's at the tail; postings keep
// their order within each list. A positive shard docMaxFreq entry overwrites
// the index's entry unconditionally — disjoint document ownership guarantees
// the destination is zero there.
func (ix *Index) Merge(s *Shard) {
	for term, list := range s.terms {
		if existing, ok := ix.terms[term]; ok {
			ix.terms[term] = append(existing, list...)
		} else {
			ix.terms[term] = list
		}
	}
	s.terms = make(map[string]PostingList)

	for i, f := range s.docMaxFreq {
		if f > 0 {
			ix.docMaxFreq[i] = f
		}
	}
}

// Weight computes the IDF table and document magnitudes in two passes:
// accumulate (tf·idf)² per document, then take square roots. Magnitudes are
// reset first, so weighting an already-weighted index recomputes the same
// values.
func (ix *Index) Weight() {
	for i := range ix.magnitudes {
		ix.magnitudes[i] = 0
	}
	for term, list := range ix.terms {
		idf := float32(math.Log2(1 + float64(ix.totalDocs)/float64(len(list))))
		ix.idf[term] = idf
		for i := range list {
			w := list[i].TF * idf
			ix.magnitudes[list[i].DocID] += w * w
		}
	}
	for i := range ix.magnitudes {
		ix.magnitudes[i] = float32(math.Sqrt(float64(ix.magnitudes[i])))
	}
}

// Postings returns the postings list for term and whether the term exists.
func (ix *Index) Postings(term string) (PostingList, bool) {
	list, ok := ix.terms[term]
	return list, ok
}

// IDF returns the inverse document frequency of term and whether the term
// exists.
func (ix *Index) IDF(term string) (float32, bool) {
	v, ok := ix.idf[term]
	return v, ok
}

// Magnitude returns the Euclidean norm of the document's TF·IDF vector.
// Zero exactly when the document is empty after tokenization.
func (ix *Index) Magnitude(docID int) float32 {
	return ix.magnitudes[docID]
}

// MaxFreq returns the highest term frequency in the document.
func (ix *Index) MaxFreq(docID int) int {
	return ix.docMaxFreq[docID]
}

// TotalDocs returns the corpus size N.
func (ix *Index) TotalDocs() int {
	return ix.totalDocs
}

// TermCount returns the number of distinct terms.
func (ix *Index) TermCount() int {
	return len(ix.terms)
}

// Terms returns the sorted vocabulary.
func (ix *Index) Terms() []string {
	terms := make([]string, 0, len(ix.terms))
	for term := range ix.terms {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Dump writes a human-readable listing of the whole index, term by term and
// document by document. Debugging aid.
func (ix *Index) Dump(w io.Writer) {
	for _, term := range ix.Terms() {
		fmt.Fprintf(w, "term: %s  idf: %g\n", term, ix.idf[term])
		for _, p := range ix.terms[term] {
			fmt.Fprintf(w, "  doc %d  freq %d  tf %g  positions %v\n",
				p.DocID, p.Freq, p.TF, p.Positions)
		}
	}
	for d := 0; d < ix.totalDocs; d++ {
		fmt.Fprintf(w, "doc %d  maxFreq %d  magnitude %g\n",
			d, ix.docMaxFreq[d], ix.magnitudes[d])
	}
}
