package index

import (
	"github.com/quaero-search/quaero/internal/indexer/tokenizer"
)

// Shard is a partial inverted index over a disjoint subset of documents.
// Exactly one worker owns a shard during the build phase; finished shards
// are consumed by Index.Merge.
type Shard struct {
	terms      map[string]PostingList
	docMaxFreq []int
}

// NewShard creates an empty shard sized for a corpus of totalDocs documents.
func NewShard(totalDocs int) *Shard {
	return &Shard{
		terms:      make(map[string]PostingList),
		docMaxFreq: make([]int, totalDocs),
	}
}

// Ingest tokenizes one document line and adds every token to the shard.
// Documents must arrive in strictly increasing docID order: Ingest only
// inspects the last posting of a term's list, so a document already present
// there is the one currently being ingested.
func (s *Shard) Ingest(docID int, line string) {
	for _, tok := range tokenizer.Tokenize(line) {
		list := s.terms[tok.Term]
		if n := len(list); n > 0 && list[n-1].DocID == docID {
			p := &list[n-1]
			p.Freq++
			p.Positions = append(p.Positions, tok.Position)
			continue
		}
		s.terms[tok.Term] = append(list, Posting{
			DocID:     docID,
			Freq:      1,
			Positions: []int{tok.Position},
		})
	}
}

// FinalizeMaxFreq records, for every document this shard owns, the highest
// term frequency observed in that document. Call after the last Ingest.
func (s *Shard) FinalizeMaxFreq() {
	for _, list := range s.terms {
		for _, p := range list {
			if p.Freq > s.docMaxFreq[p.DocID] {
				s.docMaxFreq[p.DocID] = p.Freq
			}
		}
	}
}

// FinalizeTF sets every posting's TF to freq/docMaxFreq. Valid only after
// FinalizeMaxFreq. The shard's own counts suffice because each document
// belongs to exactly one shard.
func (s *Shard) FinalizeTF() {
	for _, list := range s.terms {
		for i := range list {
			p := &list[i]
			p.TF = float32(p.Freq) / float32(s.docMaxFreq[p.DocID])
		}
	}
}

// Postings returns the shard's postings list for term, or nil.
func (s *Shard) Postings(term string) PostingList {
	return s.terms[term]
}

// MaxFreq returns the highest term frequency recorded for docID.
func (s *Shard) MaxFreq(docID int) int {
	return s.docMaxFreq[docID]
}

// TermCount returns the number of distinct terms in the shard.
func (s *Shard) TermCount() int {
	return len(s.terms)
}
