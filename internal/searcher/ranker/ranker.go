// Package ranker selects the top-k scored documents from a similarity map.
package ranker

import "container/heap"

// ScoredDoc is one ranked result.
type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float32 `json:"score"`
}

// TopK returns the k highest-scoring documents in descending score order,
// using a bounded min-heap so only k entries are ever kept. Equal scores
// come out in ascending docID order. k of zero returns an empty list; k
// larger than the map returns everything.
func TopK(scores map[int]float32, k int) []ScoredDoc {
	if k <= 0 || len(scores) == 0 {
		return []ScoredDoc{}
	}
	h := make(scoredDocHeap, 0, k+1)
	for docID, score := range scores {
		heap.Push(&h, ScoredDoc{DocID: docID, Score: score})
		if h.Len() > k {
			heap.Pop(&h)
		}
	}
	result := make([]ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(&h).(ScoredDoc)
	}
	return result
}

type scoredDocHeap []ScoredDoc

func (h scoredDocHeap) Len() int { return len(h) }

func (h scoredDocHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[i].DocID > h[j].DocID
}

func (h scoredDocHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	*h = append(*h, x.(ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
