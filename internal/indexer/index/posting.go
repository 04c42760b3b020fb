package index

// Posting records one (term, document) pair: how often the term occurs in
// the document, its normalised term frequency, and the word offsets at which
// it appears. Freq always equals len(Positions).
type Posting struct {
	DocID     int
	Freq      int
	TF        float32
	Positions []int
}

// PostingList holds all postings for a single term. During shard
// construction the list is ordered by first-seen docID; after the merge it
// is the concatenation of the shards' lists.
type PostingList []Posting
