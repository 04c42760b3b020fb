package index

import (
	"math"
	"reflect"
	"testing"
)

// fourDocs is the small corpus used across the weighting tests.
var fourDocs = []string{
	"the quick brown fox",
	"the quick brown dog",
	"lazy dog sleeps",
	"QUICK QUICK quick",
}

func buildIndex(docs []string) *Index {
	s := NewShard(len(docs))
	for i, doc := range docs {
		s.Ingest(i, doc)
	}
	s.FinalizeMaxFreq()
	s.FinalizeTF()
	ix := New(len(docs))
	ix.Merge(s)
	ix.Weight()
	return ix
}

func approx(t *testing.T, name string, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > 1e-3*math.Max(1, math.Abs(float64(want))) {
		t.Errorf("%s = %g, want %g", name, got, want)
	}
}

func TestMergeIntoEmptyEqualsSource(t *testing.T) {
	build := func() *Shard {
		s := NewShard(3)
		s.Ingest(0, "red green")
		s.Ingest(1, "green green blue")
		s.Ingest(2, "blue")
		s.FinalizeMaxFreq()
		s.FinalizeTF()
		return s
	}
	src := build()
	want := build()

	ix := New(3)
	ix.Merge(src)

	for _, term := range []string{"red", "green", "blue"} {
		got, ok := ix.Postings(term)
		if !ok {
			t.Fatalf("term %q missing after merge", term)
		}
		if !reflect.DeepEqual(got, want.Postings(term)) {
			t.Errorf("term %q: merged postings %v, want %v", term, got, want.Postings(term))
		}
	}
	for d := 0; d < 3; d++ {
		if ix.MaxFreq(d) != want.MaxFreq(d) {
			t.Errorf("maxFreq[%d] = %d, want %d", d, ix.MaxFreq(d), want.MaxFreq(d))
		}
	}
	if src.TermCount() != 0 {
		t.Errorf("source shard still holds %d terms after merge", src.TermCount())
	}
}

func TestMergeConcatenatesDestinationFirst(t *testing.T) {
	s0 := NewShard(4)
	s0.Ingest(0, "shared alpha")
	s0.Ingest(1, "shared")
	s1 := NewShard(4)
	s1.Ingest(2, "shared beta")
	s1.Ingest(3, "shared")
	for _, s := range []*Shard{s0, s1} {
		s.FinalizeMaxFreq()
		s.FinalizeTF()
	}

	ix := New(4)
	ix.Merge(s0)
	ix.Merge(s1)

	list, ok := ix.Postings("shared")
	if !ok || len(list) != 4 {
		t.Fatalf("shared: got %d postings, want 4", len(list))
	}
	gotOrder := []int{list[0].DocID, list[1].DocID, list[2].DocID, list[3].DocID}
	wantOrder := []int{0, 1, 2, 3}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("shared docID order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestMergeTransfersMaxFreq(t *testing.T) {
	s0 := NewShard(4)
	s0.Ingest(0, "x x x")
	s1 := NewShard(4)
	s1.Ingest(3, "y y")
	for _, s := range []*Shard{s0, s1} {
		s.FinalizeMaxFreq()
		s.FinalizeTF()
	}

	ix := New(4)
	ix.Merge(s0)
	ix.Merge(s1)

	want := []int{3, 0, 0, 2}
	for d, w := range want {
		if got := ix.MaxFreq(d); got != w {
			t.Errorf("maxFreq[%d] = %d, want %d", d, got, w)
		}
	}
}

func TestWeightIDF(t *testing.T) {
	ix := buildIndex(fourDocs)

	tests := []struct {
		term string
		idf  float32
	}{
		{"quick", 1.2224}, // df 3 of 4
		{"the", 1.5850},   // df 2 of 4
		{"fox", 2.3219},   // df 1 of 4
		{"dog", 1.5850},
		{"lazy", 2.3219},
	}
	for _, tt := range tests {
		got, ok := ix.IDF(tt.term)
		if !ok {
			t.Fatalf("idf(%q) missing", tt.term)
		}
		approx(t, "idf("+tt.term+")", got, tt.idf)
	}
	if _, ok := ix.IDF("zzz"); ok {
		t.Error("idf of unknown term should be absent")
	}
}

func TestWeightIDFTermInEveryDocument(t *testing.T) {
	ix := buildIndex([]string{"common a", "common b", "common c"})
	got, ok := ix.IDF("common")
	if !ok {
		t.Fatal("idf(common) missing")
	}
	if got != 1.0 {
		t.Errorf("idf of term in every document = %g, want 1", got)
	}
}

func TestWeightMagnitudes(t *testing.T) {
	ix := buildIndex(fourDocs)

	want := []float32{3.4511, 3.0051, 3.6462, 1.2224}
	for d, w := range want {
		approx(t, "magnitude", ix.Magnitude(d), w)
	}
}

// Magnitudes must equal the square root of the sum over all terms of
// (tf·idf)², recomputed here independently from the postings.
func TestWeightMagnitudeMatchesPostings(t *testing.T) {
	ix := buildIndex(fourDocs)

	sums := make([]float64, ix.TotalDocs())
	for _, term := range ix.Terms() {
		list, _ := ix.Postings(term)
		idf, _ := ix.IDF(term)
		for _, p := range list {
			w := float64(p.TF) * float64(idf)
			sums[p.DocID] += w * w
		}
	}
	for d := 0; d < ix.TotalDocs(); d++ {
		got := float64(ix.Magnitude(d)) * float64(ix.Magnitude(d))
		if math.Abs(got-sums[d]) > 1e-5*math.Max(1, sums[d]) {
			t.Errorf("magnitude[%d]² = %g, want %g", d, got, sums[d])
		}
	}
}

func TestWeightEmptyDocumentZeroMagnitude(t *testing.T) {
	ix := buildIndex([]string{"..."})
	if got := ix.Magnitude(0); got != 0 {
		t.Errorf("magnitude of empty document = %g, want 0", got)
	}
	if got := ix.MaxFreq(0); got != 0 {
		t.Errorf("maxFreq of empty document = %d, want 0", got)
	}
}

func TestWeightIdempotent(t *testing.T) {
	ix := buildIndex(fourDocs)

	idfBefore := make(map[string]float32)
	for _, term := range ix.Terms() {
		idfBefore[term], _ = ix.IDF(term)
	}
	magBefore := make([]float32, ix.TotalDocs())
	for d := range magBefore {
		magBefore[d] = ix.Magnitude(d)
	}

	ix.Weight()

	for term, before := range idfBefore {
		after, _ := ix.IDF(term)
		if after != before {
			t.Errorf("idf(%q) changed on re-weight: %g -> %g", term, before, after)
		}
	}
	for d, before := range magBefore {
		approx(t, "re-weighted magnitude", ix.Magnitude(d), before)
	}
}
