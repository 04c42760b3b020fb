package executor

import (
	"math"
	"testing"

	"github.com/quaero-search/quaero/internal/indexer/index"
	"github.com/quaero-search/quaero/internal/searcher/parser"
)

// The corpus behind all the scenario tests:
//
//	D0: "the quick brown fox"
//	D1: "the quick brown dog"
//	D2: "lazy dog sleeps"
//	D3: "QUICK QUICK quick"
func scenarioIndex() *index.Index {
	docs := []string{
		"the quick brown fox",
		"the quick brown dog",
		"lazy dog sleeps",
		"QUICK QUICK quick",
	}
	s := index.NewShard(len(docs))
	for i, doc := range docs {
		s.Ingest(i, doc)
	}
	s.FinalizeMaxFreq()
	s.FinalizeTF()
	ix := index.New(len(docs))
	ix.Merge(s)
	ix.Weight()
	return ix
}

func mustParse(t *testing.T, line string) *parser.Query {
	t.Helper()
	q, err := parser.Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q): %v", line, err)
	}
	return q
}

func docIDs(res *Result) []int {
	ids := make([]int, len(res.Docs))
	for i, d := range res.Docs {
		ids[i] = d.DocID
	}
	return ids
}

func approxScore(t *testing.T, name string, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Errorf("%s = %g, want %g", name, got, want)
	}
}

func TestExecuteQuickFox(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "0 2 quick fox"))

	if len(res.Docs) != 2 {
		t.Fatalf("got %d results %v, want 2", len(res.Docs), res.Docs)
	}
	// D0 contains both terms and ranks first; D3's perfect tf for
	// "quick" beats D1's diluted vector.
	if res.Docs[0].DocID != 0 || res.Docs[1].DocID != 3 {
		t.Errorf("ranking = %v, want [0 3]", docIDs(res))
	}
	approxScore(t, "score(D0)", res.Docs[0].Score, 1.9952)
	approxScore(t, "score(D3)", res.Docs[1].Score, 1.2224)
}

func TestExecuteSingleMatch(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "1 5 lazy"))

	if len(res.Docs) != 1 {
		t.Fatalf("got %d results %v, want 1", len(res.Docs), res.Docs)
	}
	if res.Docs[0].DocID != 2 {
		t.Errorf("docID = %d, want 2", res.Docs[0].DocID)
	}
	approxScore(t, "score(D2)", res.Docs[0].Score, 1.4786)
}

func TestExecuteRepeatedQueryTerm(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "2 3 the the the"))

	if len(res.Docs) != 2 {
		t.Fatalf("got %d results %v, want 2", len(res.Docs), res.Docs)
	}
	got := map[int]bool{res.Docs[0].DocID: true, res.Docs[1].DocID: true}
	if !got[0] || !got[1] {
		t.Errorf("result set = %v, want {0, 1}", docIDs(res))
	}
	// The raw token sequence is scored, so each of the three "the"
	// occurrences contributes: scores are three times the single-token
	// case.
	single := e.Execute(mustParse(t, "9 3 the"))
	for i := range res.Docs {
		var want float32
		for _, d := range single.Docs {
			if d.DocID == res.Docs[i].DocID {
				want = d.Score * 3
			}
		}
		approxScore(t, "tripled score", res.Docs[i].Score, want)
	}
}

func TestExecuteUnknownTerm(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "3 1 zzz"))
	if len(res.Docs) != 0 {
		t.Errorf("got %v, want no results", res.Docs)
	}
}

func TestExecuteKLargerThanMatches(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "4 10 quick"))

	if len(res.Docs) != 3 {
		t.Fatalf("got %d results %v, want 3", len(res.Docs), res.Docs)
	}
	if res.Docs[0].DocID != 3 {
		t.Errorf("rank 1 docID = %d, want 3", res.Docs[0].DocID)
	}
	// D1 and D0 share tf("quick") but D1's shorter vector (dog vs fox)
	// gives it the larger cosine.
	if res.Docs[1].DocID != 1 || res.Docs[2].DocID != 0 {
		t.Errorf("ranking = %v, want [3 1 0]", docIDs(res))
	}
	approxScore(t, "score(D3)", res.Docs[0].Score, 1.2224)
	approxScore(t, "score(D1)", res.Docs[1].Score, 0.4972)
	approxScore(t, "score(D0)", res.Docs[2].Score, 0.4330)
}

func TestExecuteZeroK(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "5 0 quick"))
	if len(res.Docs) != 0 {
		t.Errorf("k=0: got %v, want empty", res.Docs)
	}
}

func TestExecuteMixedKnownAndUnknownTerms(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "6 5 lazy zzz qqq"))
	// Unknown terms weigh zero and contribute nothing; the known term
	// still matches.
	if len(res.Docs) != 1 || res.Docs[0].DocID != 2 {
		t.Errorf("got %v, want only doc 2", docIDs(res))
	}
}

func TestExecuteEmptyQueryText(t *testing.T) {
	e := New(scenarioIndex())
	res := e.Execute(mustParse(t, "8 3 "))
	if len(res.Docs) != 0 {
		t.Errorf("got %v, want empty", res.Docs)
	}
}

func TestExecuteNeverReturnsEmptyDocuments(t *testing.T) {
	docs := []string{"word", "???"}
	s := index.NewShard(len(docs))
	for i, doc := range docs {
		s.Ingest(i, doc)
	}
	s.FinalizeMaxFreq()
	s.FinalizeTF()
	ix := index.New(len(docs))
	ix.Merge(s)
	ix.Weight()

	e := New(ix)
	res := e.Execute(mustParse(t, "0 10 word"))
	for _, d := range res.Docs {
		if d.DocID == 1 {
			t.Errorf("empty document ranked: %v", res.Docs)
		}
	}
}

func BenchmarkExecute(b *testing.B) {
	e := New(scenarioIndex())
	q, err := parser.Parse("0 3 quick brown dog")
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res := e.Execute(q)
		_ = res
	}
}
