package ranker

import (
	"reflect"
	"testing"
)

func TestTopKOrdersByDescendingScore(t *testing.T) {
	scores := map[int]float32{
		0: 0.5,
		1: 2.0,
		2: 1.5,
		3: 0.1,
	}
	got := TopK(scores, 3)
	want := []ScoredDoc{
		{DocID: 1, Score: 2.0},
		{DocID: 2, Score: 1.5},
		{DocID: 0, Score: 0.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK = %v, want %v", got, want)
	}
}

func TestTopKZero(t *testing.T) {
	scores := map[int]float32{0: 1.0}
	if got := TopK(scores, 0); len(got) != 0 {
		t.Errorf("TopK(k=0) = %v, want empty", got)
	}
}

func TestTopKLargerThanMap(t *testing.T) {
	scores := map[int]float32{0: 1.0, 1: 3.0}
	got := TopK(scores, 10)
	want := []ScoredDoc{
		{DocID: 1, Score: 3.0},
		{DocID: 0, Score: 1.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK = %v, want %v", got, want)
	}
}

func TestTopKEmptyScores(t *testing.T) {
	if got := TopK(map[int]float32{}, 5); len(got) != 0 {
		t.Errorf("TopK over empty map = %v, want empty", got)
	}
}

func TestTopKEqualScores(t *testing.T) {
	scores := map[int]float32{5: 1.0, 2: 1.0, 9: 1.0}
	got := TopK(scores, 2)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	// Equal scores come out in ascending docID order.
	want := []ScoredDoc{
		{DocID: 2, Score: 1.0},
		{DocID: 5, Score: 1.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK = %v, want %v", got, want)
	}
}

func TestTopKSelectsHighestAmongMany(t *testing.T) {
	scores := make(map[int]float32, 100)
	for i := 0; i < 100; i++ {
		scores[i] = float32(i)
	}
	got := TopK(scores, 5)
	for i, doc := range got {
		wantID := 99 - i
		if doc.DocID != wantID {
			t.Errorf("rank %d: docID = %d, want %d", i+1, doc.DocID, wantID)
		}
	}
}
