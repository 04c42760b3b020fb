// Package output serialises ranked query results to a shared writer. A
// single mutex keeps each query's block contiguous; block order across
// queries is whatever order the workers finish in.
package output

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/quaero-search/quaero/internal/searcher/executor"
)

// Writer emits one block per query to an underlying io.Writer.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteResult emits one query's block: a header naming the query ID,
// requested k, and the normalised query text, then either a no-results
// marker or one line per ranked document.
func (w *Writer) WriteResult(res *executor.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Top-%d results of query %d:\"%s\"\n", res.K, res.QueryID, res.Normalized)
	if len(res.Docs) == 0 {
		b.WriteString("No results found!\n")
	}
	for i, doc := range res.Docs {
		fmt.Fprintf(&b, "%d:  DocID:%d    Score:%.4f\n", i+1, doc.DocID, doc.Score)
	}
	b.WriteString("\n")

	w.mu.Lock()
	defer w.mu.Unlock()
	_, err := io.WriteString(w.w, b.String())
	return err
}
