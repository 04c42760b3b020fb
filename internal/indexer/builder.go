// Package indexer builds the in-memory retrieval index: worker-owned shards
// fed from a shared document source, a single-threaded merge, and the TF·IDF
// weighting passes.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/quaero-search/quaero/internal/corpus"
	"github.com/quaero-search/quaero/internal/indexer/index"
	qerrors "github.com/quaero-search/quaero/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Build constructs the weighted global index from src using the given number
// of workers (zero means one per CPU). Each worker owns one shard and pulls
// documents by contention on the source, so any worker may receive any
// document, but every document goes to exactly one shard and each shard
// sees its documents in increasing docID order.
//
// A panic inside a worker is recovered and surfaced as an error after all
// peers have finished.
func Build(ctx context.Context, src corpus.DocumentSource, workers int) (*index.Index, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	totalDocs := src.TotalDocs()
	logger := slog.Default().With("component", "index-builder")
	logger.Info("build started", "total_docs", totalDocs, "workers", workers)

	shards := make([]*index.Shard, workers)
	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		shard := index.NewShard(totalDocs)
		shards[i] = shard
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", qerrors.ErrWorkerPanic, r)
				}
			}()
			for {
				doc, ok := src.Next()
				if !ok {
					break
				}
				shard.Ingest(doc.ID, doc.Text)
			}
			shard.FinalizeMaxFreq()
			shard.FinalizeTF()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("document source: %w", err)
	}

	ix := index.New(totalDocs)
	for _, shard := range shards {
		ix.Merge(shard)
	}
	ix.Weight()
	logger.Info("build complete", "terms", ix.TermCount())
	return ix, nil
}
