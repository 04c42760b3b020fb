package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/quaero-search/quaero/internal/analytics"
	"github.com/quaero-search/quaero/internal/corpus"
	"github.com/quaero-search/quaero/internal/indexer"
	"github.com/quaero-search/quaero/internal/indexer/index"
	"github.com/quaero-search/quaero/internal/output"
	"github.com/quaero-search/quaero/internal/searcher/cache"
	"github.com/quaero-search/quaero/internal/searcher/executor"
	"github.com/quaero-search/quaero/internal/searcher/parser"
	"github.com/quaero-search/quaero/pkg/config"
	qerrors "github.com/quaero-search/quaero/pkg/errors"
	"github.com/quaero-search/quaero/pkg/health"
	"github.com/quaero-search/quaero/pkg/kafka"
	"github.com/quaero-search/quaero/pkg/logger"
	"github.com/quaero-search/quaero/pkg/metrics"
	"github.com/quaero-search/quaero/pkg/postgres"
	pkgredis "github.com/quaero-search/quaero/pkg/redis"
	"github.com/quaero-search/quaero/pkg/resilience"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	docsPath := flag.String("docs", "", "documents file, first line is the document count (overrides config)")
	queriesPath := flag.String("queries", "", "queries file, first line is the query count (overrides config)")
	workers := flag.Int("workers", 0, "worker count, overrides config when positive (a configured 0 means one per CPU)")
	dumpIndex := flag.Bool("dump-index", false, "print the weighted index after the build")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *docsPath != "" {
		cfg.Engine.DocumentsPath = *docsPath
	}
	if *queriesPath != "" {
		cfg.Engine.QueriesPath = *queriesPath
	}
	if *workers > 0 {
		cfg.Engine.Workers = *workers
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting quaero", "source", cfg.Engine.Source, "workers", cfg.Engine.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()
	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, checker)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	docs, closeDocs, err := openDocumentSource(ctx, cfg)
	if err != nil {
		fatal(err)
	}
	defer closeDocs()
	slog.Info("total documents", "count", docs.TotalDocs())

	buildStart := time.Now()
	idx, err := indexer.Build(ctx, docs, cfg.Engine.Workers)
	if err != nil {
		fatal(err)
	}
	buildDuration := time.Since(buildStart)
	m.DocsIndexedTotal.Add(float64(idx.TotalDocs()))
	m.IndexTerms.Set(float64(idx.TermCount()))
	m.IndexBuildDuration.Set(buildDuration.Seconds())
	slog.Info("index created", "duration", buildDuration, "terms", idx.TermCount())
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		return health.ComponentHealth{
			Status:  health.StatusUp,
			Message: fmt.Sprintf("%d terms over %d documents", idx.TermCount(), idx.TotalDocs()),
		}
	})

	if *dumpIndex {
		idx.Dump(os.Stdout)
	}

	var queryCache *cache.QueryCache
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, query caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			queryCache = cache.New(redisClient, cfg.Redis)
			checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
				if err := redisClient.Ping(ctx); err != nil {
					return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
				}
				return health.ComponentHealth{Status: health.StatusUp}
			})
			slog.Info("query cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	var collector *analytics.Collector
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.AnalyticsTopic)
		defer producer.Close()
		collector = analytics.NewCollector(producer, 10000)
		collector.Start(ctx)
		defer collector.Close()
		slog.Info("analytics collector started", "topic", cfg.Kafka.AnalyticsTopic)
	}

	queries, err := corpus.OpenQueries(cfg.Engine.QueriesPath)
	if err != nil {
		fatal(err)
	}
	defer queries.Close()
	slog.Info("total queries", "count", queries.TotalQueries())

	queryStart := time.Now()
	if err := runQueries(ctx, idx, queries, cfg.Engine.Workers, queryCache, collector, m); err != nil {
		fatal(err)
	}
	if queryCache != nil {
		hits, misses := queryCache.Stats()
		m.CacheHitsTotal.Add(float64(hits))
		m.CacheMissesTotal.Add(float64(misses))
		slog.Info("cache stats", "hits", hits, "misses", misses)
	}
	slog.Info("all queries answered", "duration", time.Since(queryStart))
}

// openDocumentSource opens the configured document stream and returns it
// with its cleanup function.
func openDocumentSource(ctx context.Context, cfg *config.Config) (corpus.DocumentSource, func(), error) {
	if cfg.Engine.Source == config.SourcePostgres {
		var client *postgres.Client
		err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{}, func() error {
			var err error
			client, err = postgres.New(cfg.Postgres)
			return err
		})
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", qerrors.ErrMissingInput, err)
		}
		src, err := corpus.OpenPostgresDocuments(ctx, client, cfg.Engine.DocumentsTable)
		if err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("%w: %v", qerrors.ErrMissingInput, err)
		}
		return src, func() {
			src.Close()
			client.Close()
		}, nil
	}
	src, err := corpus.OpenDocuments(cfg.Engine.DocumentsPath)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { src.Close() }, nil
}

// runQueries answers every query from the source with the given number of
// workers, emitting one output block per query. Malformed query lines are
// logged and skipped.
func runQueries(
	ctx context.Context,
	idx *index.Index,
	queries corpus.QuerySource,
	workers int,
	queryCache *cache.QueryCache,
	collector *analytics.Collector,
	m *metrics.Metrics,
) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	exec := executor.New(idx)
	writer := output.NewWriter(os.Stdout)
	log := slog.Default().With("component", "query-runner")

	g, _ := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", qerrors.ErrWorkerPanic, r)
				}
			}()
			for {
				line, ok := queries.Next()
				if !ok {
					return nil
				}
				q, err := parser.Parse(line)
				if err != nil {
					log.Warn("skipping malformed query", "line", line, "error", err)
					m.QueriesTotal.WithLabelValues("malformed").Inc()
					continue
				}
				start := time.Now()
				var res *executor.Result
				if queryCache != nil {
					res = queryCache.GetOrCompute(ctx, q.Normalized, q.K, func() *executor.Result {
						return exec.Execute(q)
					})
				} else {
					res = exec.Execute(q)
				}
				elapsed := time.Since(start)
				if err := writer.WriteResult(res); err != nil {
					return fmt.Errorf("writing result for query %d: %w", res.QueryID, err)
				}
				resultType := "hit"
				if len(res.Docs) == 0 {
					resultType = "zero_result"
				}
				m.QueriesTotal.WithLabelValues(resultType).Inc()
				m.QueryLatency.Observe(elapsed.Seconds())
				m.QueryResultsCount.Observe(float64(len(res.Docs)))
				if collector != nil {
					collector.Track(analytics.QueryEvent{
						QueryID:   q.ID,
						Query:     q.Text,
						K:         q.K,
						Results:   len(res.Docs),
						LatencyMs: float64(elapsed.Microseconds()) / 1000.0,
						Timestamp: time.Now().UTC(),
					})
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return queries.Err()
}

func fatal(err error) {
	slog.Error("fatal error", "error", err)
	os.Exit(qerrors.ExitCode(err))
}
