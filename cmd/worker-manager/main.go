// cmd/worker-manager/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"matching-workers/internal/api"
	"matching-workers/internal/common/camunda"
	"matching-workers/internal/common/config"
	"matching-workers/internal/common/database"
	"matching-workers/internal/common/logger"
	"matching-workers/internal/common/metrics"
	"matching-workers/internal/common/observability"
	"matching-workers/internal/common/validation"
	"matching-workers/internal/matching"
	"matching-workers/internal/providers"
	"matching-workers/pkg/registry"

	cms "matching-workers/internal/workers/matching/calculate-match-score"
	fbm "matching-workers/internal/workers/matching/find-best-matches"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting matching worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("metrics exporter unavailable", zap.Error(err))
	}
	tracing, err := observability.NewTracing(cfg.Tracing.Enabled, cfg.Tracing.JaegerEndpoint, cfg.Tracing.ServiceName, cfg.App.Version)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	ctx := context.Background()

	// --- Matching engine ---
	tables := matching.DefaultTables()
	if path := cfg.Matching.ReferenceTablesPath; path != "" {
		tables, err = matching.LoadTables(path)
		if err != nil {
			zapLog.Fatal("reference tables invalid", zap.String("path", path), zap.Error(err))
		}
		zapLog.Info("reference tables loaded", zap.String("path", path))
	}

	engine, err := matching.NewEngine(tables,
		matching.WithLogger(log),
		matching.WithRecorder(metrics.NewMatchingRecorder()),
		matching.WithTracer(tracing.Tracer()),
		matching.WithSlowRankingThreshold(config.GetDuration(cfg.Matching.SlowRankingMs)),
	)
	if err != nil {
		zapLog.Fatal("matching engine init failed", zap.Error(err))
	}

	reg, err := registry.Default()
	if err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	validator, err := validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("schema compile failed", zap.Error(err))
	}

	pingers := map[string]database.Pinger{}

	// --- Data stores (all optional) ---
	var (
		jobStore    providers.JobStore
		workerStore providers.WorkerStore
		pool        *providers.CandidatePool
	)

	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		pingers["postgres"] = pg
		jobStore = providers.NewPostgresJobStore(pg.GetDB())
		workerStore = providers.NewPostgresWorkerStore(pg.GetDB())
	}

	if cfg.Database.Redis.Enabled() && workerStore != nil {
		var rdb *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			rdb, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		pingers["redis"] = rdb
		ttl := time.Duration(cfg.Matching.CandidateCacheTTL) * time.Second
		workerStore = providers.NewCachedWorkerStore(workerStore, rdb.GetClient(), ttl, log)
	}

	if cfg.Database.Elasticsearch.Enabled() && workerStore != nil {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		if err := esClient.CheckIndex(ctx, cfg.Matching.CandidateIndex); err != nil {
			zapLog.Fatal("candidate index unavailable", zap.String("index", cfg.Matching.CandidateIndex), zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		pingers["elasticsearch"] = esClient
		search := providers.NewElasticsearchCandidateSearch(esClient.Client, cfg.Matching.CandidateIndex)
		pool = providers.NewCandidatePool(search, workerStore, cfg.Matching.CandidatePoolSize, log)
	}

	var (
		workerSource fbm.CandidateSource
		httpSource   api.CandidateSource
	)
	if pool != nil {
		workerSource, httpSource = pool, pool
	}

	defaults := matching.Options{
		MinimumScore: cfg.Matching.MinimumScore,
		MaxResults:   cfg.Matching.MaxResults,
		Concurrency:  cfg.Matching.Concurrency,
	}

	// --- Zeebe workers ---
	var (
		zeebe   *camunda.Client
		workers []*camunda.Worker
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(ctx, camunda.ClientConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")
		pingers["zeebe"] = zeebe

		if config.IsWorkerEnabled(cfg, fbm.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, fbm.TaskType)
			handler := fbm.NewHandler(fbm.LoadConfig(cfg.Matching, wcfg), engine, jobStore, workerSource, validator, obs, log)
			workers = append(workers, camunda.Start(zeebe.GetClient(), fbm.TaskType, wcfg, handler, zapLog))
		}

		if config.IsWorkerEnabled(cfg, cms.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, cms.TaskType)
			handler := cms.NewHandler(cms.LoadConfig(wcfg), engine, workerStore, validator, obs, log)
			workers = append(workers, camunda.Start(zeebe.GetClient(), cms.TaskType, wcfg, handler, zapLog))
		}

		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API, health and metrics ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := api.NewServer(api.Config{
		RequestTimeout: config.GetDuration(cfg.HTTP.RequestTimeout),
		CORSOrigins:    cfg.HTTP.CORSOrigins,
		Defaults:       defaults,
	}, engine, httpSource, validator, pingers, obs, log)

	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
		zapLog.Info("Worker stopped", zap.String("taskType", w.TaskType()))
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	if err := tracing.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error flushing traces", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping metrics", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}
