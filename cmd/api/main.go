package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filmdecks_backend/internal/adapters/storage"
	"filmdecks_backend/internal/email"
	"filmdecks_backend/internal/events"
	apphttp "filmdecks_backend/internal/http"
	"filmdecks_backend/internal/http/router"
	"filmdecks_backend/internal/leadenrichment"
	enrichment "filmdecks_backend/internal/leadenrichment/service"
	"filmdecks_backend/internal/leads"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/materials"
	"filmdecks_backend/internal/notification"
	"filmdecks_backend/internal/scheduler"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/db"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"
	"filmdecks_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

// guardSlack keeps the shared in-flight key alive a little past the engine
// timeout.
const guardSlack = 5 * time.Minute

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, bucket string) {
	if err := withRetry(ctx, log, "ensure "+bucket+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipelineMetrics := metrics.NewPipelineMetrics(registry)

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, minioSvc, cfg.GetMinioBucketMaterials())
		ensureBucket(ctx, log, minioSvc, cfg.GetMinioBucketAnalyses())
		storageSvc = minioSvc
		log.Info("storage service initialized",
			"materialsBucket", cfg.GetMinioBucketMaterials(),
			"analysesBucket", cfg.GetMinioBucketAnalyses(),
		)
	} else {
		log.Warn("MINIO_ENDPOINT not configured; material uploads and analysis archive disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notifier := notification.New(sender, cfg, log, pipelineMetrics)
	leadRepo := repository.New(pool)

	leadsModule := leads.NewModule(leadRepo, eventBus, val, notifier, cfg, log, pipelineMetrics)

	enrichmentOpts, closeEnrichment := enrichmentOptions(cfg, storageSvc, pipelineMetrics, log)
	defer closeEnrichment()
	enrichmentModule := leadenrichment.NewModule(leadRepo, notifier, eventBus, cfg, log, enrichmentOpts...)
	enrichmentModule.RegisterHandlers(eventBus)

	var uploader materials.Uploader
	if storageSvc != nil {
		uploader = storageSvc
	}
	materialsModule := materials.NewModule(uploader, cfg.GetMinioBucketMaterials(), val)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Health:  db.NewPoolAdapter(pool),
		Metrics: registry,
		Modules: []apphttp.Module{
			leadsModule,
			materialsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		// Let in-process enrichment runs finish writing their results.
		eventBus.Wait()
		enrichmentModule.Service().Wait()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// enrichmentOptions picks the guard, dispatch and archive for the
// enrichment service from configuration.
func enrichmentOptions(cfg *config.Config, storageSvc storage.StorageService, m *metrics.PipelineMetrics, log *logger.Logger) ([]enrichment.Option, func()) {
	opts := []enrichment.Option{enrichment.WithMetrics(m)}
	var closers []func()

	if cfg.GetRedisURL() != "" {
		rdb, err := scheduler.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		opts = append(opts, enrichment.WithGuard(enrichment.NewRedisGuard(rdb, cfg.GetAnalysisTimeout()+guardSlack)))
		closers = append(closers, func() { _ = rdb.Close() })
	}

	if cfg.GetEnrichmentDispatchMode() == config.DispatchQueue {
		client, err := scheduler.NewClient(cfg, cfg.GetAnalysisTimeout()+guardSlack)
		if err != nil {
			log.Error("failed to initialize scheduler client", "error", err)
			panic("failed to initialize scheduler client: " + err.Error())
		}
		opts = append(opts, enrichment.WithQueue(client))
		closers = append(closers, func() { _ = client.Close() })
		log.Info("lead enrichment dispatched to queue", "queue", cfg.GetAsynqQueueName())
	}

	if storageSvc != nil {
		opts = append(opts, enrichment.WithArchive(storageSvc, cfg.GetMinioBucketAnalyses()))
	}

	return opts, func() {
		for _, c := range closers {
			c()
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
