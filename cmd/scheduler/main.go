package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filmdecks_backend/internal/adapters/storage"
	"filmdecks_backend/internal/email"
	"filmdecks_backend/internal/events"
	"filmdecks_backend/internal/leadenrichment"
	enrichment "filmdecks_backend/internal/leadenrichment/service"
	"filmdecks_backend/internal/leads/repository"
	"filmdecks_backend/internal/notification"
	"filmdecks_backend/internal/scheduler"
	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/db"
	"filmdecks_backend/platform/logger"
	"filmdecks_backend/platform/metrics"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const guardSlack = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	pipelineMetrics := metrics.NewPipelineMetrics(prometheus.DefaultRegisterer)
	if addr := strings.TrimSpace(os.Getenv("WORKER_METRICS_ADDR")); addr != "" {
		go serveMetrics(ctx, addr, log)
	}
	notifier := notification.New(sender, cfg, log, pipelineMetrics)
	leadRepo := repository.New(pool)

	opts := []enrichment.Option{enrichment.WithMetrics(pipelineMetrics)}

	rdb, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()
	opts = append(opts, enrichment.WithGuard(enrichment.NewRedisGuard(rdb, cfg.GetAnalysisTimeout()+guardSlack)))

	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		opts = append(opts, enrichment.WithArchive(storageSvc, cfg.GetMinioBucketAnalyses()))
	}

	// The worker runs enrichment in-process; it never enqueues.
	enrichmentModule := leadenrichment.NewModule(leadRepo, notifier, eventBus, cfg, log, opts...)
	if !enrichmentModule.Enabled() {
		log.Warn("ANALYSIS_ENGINE_URL not configured; queued enrichment tasks will fail")
	}

	client, err := scheduler.NewClient(cfg, cfg.GetAnalysisTimeout()+guardSlack)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	sweepInterval := getDurationEnv("PENDING_SWEEP_INTERVAL", 15*time.Minute)
	sweepAge := getDurationEnv("PENDING_SWEEP_MIN_AGE", 30*time.Minute)
	sweep := scheduler.NewPendingSweep(leadRepo, client, log, sweepInterval, sweepAge)
	go sweep.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, enrichmentModule.Service(), log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("scheduler stopped")
}

func serveMetrics(ctx context.Context, addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("worker metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("worker metrics server stopped", "error", err)
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}

	return parsed
}
