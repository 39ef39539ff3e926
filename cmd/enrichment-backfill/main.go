// Command enrichment-backfill runs enrichment for leads left pending, for
// example after a restart interrupted in-process runs.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
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

	"github.com/google/uuid"
)

func main() {
	olderThan := flag.Duration("older-than", 30*time.Minute, "only leads created at least this long ago")
	limit := flag.Int("limit", 50, "leads fetched per batch")
	pace := flag.Duration("pace", 300*time.Millisecond, "delay between engine calls")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting enrichment backfill", "olderThan", olderThan.String(), "limit", *limit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)
	defer eventBus.Wait()

	repo := repository.New(pool)
	notifier := notification.New(sender, cfg, log, nil)

	var opts []enrichment.Option
	if cfg.GetRedisURL() != "" {
		rdb, err := scheduler.NewRedisClient(cfg)
		if err != nil {
			log.Error("failed to initialize redis client", "error", err)
			panic("failed to initialize redis client: " + err.Error())
		}
		defer func() { _ = rdb.Close() }()
		opts = append(opts, enrichment.WithGuard(enrichment.NewRedisGuard(rdb, cfg.GetAnalysisTimeout()+5*time.Minute)))
	}
	if cfg.IsMinIOEnabled() {
		storageSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		opts = append(opts, enrichment.WithArchive(storageSvc, cfg.GetMinioBucketAnalyses()))
	}

	module := leadenrichment.NewModule(repo, notifier, eventBus, cfg, log, opts...)
	if !module.Enabled() {
		log.Warn("ANALYSIS_ENGINE_URL not configured, skipping backfill")
		return
	}
	svc := module.Service()

	cutoff := time.Now().Add(-*olderThan)
	seen := make(map[uuid.UUID]struct{})
	var processed, failed int

	for ctx.Err() == nil {
		leads, err := repo.ListPendingEnrichment(ctx, cutoff, *limit)
		if err != nil {
			log.Error("failed to list pending leads", "error", err)
			break
		}

		fresh := 0
		for _, lead := range leads {
			if _, ok := seen[lead.ID]; ok {
				continue
			}
			seen[lead.ID] = struct{}{}
			fresh++
			processed++

			if err := svc.Run(ctx, lead.ID); err != nil {
				failed++
				log.Error("failed to backfill lead enrichment", "leadId", lead.ID.String(), "error", err)
			}

			select {
			case <-ctx.Done():
			case <-time.After(*pace):
			}
		}

		// Leads held by another process stay pending; stop once a batch has
		// nothing new.
		if fresh == 0 {
			break
		}
	}

	log.Info("enrichment backfill completed", "processed", processed, "failed", failed)
}
