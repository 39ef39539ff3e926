package scheduler

import (
	"context"
	"errors"
	"fmt"

	"filmdecks_backend/platform/config"
	"filmdecks_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// EnrichmentRunner performs one enrichment run. Tasks for leads that no
// longer exist complete instead of being archived.
type EnrichmentRunner interface {
	Run(ctx context.Context, leadID uuid.UUID) error
	IsNotFound(err error) bool
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner EnrichmentRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner EnrichmentRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := newWorker(runner, log)
	w.server = server
	return w, nil
}

func newWorker(runner EnrichmentRunner, log *logger.Logger) *Worker {
	mux := asynq.NewServeMux()
	w := &Worker{
		mux:    mux,
		runner: runner,
		log:    log,
	}
	mux.HandleFunc(TaskLeadEnrich, w.handleLeadEnrich)
	return w
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleLeadEnrich(ctx context.Context, task *asynq.Task) error {
	leadID, err := ParseLeadEnrichPayload(task)
	if err != nil {
		// A malformed payload will never succeed.
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	err = w.runner.Run(ctx, leadID)
	if err == nil || w.runner.IsNotFound(err) {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
}
