package scheduler

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"filmdecks_backend/platform/config"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// taskRetention keeps finished tasks visible so a repeated enqueue for the
// same lead is rejected as a duplicate.
const taskRetention = 24 * time.Hour

type Client struct {
	client      *asynq.Client
	queue       string
	taskTimeout time.Duration
}

// NewClient connects to the asynq Redis. taskTimeout bounds one run and
// should exceed the analysis engine timeout.
func NewClient(cfg config.SchedulerConfig, taskTimeout time.Duration) (*Client, error) {
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

	if taskTimeout <= 0 {
		taskTimeout = 30 * time.Minute
	}

	return &Client{
		client:      asynq.NewClient(opt),
		queue:       queue,
		taskTimeout: taskTimeout,
	}, nil
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueLeadEnrichment queues one analysis run. The task id is derived
// from the lead so a lead already waiting in the queue is not added twice.
func (c *Client) EnqueueLeadEnrichment(ctx context.Context, leadID uuid.UUID) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("scheduler client not configured")
	}

	task, err := NewLeadEnrichTask(leadID)
	if err != nil {
		return err
	}

	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(c.queue),
		asynq.TaskID("enrich:"+leadID.String()),
		asynq.Timeout(c.taskTimeout),
		asynq.Retention(taskRetention),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}

// NewRedisClient opens a plain Redis client on the scheduler's Redis, used
// for state shared between the API and worker processes.
func NewRedisClient(cfg config.SchedulerConfig) (*redis.Client, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}
	opt, err := parseRedisURL(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func redisClientOpt(redisURL string, tlsInsecure bool) (asynq.RedisClientOpt, error) {
	opt, err := parseRedisURL(redisURL, tlsInsecure)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: opt.TLSConfig,
	}, nil
}

func parseRedisURL(redisURL string, tlsInsecure bool) (*redis.Options, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	if opt.TLSConfig != nil {
		clone := opt.TLSConfig.Clone()
		if tlsInsecure {
			clone.InsecureSkipVerify = true
		}
		opt.TLSConfig = clone
	} else if tlsInsecure {
		opt.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return opt, nil
}
