package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Guard keeps two runs for the same lead from overlapping.
type Guard interface {
	// Acquire reports whether the caller now owns the lead's run.
	Acquire(ctx context.Context, leadID uuid.UUID) (bool, error)
	Release(ctx context.Context, leadID uuid.UUID) error
}

// MemoryGuard is a process-local Guard.
type MemoryGuard struct {
	mu      sync.Mutex
	running map[uuid.UUID]struct{}
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{running: make(map[uuid.UUID]struct{})}
}

func (g *MemoryGuard) Acquire(_ context.Context, leadID uuid.UUID) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[leadID]; busy {
		return false, nil
	}
	g.running[leadID] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, leadID uuid.UUID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, leadID)
	return nil
}

// RedisGuard shares the in-flight set between the API and worker processes.
// Keys expire after ttl so a crashed run does not block the lead forever.
type RedisGuard struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

func NewRedisGuard(rdb redis.UniversalClient, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl, prefix: "filmdecks:enrichment:"}
}

func (g *RedisGuard) key(leadID uuid.UUID) string {
	return g.prefix + leadID.String()
}

func (g *RedisGuard) Acquire(ctx context.Context, leadID uuid.UUID) (bool, error) {
	return g.rdb.SetNX(ctx, g.key(leadID), time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
}

func (g *RedisGuard) Release(ctx context.Context, leadID uuid.UUID) error {
	return g.rdb.Del(ctx, g.key(leadID)).Err()
}
