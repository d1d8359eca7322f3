package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"iso-games-service/internal/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches a game's scenario pool from a backing store.
type PoolLoader interface {
	LoadPool(ctx context.Context, gameID string) ([]domain.Scenario, error)
}

// PoolRepository caches whole pools in Redis and falls back to a loader on cache miss.
// Pools are stored as JSON: SET pool:{gameID} [...scenarios]
type PoolRepository struct {
	client *redis.Client
	loader PoolLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewPoolRepository(client *redis.Client, loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PoolRepository) GetPool(ctx context.Context, gameID string) ([]domain.Scenario, error) {
	if pool, ok := r.cached(ctx, gameID); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if pool, ok := r.cached(ctx, gameID); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx, gameID)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(pool)
		if err != nil {
			return nil, fmt.Errorf("encode pool: %w", err)
		}
		// best-effort: a failed write only costs another load
		_ = r.client.Set(ctx, r.key(gameID), data, r.ttlWithJitter()).Err()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Scenario), nil
}

func (r *PoolRepository) cached(ctx context.Context, gameID string) ([]domain.Scenario, bool) {
	raw, err := r.client.Get(ctx, r.key(gameID)).Bytes()
	if err != nil {
		// redis.Nil is a plain miss; other errors degrade to a load
		return nil, false
	}
	var pool []domain.Scenario
	if err := json.Unmarshal(raw, &pool); err != nil {
		return nil, false
	}
	return pool, true
}

func (r *PoolRepository) key(gameID string) string {
	return "pool:" + gameID
}

func (r *PoolRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
