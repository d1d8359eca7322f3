package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"iso-games-service/internal/domain"

	"golang.org/x/sync/singleflight"
)

// PoolLoader fetches a game's scenario pool from a backing store (embedded data, Postgres).
type PoolLoader interface {
	LoadPool(ctx context.Context, gameID string) ([]domain.Scenario, error)
}

// PoolRepository caches pools with TTL to avoid repeated loads.
type PoolRepository struct {
	loader PoolLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedPool
}

type cachedPool struct {
	pool      []domain.Scenario
	expiresAt time.Time
}

// NewPoolRepository caches forever when ttl is zero.
func NewPoolRepository(loader PoolLoader, ttl time.Duration) *PoolRepository {
	return &PoolRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPool),
	}
}

func (r *PoolRepository) GetPool(ctx context.Context, gameID string) ([]domain.Scenario, error) {
	if pool, ok := r.cached(gameID); ok {
		return pool, nil
	}

	result, err, _ := r.sf.Do(gameID, func() (interface{}, error) {
		if pool, ok := r.cached(gameID); ok {
			return pool, nil
		}

		pool, err := r.loader.LoadPool(ctx, gameID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		entry := cachedPool{pool: pool}
		if r.ttl > 0 {
			entry.expiresAt = r.clock().Add(r.ttlWithJitter())
		}
		r.cache[gameID] = entry
		r.mu.Unlock()
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Scenario), nil
}

func (r *PoolRepository) cached(gameID string) ([]domain.Scenario, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[gameID]
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.pool, true
}

// ttlWithJitter is called with mu held.
func (r *PoolRepository) ttlWithJitter() time.Duration {
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticPoolLoader serves pools from an in-memory map (embedded data, tests).
type StaticPoolLoader struct {
	pools map[string][]domain.Scenario
}

func NewStaticPoolLoader(pools map[string][]domain.Scenario) *StaticPoolLoader {
	return &StaticPoolLoader{pools: pools}
}

func (l *StaticPoolLoader) LoadPool(_ context.Context, gameID string) ([]domain.Scenario, error) {
	if pool, ok := l.pools[gameID]; ok {
		return pool, nil
	}
	return nil, domain.ErrGameNotFound
}
