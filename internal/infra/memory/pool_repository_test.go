package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iso-games-service/internal/domain"
)

func TestPoolRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		PoolLoader: NewStaticPoolLoader(map[string][]domain.Scenario{
			"quality-quest": samplePool(),
		}),
	}
	repo := NewPoolRepository(loader, time.Minute)

	if _, err := repo.GetPool(context.Background(), "quality-quest"); err != nil {
		t.Fatalf("get pool: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected loader once, got %d", loader.count())
	}

	if _, err := repo.GetPool(context.Background(), "quality-quest"); err != nil {
		t.Fatalf("get pool 2: %v", err)
	}
	if loader.count() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.count())
	}
}

func TestPoolRepositoryReloadsAfterExpiry(t *testing.T) {
	loader := &countingLoader{
		PoolLoader: NewStaticPoolLoader(map[string][]domain.Scenario{"g": samplePool()}),
	}
	repo := NewPoolRepository(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	_, _ = repo.GetPool(context.Background(), "g")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetPool(context.Background(), "g")
	if loader.count() != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.count())
	}
}

func TestPoolRepositoryUnknownGame(t *testing.T) {
	repo := NewPoolRepository(NewStaticPoolLoader(nil), 0)
	if _, err := repo.GetPool(context.Background(), "nope"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
}

type countingLoader struct {
	PoolLoader
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) LoadPool(ctx context.Context, gameID string) ([]domain.Scenario, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return l.PoolLoader.LoadPool(ctx, gameID)
}

func (l *countingLoader) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls
}

func samplePool() []domain.Scenario {
	return []domain.Scenario{
		{
			ID:       "qq_001",
			Category: "Security",
			Content:  map[string]string{"en": "An attacker reads the session cookie."},
			Options: map[string][]domain.Option{
				"en": {{Label: "A", Text: "Usability"}, {Label: "B", Text: "Security"}},
			},
			CorrectOption: "B",
			Explanation:   map[string]string{"en": "Confidentiality is a security sub-characteristic."},
		},
	}
}
