package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"iso-games-service/internal/domain"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()

	if err := store.Create(ctx, sampleSession("s1", time.Now())); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Score = 99
	again, _ := store.Get(ctx, "s1")
	if again.Score != 0 {
		t.Fatalf("expected stored session untouched by caller mutation, got score %d", again.Score)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if err := store.Delete(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestSessionStoreUpdateDiscardsOnError(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.Create(ctx, sampleSession("s1", time.Now()))

	boom := errors.New("boom")
	_, err := store.Update(ctx, "s1", func(s *domain.Session) error {
		s.Score = 10
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected fn error, got %v", err)
	}
	got, _ := store.Get(ctx, "s1")
	if got.Score != 0 {
		t.Fatalf("expected failed update discarded, got score %d", got.Score)
	}

	if _, err := store.Update(ctx, "missing", func(*domain.Session) error { return nil }); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	_ = store.Create(ctx, sampleSession("s1", time.Now()))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Update(ctx, "s1", func(s *domain.Session) error {
				s.Score += 10
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := store.Get(ctx, "s1")
	if got.Score != 500 {
		t.Fatalf("expected 500 after 50 updates, got %d", got.Score)
	}
}

func TestSessionStoreDeleteCreatedBefore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	_ = store.Create(ctx, sampleSession("old", base.Add(-2*time.Hour)))
	_ = store.Create(ctx, sampleSession("new", base))

	removed, err := store.DeleteCreatedBefore(ctx, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if n, _ := store.Count(ctx); n != 1 {
		t.Fatalf("expected 1 left, got %d", n)
	}
}

func TestSessionStoreCountActive(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now()
	_ = store.Create(ctx, sampleSession("a1", now))
	_ = store.Create(ctx, sampleSession("a2", now))
	done := sampleSession("c1", now)
	done.Status = domain.StatusCompleted
	_ = store.Create(ctx, done)
	other := sampleSession("o1", now)
	other.GameID = "usability-universe"
	_ = store.Create(ctx, other)

	n, err := store.CountActive(ctx, "quality-quest")
	if err != nil {
		t.Fatalf("count active: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 active quality-quest sessions, got %d", n)
	}
	if n, _ := store.CountActive(ctx, "usability-universe"); n != 1 {
		t.Fatalf("expected 1 active usability-universe session, got %d", n)
	}
}

func sampleSession(id string, createdAt time.Time) *domain.Session {
	return &domain.Session{
		ID:     id,
		GameID: "quality-quest",
		Scenarios: []domain.LocalizedScenario{
			{ID: "sc1", Content: "text", CorrectOption: "A", Options: []domain.Option{{Label: "A", Text: "yes"}}},
		},
		Status:    domain.StatusActive,
		CreatedAt: createdAt,
	}
}
