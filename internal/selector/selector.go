// Package selector picks random, localized scenarios from a pool.
package selector

import (
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"iso-games-service/internal/domain"
)

// Request describes one selection.
type Request struct {
	Count      int
	Category   string
	Difficulty string
	Language   string
}

// Selector samples scenarios without replacement. When built with a tracker it
// biases selection away from recently served ids.
type Selector struct {
	fallbackLanguage string

	mu      sync.Mutex
	rnd     *rand.Rand
	tracker *RecentTracker
}

// Option configures a Selector.
type Option func(*Selector)

// WithRecentTracker enables anti-repetition over the last limit served ids.
func WithRecentTracker(limit int) Option {
	return func(s *Selector) {
		s.tracker = NewRecentTracker(limit)
	}
}

// WithSource replaces the random source; tests pass a seeded one.
func WithSource(src rand.Source) Option {
	return func(s *Selector) {
		s.rnd = rand.New(src)
	}
}

// New builds a Selector that falls back to fallbackLanguage for missing text.
func New(fallbackLanguage string, opts ...Option) *Selector {
	s := &Selector{
		fallbackLanguage: fallbackLanguage,
		rnd:              rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns up to req.Count localized scenarios matching the filters.
// A short or empty result is not an error.
func (s *Selector) Select(pool []domain.Scenario, req Request) []domain.LocalizedScenario {
	candidates := Filter(pool, req.Category, req.Difficulty)
	if len(candidates) == 0 || req.Count <= 0 {
		return []domain.LocalizedScenario{}
	}

	s.mu.Lock()
	var stale []domain.Scenario
	if s.tracker != nil && s.tracker.Len() > 0 {
		fresh := make([]domain.Scenario, 0, len(candidates))
		for _, sc := range candidates {
			if s.tracker.Contains(sc.ID) {
				stale = append(stale, sc)
			} else {
				fresh = append(fresh, sc)
			}
		}
		if len(fresh) > 0 {
			candidates = fresh
		} else {
			stale = nil
		}
	}

	n := req.Count
	if n > len(candidates) {
		n = len(candidates)
	}
	// partial Fisher-Yates over a private copy
	picked := append([]domain.Scenario(nil), candidates...)
	for i := 0; i < n; i++ {
		j := i + s.rnd.Intn(len(picked)-i)
		picked[i], picked[j] = picked[j], picked[i]
	}
	picked = picked[:n]

	// too few fresh ids: top up with the least recently served ones
	if missing := req.Count - len(picked); missing > 0 && len(stale) > 0 {
		s.sortOldestFirst(stale)
		if missing > len(stale) {
			missing = len(stale)
		}
		picked = append(picked, stale[:missing]...)
	}

	if s.tracker != nil {
		ids := make([]string, len(picked))
		for i, sc := range picked {
			ids[i] = sc.ID
		}
		s.tracker.Touch(ids...)
	}
	s.mu.Unlock()

	lang := req.Language
	if lang == "" {
		lang = s.fallbackLanguage
	}
	out := make([]domain.LocalizedScenario, len(picked))
	for i, sc := range picked {
		out[i] = sc.Localize(lang, s.fallbackLanguage)
	}
	return out
}

func (s *Selector) sortOldestFirst(pool []domain.Scenario) {
	rank := make(map[string]int, s.tracker.Len())
	for i, id := range s.tracker.IDs() {
		rank[id] = i
	}
	sort.SliceStable(pool, func(i, j int) bool {
		return rank[pool[i].ID] < rank[pool[j].ID]
	})
}

// Recent returns the ids currently held by the tracker, oldest first.
func (s *Selector) Recent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracker == nil {
		return nil
	}
	return s.tracker.IDs()
}

// Filter keeps scenarios whose category and difficulty match case-insensitively.
// Empty filters match everything.
func Filter(pool []domain.Scenario, category, difficulty string) []domain.Scenario {
	out := make([]domain.Scenario, 0, len(pool))
	for _, sc := range pool {
		if category != "" && !strings.EqualFold(sc.Category, category) {
			continue
		}
		if difficulty != "" && !strings.EqualFold(sc.Difficulty, difficulty) {
			continue
		}
		out = append(out, sc)
	}
	return out
}
