package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"iso-games-service/internal/domain"
	"iso-games-service/internal/metrics"
	"iso-games-service/internal/scenarios"
	"iso-games-service/internal/selector"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultSessionTTL        = time.Hour
	DefaultGenerationTimeout = 15 * time.Second
	DefaultScenarioCount     = 5
	DefaultPointsPerCorrect  = 10
	DefaultLanguage          = "en"
	DefaultRecentLimit       = 10
	DefaultPlayerName        = "Player"
)

// SessionRepository abstracts how game sessions are stored (in-memory, Redis, etc).
// Get returns a copy; Update applies fn atomically and persists the result unless fn fails.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int, error)
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, gameID string) (int, error)
}

// PoolRepository loads a game's scenario pool (from cache/backing store).
type PoolRepository interface {
	GetPool(ctx context.Context, gameID string) ([]domain.Scenario, error)
}

// ScenarioGenerator produces fresh scenarios, typically through an LLM.
type ScenarioGenerator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.LocalizedScenario, error)
}

// Game is the per-game configuration the service runs with.
type Game struct {
	ID               string
	Name             string
	Description      string
	ScenarioCount    int
	PointsPerCorrect int
	DefaultLanguage  string
	AvoidRepeats     bool
	RecentLimit      int
	Generation       bool
	Topic            string
}

func (g Game) withDefaults() Game {
	if g.ScenarioCount <= 0 {
		g.ScenarioCount = DefaultScenarioCount
	}
	if g.PointsPerCorrect <= 0 {
		g.PointsPerCorrect = DefaultPointsPerCorrect
	}
	if g.DefaultLanguage == "" {
		g.DefaultLanguage = DefaultLanguage
	}
	if g.RecentLimit <= 0 {
		g.RecentLimit = DefaultRecentLimit
	}
	if g.Name == "" {
		g.Name = g.ID
	}
	return g
}

// CreateSessionRequest starts a new run of a game.
type CreateSessionRequest struct {
	GameID     string
	PlayerName string
	Category   string
	Difficulty string
	Language   string
}

// GameInfo describes one game in the catalogue.
type GameInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitempty"`
	ScenarioCount    int      `json:"scenarioCount"`
	PointsPerCorrect int      `json:"pointsPerCorrect"`
	DefaultLanguage  string   `json:"defaultLanguage"`
	Languages        []string `json:"languages"`
	Categories       []string `json:"categories"`
	PoolSize         int      `json:"poolSize"`
	AvoidRepeats     bool     `json:"avoidRepeats"`
	Generation       bool     `json:"generation"`
}

// GameStats reports the pool composition and health of one game.
type GameStats struct {
	Game           GameInfo             `json:"game"`
	Pool           scenarios.Stats      `json:"pool"`
	Validation     scenarios.Validation `json:"validation"`
	RecentIDs      []string             `json:"recentIds,omitempty"`
	ActiveSessions int                  `json:"activeSessions"`
}

type gameRuntime struct {
	cfg      Game
	selector *selector.Selector
}

// GameService contains the core game use cases.
type GameService struct {
	sessions  SessionRepository
	pools     PoolRepository
	generator ScenarioGenerator
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	sessionTTL        time.Duration
	generationTimeout time.Duration

	order []string
	games map[string]*gameRuntime
}

// Option configures a GameService.
type Option func(*GameService)

// WithClock is mostly for tests that need deterministic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *GameService) { s.now = now }
}

func WithGenerator(g ScenarioGenerator) Option {
	return func(s *GameService) { s.generator = g }
}

func WithGenerationTimeout(d time.Duration) Option {
	return func(s *GameService) {
		if d > 0 {
			s.generationTimeout = d
		}
	}
}

func WithSessionTTL(d time.Duration) Option {
	return func(s *GameService) {
		if d > 0 {
			s.sessionTTL = d
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *GameService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *GameService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSelectorOptions passes extra options (e.g. a seeded source) to every game's selector.
func WithSelectorOptions(opts ...selector.Option) Option {
	return func(s *GameService) {
		for _, g := range s.games {
			g.selector = newSelector(g.cfg, opts...)
		}
	}
}

func NewGameService(store SessionRepository, pools PoolRepository, games []Game, opts ...Option) *GameService {
	s := &GameService{
		sessions:          store,
		pools:             pools,
		logger:            zap.NewNop(),
		now:               time.Now,
		newID:             uuid.NewString,
		sessionTTL:        DefaultSessionTTL,
		generationTimeout: DefaultGenerationTimeout,
		games:             make(map[string]*gameRuntime, len(games)),
	}
	for _, g := range games {
		g = g.withDefaults()
		if _, dup := s.games[g.ID]; !dup {
			s.order = append(s.order, g.ID)
		}
		s.games[g.ID] = &gameRuntime{cfg: g, selector: newSelector(g)}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newSelector(g Game, opts ...selector.Option) *selector.Selector {
	if g.AvoidRepeats {
		opts = append([]selector.Option{selector.WithRecentTracker(g.RecentLimit)}, opts...)
	}
	return selector.New(g.DefaultLanguage, opts...)
}

// CreateSession sweeps expired sessions, picks the scenarios for a new run and stores it.
func (s *GameService) CreateSession(ctx context.Context, req CreateSessionRequest) (domain.SessionSnapshot, error) {
	if _, err := s.CleanupExpired(ctx); err != nil {
		s.logger.Warn("cleanup before create failed", zap.Error(err))
	}

	game, ok := s.games[req.GameID]
	if !ok {
		return domain.SessionSnapshot{}, domain.ErrGameNotFound
	}
	cfg := game.cfg

	lang := strings.ToLower(strings.TrimSpace(req.Language))
	if lang == "" {
		lang = cfg.DefaultLanguage
	}
	player := strings.TrimSpace(req.PlayerName)
	if player == "" {
		player = DefaultPlayerName
	}

	picked, err := s.pickScenarios(ctx, game, req, lang)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if len(picked) == 0 {
		return domain.SessionSnapshot{}, domain.ErrScenarioUnavailable
	}

	session := &domain.Session{
		ID:               s.newID(),
		GameID:           cfg.ID,
		PlayerName:       player,
		Language:         lang,
		CategoryFilter:   req.Category,
		DifficultyFilter: req.Difficulty,
		Scenarios:        picked,
		Status:           domain.StatusActive,
		CreatedAt:        s.now(),
		Answers:          []domain.AnswerRecord{},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("store session: %w", err)
	}
	s.metrics.SessionCreated(cfg.ID)
	s.logger.Info("session created",
		zap.String("session_id", session.ID),
		zap.String("game", cfg.ID),
		zap.String("language", lang),
		zap.Int("scenarios", len(picked)),
	)
	return session.Snapshot(), nil
}

func (s *GameService) pickScenarios(ctx context.Context, game *gameRuntime, req CreateSessionRequest, lang string) ([]domain.LocalizedScenario, error) {
	cfg := game.cfg
	pool, err := s.pools.GetPool(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("load pool %s: %w", cfg.ID, err)
	}

	selReq := selector.Request{
		Count:      cfg.ScenarioCount,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Language:   lang,
	}
	if !cfg.Generation || s.generator == nil {
		return game.selector.Select(pool, selReq), nil
	}

	generated := s.generate(ctx, cfg, pool, req, lang)
	if len(generated) >= cfg.ScenarioCount {
		return generated[:cfg.ScenarioCount], nil
	}
	selReq.Count = cfg.ScenarioCount - len(generated)
	return append(generated, game.selector.Select(pool, selReq)...), nil
}

type generation struct {
	scenarios []domain.LocalizedScenario
	err       error
}

// generate never fails: every problem is logged, counted and turned into an empty result.
func (s *GameService) generate(ctx context.Context, cfg Game, pool []domain.Scenario, req CreateSessionRequest, lang string) []domain.LocalizedScenario {
	genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
	defer cancel()

	genReq := domain.GenerationRequest{
		GameID:     cfg.ID,
		Topic:      cfg.Topic,
		Categories: poolCategories(pool),
		Count:      cfg.ScenarioCount,
		Category:   req.Category,
		Difficulty: req.Difficulty,
		Language:   lang,
	}

	done := make(chan generation, 1)
	go func() {
		out, err := s.generator.Generate(genCtx, genReq)
		done <- generation{scenarios: out, err: err}
	}()

	var res generation
	select {
	case res = <-done:
	case <-genCtx.Done():
		res.err = genCtx.Err()
	}

	if res.err != nil {
		outcome := metrics.OutcomeFallbackError
		switch {
		case errors.Is(res.err, domain.ErrGenerationTimeout), errors.Is(res.err, context.DeadlineExceeded):
			outcome = metrics.OutcomeFallbackTimeout
		case errors.Is(res.err, domain.ErrMalformedGeneratedOutput):
			outcome = metrics.OutcomeFallbackMalformed
		}
		s.metrics.Generation(cfg.ID, outcome)
		s.logger.Warn("scenario generation failed, using pool",
			zap.String("game", cfg.ID),
			zap.String("outcome", outcome),
			zap.Error(res.err),
		)
		return nil
	}

	s.metrics.Generation(cfg.ID, metrics.OutcomeGenerated)
	out := make([]domain.LocalizedScenario, 0, len(res.scenarios))
	for _, sc := range res.scenarios {
		if sc.Source == "" {
			sc.Source = domain.SourceGenerated
		}
		out = append(out, sc)
	}
	if len(out) < cfg.ScenarioCount {
		s.logger.Info("generated fewer scenarios than requested, topping up from pool",
			zap.String("game", cfg.ID),
			zap.Int("generated", len(out)),
			zap.Int("wanted", cfg.ScenarioCount),
		)
	}
	return out
}

// SubmitAnswer grades the answer against the session's current scenario and advances it.
func (s *GameService) SubmitAnswer(ctx context.Context, sessionID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	selected := strings.TrimSpace(sub.SelectedOption)
	if selected == "" {
		return domain.AnswerResult{}, fmt.Errorf("%w: selected option is required", domain.ErrInvalidRequest)
	}

	now := s.now()
	var result domain.AnswerResult
	updated, err := s.sessions.Update(ctx, sessionID, func(session *domain.Session) error {
		if s.expired(session, now) {
			return errExpired
		}
		if session.Status != domain.StatusActive || session.CurrentIndex >= session.Total() {
			return domain.ErrSessionNotActive
		}
		if sub.ScenarioIndex != nil && *sub.ScenarioIndex != session.CurrentIndex {
			return domain.ErrStaleAnswer
		}

		points := DefaultPointsPerCorrect
		if g, ok := s.games[session.GameID]; ok {
			points = g.cfg.PointsPerCorrect
		}

		current := session.Scenarios[session.CurrentIndex]
		correct := strings.EqualFold(selected, current.CorrectOption)
		awarded := 0
		if correct {
			awarded = points
			session.Score += points
		}
		session.Answers = append(session.Answers, domain.AnswerRecord{
			ScenarioIndex:    session.CurrentIndex,
			ScenarioID:       current.ID,
			SelectedOption:   selected,
			CorrectOption:    current.CorrectOption,
			Correct:          correct,
			Points:           awarded,
			TimeTakenSeconds: sub.TimeTakenSeconds,
			AnsweredAt:       now,
		})
		session.ScenariosCompleted++
		session.CurrentIndex++

		result = domain.AnswerResult{
			Correct:            correct,
			SelectedOption:     selected,
			CorrectOption:      current.CorrectOption,
			CorrectAnswer:      current.CorrectAnswer,
			Explanation:        current.Explanation,
			PointsAwarded:      awarded,
			Score:              session.Score,
			ScenariosCompleted: session.ScenariosCompleted,
			CurrentIndex:       session.CurrentIndex,
			TotalScenarios:     session.Total(),
		}
		if session.CurrentIndex >= session.Total() {
			session.Status = domain.StatusCompleted
			completedAt := now
			session.CompletedAt = &completedAt
			result.GameCompleted = true
			final := session.Score
			result.FinalScore = &final
		} else {
			result.NextScenario = session.Current()
		}
		return nil
	})
	if errors.Is(err, errExpired) {
		s.drop(ctx, sessionID)
		return domain.AnswerResult{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.AnswerResult{}, err
	}

	s.metrics.AnswerGraded(updated.GameID, result.Correct)
	if result.GameCompleted {
		s.metrics.SessionCompleted(updated.GameID)
		s.logger.Info("session completed",
			zap.String("session_id", updated.ID),
			zap.String("game", updated.GameID),
			zap.Int("score", updated.Score),
		)
	}
	return result, nil
}

var errExpired = errors.New("session expired")

// GetSession returns the client-facing snapshot of a session.
func (s *GameService) GetSession(ctx context.Context, sessionID string) (domain.SessionSnapshot, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionSnapshot{}, err
	}
	if s.expired(session, s.now()) {
		s.drop(ctx, sessionID)
		return domain.SessionSnapshot{}, domain.ErrSessionNotFound
	}
	return session.Snapshot(), nil
}

// DeleteSession removes a session whatever its status.
func (s *GameService) DeleteSession(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CleanupExpired removes every session older than the TTL, regardless of status.
func (s *GameService) CleanupExpired(ctx context.Context) (int, error) {
	removed, err := s.sessions.DeleteCreatedBefore(ctx, s.now().Add(-s.sessionTTL))
	if err != nil {
		return removed, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	if removed > 0 {
		s.metrics.SessionsExpired(removed)
		s.logger.Debug("expired sessions removed", zap.Int("count", removed))
	}
	return removed, nil
}

// RunSweeper calls CleanupExpired every interval until ctx is cancelled.
func (s *GameService) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.CleanupExpired(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("session sweep failed", zap.Error(err))
			}
		}
	}
}

// ListGames returns the catalogue in configuration order.
func (s *GameService) ListGames(ctx context.Context) ([]GameInfo, error) {
	out := make([]GameInfo, 0, len(s.order))
	for _, id := range s.order {
		pool, err := s.pools.GetPool(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load pool %s: %w", id, err)
		}
		out = append(out, s.info(s.games[id].cfg, pool))
	}
	return out, nil
}

// GameStats describes and validates one game's pool.
func (s *GameService) GameStats(ctx context.Context, gameID string) (GameStats, error) {
	game, ok := s.games[gameID]
	if !ok {
		return GameStats{}, domain.ErrGameNotFound
	}
	pool, err := s.pools.GetPool(ctx, gameID)
	if err != nil {
		return GameStats{}, fmt.Errorf("load pool %s: %w", gameID, err)
	}
	if _, err := s.CleanupExpired(ctx); err != nil {
		s.logger.Warn("cleanup before stats failed", zap.Error(err))
	}
	active, err := s.sessions.CountActive(ctx, gameID)
	if err != nil {
		return GameStats{}, fmt.Errorf("count sessions: %w", err)
	}
	return GameStats{
		Game:           s.info(game.cfg, pool),
		Pool:           scenarios.Describe(pool),
		Validation:     scenarios.Validate(pool),
		RecentIDs:      game.selector.Recent(),
		ActiveSessions: active,
	}, nil
}

// Game returns the configuration of a known game.
func (s *GameService) Game(gameID string) (Game, bool) {
	g, ok := s.games[gameID]
	if !ok {
		return Game{}, false
	}
	return g.cfg, true
}

func (s *GameService) info(cfg Game, pool []domain.Scenario) GameInfo {
	st := scenarios.Describe(pool)
	return GameInfo{
		ID:               cfg.ID,
		Name:             cfg.Name,
		Description:      cfg.Description,
		ScenarioCount:    cfg.ScenarioCount,
		PointsPerCorrect: cfg.PointsPerCorrect,
		DefaultLanguage:  cfg.DefaultLanguage,
		Languages:        st.Languages,
		Categories:       poolCategories(pool),
		PoolSize:         st.Total,
		AvoidRepeats:     cfg.AvoidRepeats,
		Generation:       cfg.Generation,
	}
}

func (s *GameService) expired(session *domain.Session, now time.Time) bool {
	return session.CreatedAt.Before(now.Add(-s.sessionTTL))
}

func (s *GameService) drop(ctx context.Context, sessionID string) {
	err := s.sessions.Delete(ctx, sessionID)
	if err == nil {
		s.metrics.SessionsExpired(1)
		return
	}
	// not found means a sweep got there first and already counted it
	if !errors.Is(err, domain.ErrSessionNotFound) {
		s.logger.Warn("drop expired session", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func poolCategories(pool []domain.Scenario) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, sc := range pool {
		if sc.Category != "" && !seen[sc.Category] {
			seen[sc.Category] = true
			out = append(out, sc.Category)
		}
	}
	sort.Strings(out)
	return out
}
