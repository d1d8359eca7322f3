package domain

import (
	"sort"
	"strings"
	"time"
)

// Option is one labeled choice of a scenario.
type Option struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Scenario is an immutable pool record with per-language text.
type Scenario struct {
	ID            string              `json:"id"`
	Category      string              `json:"category"`
	Difficulty    string              `json:"difficulty"`
	Content       map[string]string   `json:"content"`
	Options       map[string][]Option `json:"options"`
	CorrectOption string              `json:"correctOption"`
	Explanation   map[string]string   `json:"explanation"`
}

// Scenario sources.
const (
	SourcePool      = "pool"
	SourceGenerated = "generated"
)

// LocalizedScenario is a scenario resolved to a single language.
type LocalizedScenario struct {
	ID            string   `json:"id"`
	Language      string   `json:"language"`
	Content       string   `json:"content"`
	Options       []Option `json:"options"`
	CorrectOption string   `json:"correctOption"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	Source        string   `json:"source"`
}

// Languages lists every language that has content for the scenario.
func (s Scenario) Languages() []string {
	langs := make([]string, 0, len(s.Content))
	for lang, text := range s.Content {
		if text != "" {
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// Localize resolves the scenario to lang, falling back to fallback and then to any
// available language field by field.
func (s Scenario) Localize(lang, fallback string) LocalizedScenario {
	options := pickOptions(s.Options, lang, fallback)
	out := LocalizedScenario{
		ID:            s.ID,
		Language:      lang,
		Content:       pickText(s.Content, lang, fallback),
		Options:       options,
		CorrectOption: s.CorrectOption,
		Explanation:   pickText(s.Explanation, lang, fallback),
		Category:      s.Category,
		Difficulty:    s.Difficulty,
		Source:        SourcePool,
	}
	out.CorrectAnswer = OptionText(options, s.CorrectOption)
	return out
}

// OptionText returns the text of the option whose label matches (case-insensitive).
func OptionText(options []Option, label string) string {
	for _, opt := range options {
		if strings.EqualFold(opt.Label, label) {
			return opt.Text
		}
	}
	return ""
}

// HasOption reports whether label is one of the option labels.
func HasOption(options []Option, label string) bool {
	for _, opt := range options {
		if strings.EqualFold(opt.Label, label) {
			return true
		}
	}
	return false
}

func pickText(texts map[string]string, lang, fallback string) string {
	if t := texts[lang]; t != "" {
		return t
	}
	if t := texts[fallback]; t != "" {
		return t
	}
	for _, key := range sortedKeys(texts) {
		if t := texts[key]; t != "" {
			return t
		}
	}
	return ""
}

func pickOptions(options map[string][]Option, lang, fallback string) []Option {
	src := options[lang]
	if len(src) == 0 {
		src = options[fallback]
	}
	if len(src) == 0 {
		for _, key := range sortedKeys(options) {
			if len(options[key]) > 0 {
				src = options[key]
				break
			}
		}
	}
	out := make([]Option, len(src))
	copy(out, src)
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// AnswerRecord is one graded answer kept on the session.
type AnswerRecord struct {
	ScenarioIndex    int       `json:"scenarioIndex"`
	ScenarioID       string    `json:"scenarioId"`
	SelectedOption   string    `json:"selectedOption"`
	CorrectOption    string    `json:"correctOption"`
	Correct          bool      `json:"correct"`
	Points           int       `json:"points"`
	TimeTakenSeconds *float64  `json:"timeTakenSeconds,omitempty"`
	AnsweredAt       time.Time `json:"answeredAt"`
}

// Session is one player's run through a fixed sequence of scenarios.
type Session struct {
	ID                 string              `json:"id"`
	GameID             string              `json:"gameId"`
	PlayerName         string              `json:"playerName"`
	Language           string              `json:"language"`
	CategoryFilter     string              `json:"categoryFilter,omitempty"`
	DifficultyFilter   string              `json:"difficultyFilter,omitempty"`
	Scenarios          []LocalizedScenario `json:"scenarios"`
	CurrentIndex       int                 `json:"currentIndex"`
	Score              int                 `json:"score"`
	ScenariosCompleted int                 `json:"scenariosCompleted"`
	Status             SessionStatus       `json:"status"`
	CreatedAt          time.Time           `json:"createdAt"`
	CompletedAt        *time.Time          `json:"completedAt,omitempty"`
	Answers            []AnswerRecord      `json:"answers"`
}

// Total is the number of scenarios assigned to the session.
func (s *Session) Total() int {
	return len(s.Scenarios)
}

// Current returns the scenario at the current index, or nil once completed.
func (s *Session) Current() *LocalizedScenario {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Scenarios) {
		return nil
	}
	sc := s.Scenarios[s.CurrentIndex]
	return &sc
}

// Clone returns a deep copy so callers can't mutate stored state.
func (s *Session) Clone() *Session {
	out := *s
	out.Scenarios = make([]LocalizedScenario, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		sc.Options = append([]Option(nil), sc.Options...)
		out.Scenarios[i] = sc
	}
	out.Answers = append([]AnswerRecord(nil), s.Answers...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// Snapshot is the client-facing view of a session's progress.
func (s *Session) Snapshot() SessionSnapshot {
	snap := SessionSnapshot{
		ID:                 s.ID,
		GameID:             s.GameID,
		PlayerName:         s.PlayerName,
		Language:           s.Language,
		CategoryFilter:     s.CategoryFilter,
		DifficultyFilter:   s.DifficultyFilter,
		CurrentIndex:       s.CurrentIndex,
		TotalScenarios:     s.Total(),
		Score:              s.Score,
		ScenariosCompleted: s.ScenariosCompleted,
		Status:             s.Status,
		CreatedAt:          s.CreatedAt,
		CompletedAt:        s.CompletedAt,
		CurrentScenario:    s.Current(),
	}
	if s.Status == StatusCompleted {
		snap.Answers = append([]AnswerRecord(nil), s.Answers...)
	}
	return snap
}

// SessionSnapshot exposes progress without revealing scenarios beyond the current one.
type SessionSnapshot struct {
	ID                 string             `json:"id"`
	GameID             string             `json:"gameId"`
	PlayerName         string             `json:"playerName"`
	Language           string             `json:"language"`
	CategoryFilter     string             `json:"categoryFilter,omitempty"`
	DifficultyFilter   string             `json:"difficultyFilter,omitempty"`
	CurrentIndex       int                `json:"currentIndex"`
	TotalScenarios     int                `json:"totalScenarios"`
	Score              int                `json:"score"`
	ScenariosCompleted int                `json:"scenariosCompleted"`
	Status             SessionStatus      `json:"status"`
	CreatedAt          time.Time          `json:"createdAt"`
	CompletedAt        *time.Time         `json:"completedAt,omitempty"`
	CurrentScenario    *LocalizedScenario `json:"currentScenario,omitempty"`
	Answers            []AnswerRecord     `json:"answers,omitempty"`
}

// AnswerSubmission is the client's answer for the current scenario.
type AnswerSubmission struct {
	SelectedOption   string
	ScenarioIndex    *int
	TimeTakenSeconds *float64
}

// AnswerResult summarizes a graded submission.
type AnswerResult struct {
	Correct            bool               `json:"correct"`
	SelectedOption     string             `json:"selectedOption"`
	CorrectOption      string             `json:"correctOption"`
	CorrectAnswer      string             `json:"correctAnswer"`
	Explanation        string             `json:"explanation"`
	PointsAwarded      int                `json:"pointsAwarded"`
	Score              int                `json:"score"`
	ScenariosCompleted int                `json:"scenariosCompleted"`
	CurrentIndex       int                `json:"currentIndex"`
	TotalScenarios     int                `json:"totalScenarios"`
	NextScenario       *LocalizedScenario `json:"nextScenario"`
	GameCompleted      bool               `json:"gameCompleted"`
	FinalScore         *int               `json:"finalScore,omitempty"`
}

// GenerationRequest asks a generator for count scenarios.
type GenerationRequest struct {
	GameID     string
	Topic      string
	Categories []string
	Count      int
	Category   string
	Difficulty string
	Language   string
}
