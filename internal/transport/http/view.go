package http

import (
	"time"

	"iso-games-service/internal/domain"
)

// scenarioView is what players see before answering; the answer stays server side.
type scenarioView struct {
	ID         string          `json:"id"`
	Language   string          `json:"language"`
	Content    string          `json:"content"`
	Options    []domain.Option `json:"options"`
	Category   string          `json:"category"`
	Difficulty string          `json:"difficulty,omitempty"`
	Source     string          `json:"source"`
}

type sessionView struct {
	ID                 string                `json:"id"`
	GameID             string                `json:"gameId"`
	PlayerName         string                `json:"playerName"`
	Language           string                `json:"language"`
	CategoryFilter     string                `json:"categoryFilter,omitempty"`
	DifficultyFilter   string                `json:"difficultyFilter,omitempty"`
	CurrentIndex       int                   `json:"currentIndex"`
	TotalScenarios     int                   `json:"totalScenarios"`
	Score              int                   `json:"score"`
	ScenariosCompleted int                   `json:"scenariosCompleted"`
	Status             domain.SessionStatus  `json:"status"`
	CreatedAt          time.Time             `json:"createdAt"`
	CompletedAt        *time.Time            `json:"completedAt,omitempty"`
	CurrentScenario    *scenarioView         `json:"currentScenario,omitempty"`
	Answers            []domain.AnswerRecord `json:"answers,omitempty"`
}

type answerView struct {
	Correct            bool          `json:"correct"`
	SelectedOption     string        `json:"selectedOption"`
	CorrectOption      string        `json:"correctOption"`
	CorrectAnswer      string        `json:"correctAnswer"`
	Explanation        string        `json:"explanation"`
	PointsAwarded      int           `json:"pointsAwarded"`
	Score              int           `json:"score"`
	ScenariosCompleted int           `json:"scenariosCompleted"`
	CurrentIndex       int           `json:"currentIndex"`
	TotalScenarios     int           `json:"totalScenarios"`
	NextScenario       *scenarioView `json:"nextScenario"`
	GameCompleted      bool          `json:"gameCompleted"`
	FinalScore         *int          `json:"finalScore,omitempty"`
}

func newScenarioView(sc *domain.LocalizedScenario) *scenarioView {
	if sc == nil {
		return nil
	}
	return &scenarioView{
		ID:         sc.ID,
		Language:   sc.Language,
		Content:    sc.Content,
		Options:    sc.Options,
		Category:   sc.Category,
		Difficulty: sc.Difficulty,
		Source:     sc.Source,
	}
}

func newSessionView(s domain.SessionSnapshot) sessionView {
	return sessionView{
		ID:                 s.ID,
		GameID:             s.GameID,
		PlayerName:         s.PlayerName,
		Language:           s.Language,
		CategoryFilter:     s.CategoryFilter,
		DifficultyFilter:   s.DifficultyFilter,
		CurrentIndex:       s.CurrentIndex,
		TotalScenarios:     s.TotalScenarios,
		Score:              s.Score,
		ScenariosCompleted: s.ScenariosCompleted,
		Status:             s.Status,
		CreatedAt:          s.CreatedAt,
		CompletedAt:        s.CompletedAt,
		CurrentScenario:    newScenarioView(s.CurrentScenario),
		Answers:            s.Answers,
	}
}

func newAnswerView(r domain.AnswerResult) answerView {
	return answerView{
		Correct:            r.Correct,
		SelectedOption:     r.SelectedOption,
		CorrectOption:      r.CorrectOption,
		CorrectAnswer:      r.CorrectAnswer,
		Explanation:        r.Explanation,
		PointsAwarded:      r.PointsAwarded,
		Score:              r.Score,
		ScenariosCompleted: r.ScenariosCompleted,
		CurrentIndex:       r.CurrentIndex,
		TotalScenarios:     r.TotalScenarios,
		NextScenario:       newScenarioView(r.NextScenario),
		GameCompleted:      r.GameCompleted,
		FinalScore:         r.FinalScore,
	}
}
