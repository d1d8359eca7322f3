package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"iso-games-service/internal/app"
	"iso-games-service/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the REST API for the game service.
type Handler struct {
	service *app.GameService
	logger  *zap.Logger
}

func NewHandler(service *app.GameService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

type createSessionBody struct {
	PlayerName string `json:"playerName"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Language   string `json:"language"`
}

type answerBody struct {
	SelectedOption   string   `json:"selectedOption"`
	ScenarioIndex    *int     `json:"scenarioIndex"`
	TimeTakenSeconds *float64 `json:"timeTakenSeconds"`
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.service.ListGames(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handler) GameStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GameStats(r.Context(), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body createSessionBody
	// an empty body starts a default session
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	snap, err := h.service.CreateSession(r.Context(), app.CreateSessionRequest{
		GameID:     chi.URLParam(r, "gameID"),
		PlayerName: body.PlayerName,
		Category:   body.Category,
		Difficulty: body.Difficulty,
		Language:   body.Language,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSessionView(snap))
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSessionView(snap))
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), domain.AnswerSubmission{
		SelectedOption:   body.SelectedOption,
		ScenarioIndex:    body.ScenarioIndex,
		TimeTakenSeconds: body.TimeTakenSeconds,
	})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newAnswerView(result))
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrGameNotFound),
		errors.Is(err, domain.ErrScenarioUnavailable):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionNotActive),
		errors.Is(err, domain.ErrStaleAnswer),
		errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
