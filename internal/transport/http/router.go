package http

import (
	"net/http"

	"iso-games-service/internal/app"
	"iso-games-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig carries everything NewRouter needs besides the service.
type RouterConfig struct {
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	StaticDir string
}

// NewRouter wires the REST API, the live play socket, health, metrics and the static frontend.
func NewRouter(service *app.GameService, cfg RouterConfig) http.Handler {
	api := NewHandler(service, cfg.Logger)
	ws := NewWSHandler(service, cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	r.Get("/ws", ws.ServeWS)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", api.ListGames)
		r.Get("/games/{gameID}/stats", api.GameStats)
		r.Post("/games/{gameID}/sessions", api.CreateSession)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", api.GetSession)
			r.Delete("/", api.DeleteSession)
			r.Post("/answers", api.SubmitAnswer)
		})
	})

	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return r
}
