// Package metrics holds the Prometheus collectors for game activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation outcomes.
const (
	OutcomeGenerated         = "generated"
	OutcomeFallbackTimeout   = "fallback_timeout"
	OutcomeFallbackMalformed = "fallback_malformed"
	OutcomeFallbackError     = "fallback_error"
)

// Metrics registers its collectors on a private registry so tests can build
// as many as they like. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	sessionsCreated   *prometheus.CounterVec
	answers           *prometheus.CounterVec
	sessionsCompleted *prometheus.CounterVec
	sessionsExpired   prometheus.Counter
	generation        *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()
	return &Metrics{
		registry: registry,
		sessionsCreated: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isogames_sessions_created_total",
				Help: "Total number of game sessions created.",
			},
			[]string{"game"},
		),
		answers: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isogames_answers_total",
				Help: "Total number of graded answers, partitioned by correctness.",
			},
			[]string{"game", "result"},
		),
		sessionsCompleted: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isogames_sessions_completed_total",
				Help: "Total number of sessions that reached the last scenario.",
			},
			[]string{"game"},
		),
		sessionsExpired: promauto.With(registry).NewCounter(
			prometheus.CounterOpts{
				Name: "isogames_sessions_expired_total",
				Help: "Total number of sessions removed by expiry cleanup.",
			},
		),
		generation: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "isogames_generation_total",
				Help: "Scenario generation attempts, partitioned by outcome.",
			},
			[]string{"game", "outcome"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) SessionCreated(game string) {
	if m == nil {
		return
	}
	m.sessionsCreated.WithLabelValues(game).Inc()
}

func (m *Metrics) AnswerGraded(game string, correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(game, result).Inc()
}

func (m *Metrics) SessionCompleted(game string) {
	if m == nil {
		return
	}
	m.sessionsCompleted.WithLabelValues(game).Inc()
}

func (m *Metrics) SessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsExpired.Add(float64(n))
}

func (m *Metrics) Generation(game, outcome string) {
	if m == nil {
		return
	}
	m.generation.WithLabelValues(game, outcome).Inc()
}
