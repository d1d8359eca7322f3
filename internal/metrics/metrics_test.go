package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := New()
	m.SessionCreated("quality-quest")
	m.AnswerGraded("quality-quest", true)
	m.AnswerGraded("quality-quest", false)
	m.AnswerGraded("quality-quest", false)
	m.SessionsExpired(3)
	m.Generation("quality-quest", OutcomeFallbackTimeout)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.sessionsCreated.WithLabelValues("quality-quest")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.answers.WithLabelValues("quality-quest", "incorrect")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.sessionsExpired))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `isogames_generation_total{game="quality-quest",outcome="fallback_timeout"} 1`))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.SessionCreated("g")
	m.AnswerGraded("g", true)
	m.SessionCompleted("g")
	m.SessionsExpired(1)
	m.Generation("g", OutcomeGenerated)
}
