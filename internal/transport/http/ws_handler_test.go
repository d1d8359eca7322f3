package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"iso-games-service/internal/app"
	"iso-games-service/internal/domain"
	"iso-games-service/internal/infra/memory"
	"iso-games-service/internal/metrics"

	"github.com/gorilla/websocket"
)

func TestWebSocketPlaysSessionToCompletion(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws?gameId=quality-quest&name=Ada&language=es"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	_, session := readNext(conn, t, "session")
	if session["playerName"] != "Ada" || session["language"] != "es" {
		t.Fatalf("unexpected session payload %v", session)
	}
	current, ok := session["currentScenario"].(map[string]any)
	if !ok {
		t.Fatalf("expected current scenario, got %v", session["currentScenario"])
	}
	if _, leaked := current["correctOption"]; leaked {
		t.Fatalf("current scenario leaks the answer: %v", current)
	}

	if err := conn.WriteJSON(map[string]any{"type": "state"}); err != nil {
		t.Fatalf("write state: %v", err)
	}
	readNext(conn, t, "session")

	for i := 0; i < 2; i++ {
		answer := map[string]any{
			"type":    "answer",
			"payload": map[string]any{"selectedOption": "a", "scenarioIndex": i},
		}
		if err := conn.WriteJSON(answer); err != nil {
			t.Fatalf("write answer: %v", err)
		}
		_, result := readNext(conn, t, "answerResult")
		if result["correct"] != true {
			t.Fatalf("expected correct answer, got %v", result)
		}
	}

	_, final := readNext(conn, t, "completed")
	if final["status"] != string(domain.StatusCompleted) || final["score"] != float64(20) {
		t.Fatalf("unexpected final session %v", final)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestWebSocketReportsErrors(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()
	base := "ws" + server.URL[len("http"):]

	if _, resp, err := websocket.DefaultDialer.Dial(base+"/ws", nil); err == nil || resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without gameId, got err=%v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"/ws?gameId=nope", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	_, payload := readNext(conn, t, "error")
	if payload["message"] != domain.ErrGameNotFound.Error() {
		t.Fatalf("unexpected error payload %v", payload)
	}
	conn.Close()

	conn, _, err = websocket.DefaultDialer.Dial(base+"/ws?gameId=quality-quest", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	readNext(conn, t, "session")

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	readNext(conn, t, "error")

	stale := map[string]any{"type": "answer", "payload": map[string]any{"selectedOption": "A", "scenarioIndex": 1}}
	if err := conn.WriteJSON(stale); err != nil {
		t.Fatalf("write: %v", err)
	}
	_, payload = readNext(conn, t, "error")
	if payload["message"] != domain.ErrStaleAnswer.Error() {
		t.Fatalf("expected stale answer error, got %v", payload)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}

func newTestService() *app.GameService {
	return newTestServiceWithMetrics(nil)
}

func newTestServiceWithMetrics(m *metrics.Metrics) *app.GameService {
	pools := memory.NewPoolRepository(memory.NewStaticPoolLoader(map[string][]domain.Scenario{
		"quality-quest": samplePool(),
	}), 0)
	games := []app.Game{{ID: "quality-quest", Name: "QualityQuest", ScenarioCount: 2}}
	return app.NewGameService(memory.NewSessionStore(), pools, games, app.WithMetrics(m))
}

// every scenario is answered by A so tests can play blind
func samplePool() []domain.Scenario {
	mk := func(id, category string) domain.Scenario {
		return domain.Scenario{
			ID:         id,
			Category:   category,
			Difficulty: "easy",
			Content:    map[string]string{"en": "scenario " + id, "es": "escenario " + id},
			Options: map[string][]domain.Option{
				"en": {{Label: "A", Text: "Right"}, {Label: "B", Text: "Wrong"}},
				"es": {{Label: "A", Text: "Correcto"}, {Label: "B", Text: "Incorrecto"}},
			},
			CorrectOption: "A",
			Explanation:   map[string]string{"en": "A is right", "es": "A es correcto"},
		}
	}
	return []domain.Scenario{mk("s1", "Security"), mk("s2", "Usability"), mk("s3", "Security")}
}
