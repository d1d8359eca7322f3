package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"iso-games-service/internal/metrics"
)

func TestRESTSessionFlow(t *testing.T) {
	m := metrics.New()
	server := httptest.NewServer(NewRouter(newTestServiceWithMetrics(m), RouterConfig{Metrics: m}))
	defer server.Close()

	status, created := doJSON(t, http.MethodPost, server.URL+"/api/v1/games/quality-quest/sessions", `{"playerName":"Ada"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%v)", status, created)
	}
	if created["status"] != "active" || created["totalScenarios"] != float64(2) || created["playerName"] != "Ada" {
		t.Fatalf("unexpected session %v", created)
	}
	assertHidden(t, created["currentScenario"])
	id, _ := created["id"].(string)
	sessionURL := server.URL + "/api/v1/sessions/" + id

	status, result := doJSON(t, http.MethodPost, sessionURL+"/answers", `{"selectedOption":"A","scenarioIndex":0}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d (%v)", status, result)
	}
	if result["correct"] != true || result["correctAnswer"] != "Right" || result["explanation"] != "A is right" {
		t.Fatalf("unexpected answer result %v", result)
	}
	assertHidden(t, result["nextScenario"])

	status, body := doJSON(t, http.MethodPost, sessionURL+"/answers", `{"selectedOption":"A","scenarioIndex":0}`)
	if status != http.StatusBadRequest || body["error"] == nil {
		t.Fatalf("expected 400 for stale answer, got %d (%v)", status, body)
	}

	status, result = doJSON(t, http.MethodPost, sessionURL+"/answers", `{"selectedOption":"b","scenarioIndex":1}`)
	if status != http.StatusOK || result["gameCompleted"] != true || result["finalScore"] != float64(10) {
		t.Fatalf("expected completion with score 10, got %d (%v)", status, result)
	}
	if next, present := result["nextScenario"]; !present || next != nil {
		t.Fatalf("expected explicit null nextScenario on completion, got %v", result)
	}

	status, _ = doJSON(t, http.MethodPost, sessionURL+"/answers", `{"selectedOption":"A"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 after completion, got %d", status)
	}

	status, snap := doJSON(t, http.MethodGet, sessionURL, "")
	if status != http.StatusOK || snap["status"] != "completed" {
		t.Fatalf("expected completed session, got %d (%v)", status, snap)
	}
	if answers, _ := snap["answers"].([]any); len(answers) != 2 {
		t.Fatalf("expected 2 answers in completed snapshot, got %v", snap["answers"])
	}

	if status, _ = doJSON(t, http.MethodDelete, sessionURL, ""); status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", status)
	}
	if status, _ = doJSON(t, http.MethodGet, sessionURL, ""); status != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", status)
	}

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `isogames_sessions_created_total{game="quality-quest"} 1`) {
		t.Fatalf("expected session counter in metrics output:\n%s", raw)
	}
}

func TestRESTErrorMapping(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown game", http.MethodPost, "/api/v1/games/nope/sessions", `{}`, http.StatusNotFound},
		{"unknown game stats", http.MethodGet, "/api/v1/games/nope/stats", "", http.StatusNotFound},
		{"no matching scenarios", http.MethodPost, "/api/v1/games/quality-quest/sessions", `{"category":"Portability"}`, http.StatusNotFound},
		{"bad json", http.MethodPost, "/api/v1/games/quality-quest/sessions", `{`, http.StatusBadRequest},
		{"unknown session", http.MethodGet, "/api/v1/sessions/missing", "", http.StatusNotFound},
		{"answer unknown session", http.MethodPost, "/api/v1/sessions/missing/answers", `{"selectedOption":"A"}`, http.StatusNotFound},
		{"delete unknown session", http.MethodDelete, "/api/v1/sessions/missing", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := doJSON(t, tc.method, server.URL+tc.path, tc.body)
			if status != tc.want {
				t.Fatalf("expected %d, got %d (%v)", tc.want, status, body)
			}
			if body["error"] == nil {
				t.Fatalf("expected error body, got %v", body)
			}
		})
	}

	_, created := doJSON(t, http.MethodPost, server.URL+"/api/v1/games/quality-quest/sessions", "")
	id, _ := created["id"].(string)
	status, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/sessions/"+id+"/answers", `{"selectedOption":"  "}`)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty option, got %d (%v)", status, body)
	}
	if created["playerName"] != "Player" || created["language"] != "en" {
		t.Fatalf("expected defaults for empty body, got %v", created)
	}
}

func TestRESTCatalogue(t *testing.T) {
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{}))
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/v1/games")
	if err != nil {
		t.Fatalf("list games: %v", err)
	}
	defer resp.Body.Close()
	var games []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		t.Fatalf("decode games: %v", err)
	}
	if len(games) != 1 || games[0]["id"] != "quality-quest" || games[0]["poolSize"] != float64(3) {
		t.Fatalf("unexpected catalogue %v", games)
	}

	status, stats := doJSON(t, http.MethodGet, server.URL+"/api/v1/games/quality-quest/stats", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	validation, _ := stats["validation"].(map[string]any)
	if validation["isValid"] != true {
		t.Fatalf("expected valid pool, got %v", stats["validation"])
	}
}

func TestHealthAndStatic(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>ISO games</h1>"), 0o644); err != nil {
		t.Fatalf("write index: %v", err)
	}
	server := httptest.NewServer(NewRouter(newTestService(), RouterConfig{StaticDir: dir}))
	defer server.Close()

	for path, want := range map[string]string{"/healthz": "ok", "/": "<h1>ISO games</h1>"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatalf("get %s: %v", path, err)
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || string(raw) != want {
			t.Fatalf("%s: expected %q, got %d %q", path, want, resp.StatusCode, raw)
		}
	}
}

func doJSON(t *testing.T, method, url, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp.StatusCode, out
}

func assertHidden(t *testing.T, v any) {
	t.Helper()
	sc, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected scenario object, got %v", v)
	}
	for _, key := range []string{"correctOption", "correctAnswer", "explanation"} {
		if _, leaked := sc[key]; leaked {
			t.Fatalf("scenario exposes %s: %v", key, sc)
		}
	}
	if sc["content"] == "" || sc["options"] == nil {
		t.Fatalf("scenario missing content: %v", sc)
	}
}
