package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadYAMLWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: "9090"
redis:
  addr: "localhost:6379"
llm:
  provider: openai
  model: gpt-4o-mini
games:
  - id: quality-quest
    scenario_count: 3
    generation:
      enabled: true
      topic: quality
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ISOGAMES_REDIS_ADDR", "redis:6380")
	t.Setenv("ISOGAMES_LLM_API_KEY", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port from yaml, got %q", cfg.Server.Port)
	}
	if cfg.Redis.Addr != "redis:6380" {
		t.Fatalf("expected env override, got %q", cfg.Redis.Addr)
	}
	if cfg.LLM.APIKey != "secret" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Fatalf("unexpected llm config %+v", cfg.LLM)
	}
	if len(cfg.Games) != 1 || cfg.Games[0].ScenarioCount != 3 || !cfg.Games[0].Generation.Enabled {
		t.Fatalf("unexpected games %+v", cfg.Games)
	}
}

func TestLoadDefaultsGames(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Games) != 3 {
		t.Fatalf("expected 3 built-in games, got %d", len(cfg.Games))
	}
	if !cfg.Games[2].AvoidRepeats || cfg.Games[2].RecentLimit != 10 {
		t.Fatalf("expected usability-universe anti-repetition, got %+v", cfg.Games[2])
	}
}

func TestLoadRejectsGameWithoutID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_ = os.WriteFile(path, []byte("games:\n  - name: nameless\n"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for game without id")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Hour); got != time.Hour {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("90s", time.Hour); got != 90*time.Second {
		t.Fatalf("expected 90s, got %v", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on garbage, got %v", got)
	}
}
