package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. ISOGAMES_REDIS_ADDR.
const EnvPrefix = "ISOGAMES"

type Config struct {
	Server struct {
		Port      string `yaml:"port"`
		StaticDir string `yaml:"static_dir" split_words:"true"`
	} `yaml:"server"`
	Log struct {
		Level    string `yaml:"level"`
		Encoding string `yaml:"encoding"`
	} `yaml:"log"`
	Session struct {
		TTL             string `yaml:"ttl"`
		CleanupInterval string `yaml:"cleanup_interval" split_words:"true"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Pool struct {
		TTL string `yaml:"ttl"`
	} `yaml:"pool"`
	LLM struct {
		Provider string `yaml:"provider"`
		BaseURL  string `yaml:"base_url" split_words:"true"`
		Model    string `yaml:"model"`
		APIKey   string `yaml:"api_key" split_words:"true"`
		Timeout  string `yaml:"timeout"`
	} `yaml:"llm"`
	Games []GameConfig `yaml:"games" ignored:"true"`
}

// GameConfig is one entry of the games list.
type GameConfig struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	Description      string `yaml:"description"`
	ScenarioCount    int    `yaml:"scenario_count"`
	PointsPerCorrect int    `yaml:"points_per_correct"`
	DefaultLanguage  string `yaml:"default_language"`
	AvoidRepeats     bool   `yaml:"avoid_repeats"`
	RecentLimit      int    `yaml:"recent_limit"`
	// PoolFile replaces the embedded pool with a JSON file on disk.
	PoolFile   string `yaml:"pool_file"`
	Generation struct {
		Enabled bool   `yaml:"enabled"`
		Topic   string `yaml:"topic"`
	} `yaml:"generation"`
}

// Load reads YAML config from path (skipped when empty), then applies
// ISOGAMES_* environment overrides and fills in the built-in games.
func Load(path string) (Config, error) {
	cfg := Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("env overrides: %w", err)
	}
	if len(cfg.Games) == 0 {
		cfg.Games = DefaultGames()
	}
	for i, g := range cfg.Games {
		if g.ID == "" {
			return cfg, fmt.Errorf("games[%d]: missing id", i)
		}
	}
	return cfg, nil
}

// DefaultGames describes the three built-in games.
func DefaultGames() []GameConfig {
	quality := GameConfig{
		ID:          "quality-quest",
		Name:        "QualityQuest",
		Description: "Identify the ISO/IEC 25010 quality characteristic behind each scenario.",
	}
	quality.Generation.Enabled = true
	quality.Generation.Topic = "the ISO/IEC 25010 software product quality model"

	rally := GameConfig{
		ID:          "requirement-rally",
		Name:        "RequirementRally",
		Description: "Classify requirements as functional, non-functional or constraints.",
	}

	universe := GameConfig{
		ID:           "usability-universe",
		Name:         "UsabilityUniverse",
		Description:  "Spot the usability principle each interface situation illustrates.",
		AvoidRepeats: true,
		RecentLimit:  10,
	}
	return []GameConfig{quality, rally, universe}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
