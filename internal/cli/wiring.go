package cli

import (
	"fmt"
	"time"

	"iso-games-service/internal/app"
	"iso-games-service/internal/config"
	"iso-games-service/internal/domain"
	"iso-games-service/internal/llm"
	"iso-games-service/internal/logging"
	"iso-games-service/internal/scenarios"

	"go.uber.org/zap"
)

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(logging.Config{Level: cfg.Log.Level, Encoding: cfg.Log.Encoding})
}

// loadPools returns the embedded pools with any pool_file overrides applied,
// restricted to the configured games.
func loadPools(cfg config.Config) (map[string][]domain.Scenario, error) {
	embedded, err := scenarios.Embedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded pools: %w", err)
	}
	pools := make(map[string][]domain.Scenario, len(cfg.Games))
	for _, g := range cfg.Games {
		if g.PoolFile == "" {
			pool, ok := embedded[g.ID]
			if !ok {
				return nil, fmt.Errorf("game %s: no built-in pool and no pool_file set", g.ID)
			}
			pools[g.ID] = pool
			continue
		}
		f, err := scenarios.LoadFile(g.PoolFile)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", g.ID, err)
		}
		pools[g.ID] = f.Scenarios
	}
	return pools, nil
}

// validatePools fails when any pool has errors; warnings are only logged.
func validatePools(pools map[string][]domain.Scenario, order []config.GameConfig, logger *zap.Logger) error {
	for _, g := range order {
		v := scenarios.Validate(pools[g.ID])
		for _, w := range v.Warnings {
			logger.Warn("scenario pool warning", zap.String("game", g.ID), zap.String("detail", w))
		}
		if v.Total == 0 {
			return fmt.Errorf("game %s: pool is empty", g.ID)
		}
		if !v.Valid {
			return fmt.Errorf("game %s: invalid pool: %v", g.ID, v.Errors)
		}
	}
	return nil
}

func gamesFromConfig(cfg config.Config) []app.Game {
	games := make([]app.Game, 0, len(cfg.Games))
	for _, g := range cfg.Games {
		games = append(games, app.Game{
			ID:               g.ID,
			Name:             g.Name,
			Description:      g.Description,
			ScenarioCount:    g.ScenarioCount,
			PointsPerCorrect: g.PointsPerCorrect,
			DefaultLanguage:  g.DefaultLanguage,
			AvoidRepeats:     g.AvoidRepeats,
			RecentLimit:      g.RecentLimit,
			Generation:       g.Generation.Enabled,
			Topic:            g.Generation.Topic,
		})
	}
	return games
}

func llmConfig(cfg config.Config) llm.ProviderConfig {
	return llm.ProviderConfig{
		Provider: cfg.LLM.Provider,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		APIKey:   cfg.LLM.APIKey,
		Timeout:  config.TTLDuration(cfg.LLM.Timeout, app.DefaultGenerationTimeout),
	}
}

func sessionTTL(cfg config.Config) time.Duration {
	return config.TTLDuration(cfg.Session.TTL, app.DefaultSessionTTL)
}
