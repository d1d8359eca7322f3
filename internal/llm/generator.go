package llm

import (
	"context"
	"errors"
	"fmt"

	"iso-games-service/internal/domain"

	"go.uber.org/zap"
)

// Generator turns a provider into an app.ScenarioGenerator.
type Generator struct {
	provider Provider
	logger   *zap.Logger
}

func NewGenerator(provider Provider, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{provider: provider, logger: logger}
}

// Generate asks the provider for req.Count scenarios. Deadline errors come back
// as domain.ErrGenerationTimeout, unusable output as domain.ErrMalformedGeneratedOutput.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) ([]domain.LocalizedScenario, error) {
	prompt, err := RenderPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	text, err := g.provider.Complete(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrGenerationTimeout, err)
		}
		return nil, err
	}

	scenarios, err := ParseScenarios(text, req.Language)
	if err != nil {
		g.logger.Debug("unusable completion", zap.String("game", req.GameID), zap.Int("bytes", len(text)), zap.Error(err))
		return nil, err
	}
	if req.Count > 0 && len(scenarios) > req.Count {
		scenarios = scenarios[:req.Count]
	}
	return scenarios, nil
}
