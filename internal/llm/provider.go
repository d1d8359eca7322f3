// Package llm generates scenarios through an LLM completion API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrGenerationFailed wraps provider-side failures (transport, empty answers).
var ErrGenerationFailed = errors.New("llm generation failed")

// Provider sends a prompt and returns the raw completion text.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig selects and configures a provider.
type ProviderConfig struct {
	Provider string // openai, ollama or empty for none
	BaseURL  string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// NewProvider returns nil without error when no provider is configured.
func NewProvider(cfg ProviderConfig) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "ollama":
		p, err := NewOllamaProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
