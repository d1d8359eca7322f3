package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaProvider uses the native Ollama chat API.
type OllamaProvider struct {
	client *api.Client
	model  string
}

func NewOllamaProvider(cfg ProviderConfig) (*OllamaProvider, error) {
	base := strings.TrimSuffix(strings.TrimSuffix(cfg.BaseURL, "/"), "/v1")
	if base == "" {
		base = "http://localhost:11434"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", base, err)
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.1"
	}
	return &OllamaProvider{
		client: api.NewClient(u, &http.Client{Timeout: cfg.Timeout}),
		model:  model,
	}, nil
}

func (p *OllamaProvider) Complete(ctx context.Context, prompt string) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream: &stream,
	}

	var content strings.Builder
	err := p.client.Chat(ctx, req, func(r api.ChatResponse) error {
		content.WriteString(r.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	if content.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGenerationFailed)
	}
	return content.String(), nil
}
