package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"iso-games-service/internal/domain"

	"github.com/google/uuid"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

type generatedScenario struct {
	Content       string          `json:"content"`
	Category      string          `json:"category"`
	Difficulty    string          `json:"difficulty"`
	Options       []domain.Option `json:"options"`
	CorrectOption string          `json:"correctOption"`
	Explanation   string          `json:"explanation"`
}

// ParseScenarios extracts generated scenarios from free-form completion text.
// The payload may be a fenced block or bare JSON, either an array or an object
// with a "scenarios" array. Any unusable item rejects the whole payload with
// domain.ErrMalformedGeneratedOutput.
func ParseScenarios(text, language string) ([]domain.LocalizedScenario, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, fmt.Errorf("%w: no json found", domain.ErrMalformedGeneratedOutput)
	}

	var items []generatedScenario
	if strings.HasPrefix(payload, "[") {
		if err := json.Unmarshal([]byte(payload), &items); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeneratedOutput, err)
		}
	} else {
		var wrapper struct {
			Scenarios []generatedScenario `json:"scenarios"`
		}
		if err := json.Unmarshal([]byte(payload), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrMalformedGeneratedOutput, err)
		}
		items = wrapper.Scenarios
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no scenarios", domain.ErrMalformedGeneratedOutput)
	}

	out := make([]domain.LocalizedScenario, 0, len(items))
	for i, item := range items {
		sc, err := item.localize(language)
		if err != nil {
			return nil, fmt.Errorf("%w: scenario %d: %v", domain.ErrMalformedGeneratedOutput, i, err)
		}
		out = append(out, sc)
	}
	return out, nil
}

func (g generatedScenario) localize(language string) (domain.LocalizedScenario, error) {
	if strings.TrimSpace(g.Content) == "" {
		return domain.LocalizedScenario{}, fmt.Errorf("missing content")
	}
	if strings.TrimSpace(g.Explanation) == "" {
		return domain.LocalizedScenario{}, fmt.Errorf("missing explanation")
	}
	if len(g.Options) < 2 {
		return domain.LocalizedScenario{}, fmt.Errorf("need at least 2 options, got %d", len(g.Options))
	}
	options := make([]domain.Option, len(g.Options))
	for i, opt := range g.Options {
		label := strings.TrimSpace(opt.Label)
		if label == "" || strings.TrimSpace(opt.Text) == "" {
			return domain.LocalizedScenario{}, fmt.Errorf("option %d incomplete", i)
		}
		options[i] = domain.Option{Label: label, Text: strings.TrimSpace(opt.Text)}
	}

	correct := strings.TrimSpace(g.CorrectOption)
	if correct == "" {
		return domain.LocalizedScenario{}, fmt.Errorf("missing correctOption")
	}
	var label string
	for _, opt := range options {
		if strings.EqualFold(opt.Label, correct) {
			label = opt.Label
			break
		}
	}
	if label == "" {
		return domain.LocalizedScenario{}, fmt.Errorf("correctOption %q not among options", correct)
	}

	return domain.LocalizedScenario{
		ID:            "gen-" + uuid.NewString(),
		Language:      language,
		Content:       strings.TrimSpace(g.Content),
		Options:       options,
		CorrectOption: label,
		CorrectAnswer: domain.OptionText(options, label),
		Explanation:   strings.TrimSpace(g.Explanation),
		Category:      g.Category,
		Difficulty:    strings.ToLower(g.Difficulty),
		Source:        domain.SourceGenerated,
	}, nil
}

// extractJSON prefers a fenced block, otherwise the outermost array or object.
func extractJSON(text string) string {
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		if inner := strings.TrimSpace(m[1]); inner != "" {
			text = inner
		}
	}
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ""
	}
	closer := "}"
	if text[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(text, closer)
	if end < start {
		return ""
	}
	return text[start : end+1]
}
