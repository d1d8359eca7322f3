package scenarios

import (
	"fmt"
	"sort"
	"strings"

	"iso-games-service/internal/domain"
)

const minContentLength = 10

var knownDifficulties = map[string]bool{"easy": true, "medium": true, "hard": true}

// Stats describes the composition of a pool.
type Stats struct {
	Total        int            `json:"totalScenarios"`
	Categories   map[string]int `json:"categories"`
	Difficulties map[string]int `json:"difficulties"`
	Languages    []string       `json:"languages"`
}

// Validation lists problems found in a pool. Errors make a pool unusable.
type Validation struct {
	Total    int      `json:"totalScenarios"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Valid    bool     `json:"isValid"`
}

// Describe counts a pool by category, difficulty and language.
func Describe(pool []domain.Scenario) Stats {
	st := Stats{
		Total:        len(pool),
		Categories:   make(map[string]int),
		Difficulties: make(map[string]int),
	}
	langs := make(map[string]bool)
	for _, sc := range pool {
		st.Categories[orUnknown(sc.Category)]++
		st.Difficulties[orUnknown(sc.Difficulty)]++
		for _, lang := range sc.Languages() {
			langs[lang] = true
		}
	}
	st.Languages = make([]string, 0, len(langs))
	for lang := range langs {
		st.Languages = append(st.Languages, lang)
	}
	sort.Strings(st.Languages)
	return st
}

// Validate checks every record for the fields grading depends on.
func Validate(pool []domain.Scenario) Validation {
	v := Validation{Total: len(pool), Errors: []string{}, Warnings: []string{}}
	seen := make(map[string]bool, len(pool))
	for i, sc := range pool {
		name := sc.ID
		if name == "" {
			name = fmt.Sprintf("scenario_%d", i)
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing id", name))
		} else if seen[sc.ID] {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: duplicate id", name))
		}
		seen[sc.ID] = true

		if len(sc.Languages()) == 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing content", name))
		}
		if sc.Category == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing category", name))
		}
		if sc.CorrectOption == "" {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing correctOption", name))
		}
		if len(sc.Explanation) == 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing explanation", name))
		}
		if len(sc.Options) == 0 {
			v.Errors = append(v.Errors, fmt.Sprintf("%s: missing options", name))
		}
		for _, lang := range sortedLangs(sc.Options) {
			if sc.CorrectOption != "" && !domain.HasOption(sc.Options[lang], sc.CorrectOption) {
				v.Errors = append(v.Errors, fmt.Sprintf("%s: correctOption %q not among %s options", name, sc.CorrectOption, lang))
			}
		}

		if sc.Difficulty != "" && !knownDifficulties[strings.ToLower(sc.Difficulty)] {
			v.Warnings = append(v.Warnings, fmt.Sprintf("%s: unknown difficulty %q", name, sc.Difficulty))
		}
		for _, lang := range sc.Languages() {
			if len(sc.Content[lang]) < minContentLength {
				v.Warnings = append(v.Warnings, fmt.Sprintf("%s: %s content seems too short", name, lang))
			}
		}
	}
	v.Valid = len(v.Errors) == 0
	return v
}

func sortedLangs(m map[string][]domain.Option) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
