package llm

import (
	"bytes"
	"strings"
	"text/template"

	"iso-games-service/internal/domain"
)

const systemPrompt = "You write short multiple-choice training scenarios about software quality standards. " +
	"You always answer with valid JSON and nothing else."

var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
}

var promptTemplate = template.Must(template.New("scenarios").Funcs(template.FuncMap{
	"join": strings.Join,
	"languageName": func(code string) string {
		if name, ok := languageNames[code]; ok {
			return name
		}
		return code
	},
}).Parse(`Generate {{.Count}} different scenarios for the "{{.GameID}}" learning game{{if .Topic}} about {{.Topic}}{{end}}.
{{- if .Category}}
Every scenario must be about the category "{{.Category}}".
{{- else if .Categories}}
Spread the scenarios over these categories: {{join .Categories ", "}}.
{{- end}}
{{- if .Difficulty}}
Difficulty: {{.Difficulty}}.
{{- end}}
Write all text in {{languageName .Language}}.

Each scenario needs:
- content: a realistic business or technical situation
- category: the category it illustrates
- difficulty: easy, medium or hard
- options: four choices labeled A, B, C and D
- correctOption: the label of the right choice
- explanation: why that choice is right

Respond with JSON only, in exactly this shape:
{"scenarios":[{"content":"...","category":"...","difficulty":"medium","options":[{"label":"A","text":"..."},{"label":"B","text":"..."},{"label":"C","text":"..."},{"label":"D","text":"..."}],"correctOption":"B","explanation":"..."}]}
`))

// RenderPrompt builds the user prompt for a generation request.
func RenderPrompt(req domain.GenerationRequest) (string, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
