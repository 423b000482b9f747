package service

import (
	"encoding/json"
	"strings"

	"github.com/poliq-ai/poliq/internal/domain"
)

// parseModelAnswer extracts the structured answer from raw model output.
// Models asked for bare JSON still occasionally wrap it in markdown
// fences or surround it with prose, so parsing degrades through three
// attempts: strip fences, direct unmarshal, then the first {...} span.
// If all fail the raw text becomes the summary so the user still gets an
// answer.
func parseModelAnswer(raw string) domain.Answer {
	text := strings.TrimSpace(raw)

	if strings.HasPrefix(text, "```") {
		text = stripFences(text)
	}

	var answer domain.Answer
	if err := json.Unmarshal([]byte(text), &answer); err == nil {
		return normalizeAnswer(answer)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(text[start:end+1]), &answer); err == nil {
			return normalizeAnswer(answer)
		}
	}

	return domain.Answer{Summary: raw, Sources: []domain.SourceItem{}}
}

// stripFences removes a leading ``` or ```json line and a trailing ```
// line.
func stripFences(text string) string {
	lines := strings.Split(text, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func normalizeAnswer(a domain.Answer) domain.Answer {
	a.Summary = strings.TrimSpace(a.Summary)
	a.Steps = strings.TrimSpace(a.Steps)
	a.CostSavingTips = strings.TrimSpace(a.CostSavingTips)
	if a.Sources == nil {
		a.Sources = []domain.SourceItem{}
	}
	return a
}
