package planner

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"log"
	"strings"
	"text/template"
	"time"
	"unicode/utf8"

	"ai-trip-planner/internal/llm"
	"ai-trip-planner/internal/shared"
)

//go:embed refine_prompt.md
var refinePrompt string

type refinePromptData struct {
	NamesJSON string
	Count     int
}

// refineNames runs the best-effort second cleaning pass over already-cleaned
// names. The reply must be a JSON array of exactly the same length; on any
// failure the input is returned unchanged. The deterministic cleaner remains
// authoritative for individual entries that come back unusably short.
func (p *Planner) refineNames(ctx context.Context, names []string) []string {
	if p.textGen == nil || len(names) == 0 {
		return names
	}

	prompt, err := buildRefinePrompt(names)
	if err != nil {
		return names
	}

	start := time.Now()
	resp, err := p.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Warning: name refinement failed: %v", err)
		return names
	}
	p.recordMeta(shared.NewAgentMeta("name_refiner", resp.Usage, start))

	span, ok := llm.ExtractJSONArray(resp.Content)
	if !ok {
		return names
	}

	var refined []string
	if err := json.Unmarshal([]byte(span), &refined); err != nil {
		return names
	}
	if len(refined) != len(names) {
		return names
	}

	out := make([]string, len(names))
	for i, r := range refined {
		r = strings.TrimSpace(r)
		if utf8.RuneCountInString(r) < minUsableNameLen {
			out[i] = names[i]
			continue
		}
		out[i] = r
	}
	return out
}

func buildRefinePrompt(names []string) (string, error) {
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return "", err
	}

	tmpl, err := template.New("refine").Parse(refinePrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, refinePromptData{
		NamesJSON: string(namesJSON),
		Count:     len(names),
	}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
