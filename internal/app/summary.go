package app

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"text/template"
	"time"

	"ai-trip-planner/internal/shared"
	"ai-trip-planner/internal/travel"
)

//go:embed summary_prompt.md
var summaryPrompt string

type summaryPromptData struct {
	Destination string
	Days        int
	Flights     int
	Hotels      int
}

// summarize produces the closing summary for a finished plan. Generative
// when a backend is available; the deterministic fallback still names the
// destination and day count.
func (a *App) summarize(ctx context.Context, intent travel.TripIntent, plan travel.ChatPlan) string {
	fallback := fallbackSummary(intent.Destination, len(plan.Itinerary.Days), len(plan.Flights), len(plan.Hotels))
	if a.textGen == nil {
		return fallback
	}

	prompt, err := buildSummaryPrompt(summaryPromptData{
		Destination: intent.Destination,
		Days:        len(plan.Itinerary.Days),
		Flights:     len(plan.Flights),
		Hotels:      len(plan.Hotels),
	})
	if err != nil {
		return fallback
	}

	start := time.Now()
	resp, err := a.textGen.GenerateContent(ctx, prompt)
	if err != nil {
		log.Printf("Warning: summary generation failed, using fallback: %v", err)
		return fallback
	}
	a.recordMeta(shared.NewAgentMeta("trip_summarizer", resp.Usage, start))

	if summary := strings.TrimSpace(resp.Content); summary != "" {
		return summary
	}
	return fallback
}

func buildSummaryPrompt(data summaryPromptData) (string, error) {
	tmpl, err := template.New("summary").Parse(summaryPrompt)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// fallbackSummary builds a plain summary from what the run produced.
func fallbackSummary(destination string, days, flights, hotels int) string {
	var b strings.Builder
	if days > 0 {
		fmt.Fprintf(&b, "Your %d-day plan for %s is ready.", days, destination)
	} else {
		fmt.Fprintf(&b, "Your trip plan for %s is ready.", destination)
	}
	if flights > 0 {
		fmt.Fprintf(&b, " I found %d flight options to compare.", flights)
	}
	if hotels > 0 {
		fmt.Fprintf(&b, " There are %d hotel picks to look at.", hotels)
	}
	b.WriteString(" Have a great trip!")
	return b.String()
}
