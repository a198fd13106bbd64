package categorize

import (
	"fmt"
	"strings"
)

// CategoryRef is the id/name pair sent to the model so it can only pick from
// the caller's categories.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request is the categorization protocol request, either sent to the proxy
// or expanded into a model prompt locally.
type Request struct {
	Transcript             string        `json:"transcript"`
	DefaultDurationMinutes int           `json:"defaultDurationMinutes"`
	Categories             []CategoryRef `json:"categories"`
}

// Response is the categorization protocol response.
type Response struct {
	Activities []Activity `json:"activities"`
}

// Activity is one categorized slice of the transcript.
type Activity struct {
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Duration int      `json:"duration"`
}

// NoSpeechActivity is the single activity returned for an empty transcript,
// produced locally without any network call.
func NoSpeechActivity() Activity {
	return Activity{
		Summary:  "No speech detected",
		Category: "other",
		Tags:     []string{},
		Duration: 0,
	}
}

// BuildPrompt expands a protocol request into the model prompt. The duration
// rules mirror what the mobile voice-memo flow needs: the transcript
// describes a span of elapsed real time, and the budget is the total to
// allocate across the described activities.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	sb.WriteString("You are a time-tracking assistant. The user recorded a voice note describing what they did recently.\n\n")
	sb.WriteString(fmt.Sprintf("Transcript: %q\n\n", req.Transcript))
	sb.WriteString(fmt.Sprintf("The note covers %d minutes of elapsed time.\n\n", req.DefaultDurationMinutes))

	sb.WriteString("Available categories (use the id, not the name):\n")
	for _, c := range req.Categories {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", c.ID, c.Name))
	}

	sb.WriteString(`
Rules:
1. Split distinct described activities into separate entries.
2. The durations must add up to the elapsed minutes above, unless the user explicitly states a different total. If the user states a specific duration for one activity, allocate that amount to it and split the remainder across the rest.
3. "category" must be one of the listed ids. Use "other" when no id fits.
4. All tags must be lowercase.

Reply with exactly one JSON object, no prose:
{"activities": [{"summary": "...", "category": "...", "tags": ["..."], "duration": 0}]}
`)

	return sb.String()
}
