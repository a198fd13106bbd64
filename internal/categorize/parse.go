package categorize

import (
	"encoding/json"
	"strings"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
)

// wireActivity tolerates the malformed field types models produce. Tags and
// duration are coerced after decoding.
type wireActivity struct {
	Summary  string          `json:"summary"`
	Category string          `json:"category"`
	Tags     json.RawMessage `json:"tags"`
	Duration json.RawMessage `json:"duration"`
}

// wireResponse accepts either the activities-array shape or, embedded in the
// same struct, a single flat activity (the backward-compatible shape older
// model prompts produced).
type wireResponse struct {
	Activities []wireActivity `json:"activities"`
	wireActivity
}

// ExtractJSONObject locates the first {...} span in model output. Models wrap
// JSON in prose and code fences often enough that assuming a clean body on
// the first try is a bug.
func ExtractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch ch {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}

	return "", apperrors.Wrap(apperrors.ErrCategorizationFailed, "unterminated JSON object in response")
}

// ParseActivities decodes the extracted JSON object into raw activities.
// A response without an activities array is accepted as a single flat
// activity; on that path a missing duration defaults to budgetMinutes
// instead of 0.
func ParseActivities(raw string, budgetMinutes int) ([]Activity, error) {
	var wire wireResponse
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, "malformed JSON in response")
	}

	if wire.Activities != nil {
		// An empty array is a refusal, not a result. The caller's fallback
		// must produce an entry either way, so surface it as a failure.
		if len(wire.Activities) == 0 {
			return nil, apperrors.Wrap(apperrors.ErrCategorizationFailed, "response contained no activities")
		}
		activities := make([]Activity, 0, len(wire.Activities))
		for _, w := range wire.Activities {
			activities = append(activities, w.coerce(0))
		}
		return activities, nil
	}

	// Single-object fallback
	return []Activity{wire.wireActivity.coerce(budgetMinutes)}, nil
}

// coerce turns a wire activity into a well-typed one. Non-array tags and
// non-numeric durations become []/0; a duration that is absent entirely
// falls back to missingDuration (0 on the array path, the budget on the
// single-object path).
func (w wireActivity) coerce(missingDuration int) Activity {
	a := Activity{
		Summary:  strings.TrimSpace(w.Summary),
		Category: strings.TrimSpace(w.Category),
		Tags:     []string{},
		Duration: missingDuration,
	}

	if len(w.Tags) > 0 {
		var tags []string
		if err := json.Unmarshal(w.Tags, &tags); err == nil && tags != nil {
			a.Tags = tags
		}
	}

	if len(w.Duration) > 0 {
		var minutes float64
		if err := json.Unmarshal(w.Duration, &minutes); err != nil || minutes < 0 {
			a.Duration = 0
		} else {
			a.Duration = int(minutes + 0.5)
		}
	}

	return a
}
