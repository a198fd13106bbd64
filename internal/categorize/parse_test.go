package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean object", `{"a":1}`, `{"a":1}`},
		{"prose before and after", `Sure! Here you go: {"a":1} hope that helps`, `{"a":1}`},
		{"code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"nested objects", `{"a":{"b":{"c":1}}}`, `{"a":{"b":{"c":1}}}`},
		{"braces inside strings", `{"summary":"used {curly} braces"}`, `{"summary":"used {curly} braces"}`},
		{"escaped quote inside string", `{"summary":"said \"{\" here"}`, `{"summary":"said \"{\" here"}`},
		{"first of several objects", `{"a":1} {"b":2}`, `{"a":1}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSONObject_Errors(t *testing.T) {
	for _, input := range []string{"", "no json here", `{"unterminated": true`} {
		_, err := ExtractJSONObject(input)
		assert.ErrorIs(t, err, apperrors.ErrCategorizationFailed, "input %q", input)
	}
}

func TestParseActivities_Array(t *testing.T) {
	raw := `{"activities":[
		{"summary":"coding","category":"work","tags":["go"],"duration":40},
		{"summary":"lunch","category":"personal","tags":[],"duration":20}
	]}`

	activities, err := ParseActivities(raw, 60)
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "coding", activities[0].Summary)
	assert.Equal(t, 40, activities[0].Duration)
	assert.Equal(t, []string{"go"}, activities[0].Tags)
	assert.Equal(t, "lunch", activities[1].Summary)
	assert.Equal(t, 20, activities[1].Duration)
}

func TestParseActivities_FlatFallback(t *testing.T) {
	// Older prompts produced a single flat object. Missing duration on this
	// path falls back to the full budget.
	raw := `{"summary":"walked the dog","category":"personal","tags":["outdoors"]}`

	activities, err := ParseActivities(raw, 45)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "walked the dog", activities[0].Summary)
	assert.Equal(t, "personal", activities[0].Category)
	assert.Equal(t, 45, activities[0].Duration)
}

func TestParseActivities_ArrayMissingDurationIsZero(t *testing.T) {
	raw := `{"activities":[{"summary":"coding","category":"work","tags":[]}]}`

	activities, err := ParseActivities(raw, 60)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, 0, activities[0].Duration)
}

func TestParseActivities_CoercesMalformedFields(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		wantDuration int
		wantTags     []string
	}{
		{
			"string duration",
			`{"activities":[{"summary":"x","category":"work","tags":[],"duration":"forty"}]}`,
			0, []string{},
		},
		{
			"negative duration",
			`{"activities":[{"summary":"x","category":"work","tags":[],"duration":-10}]}`,
			0, []string{},
		},
		{
			"fractional duration rounds",
			`{"activities":[{"summary":"x","category":"work","tags":[],"duration":12.6}]}`,
			13, []string{},
		},
		{
			"tags as string",
			`{"activities":[{"summary":"x","category":"work","tags":"go","duration":5}]}`,
			5, []string{},
		},
		{
			"tags null",
			`{"activities":[{"summary":"x","category":"work","tags":null,"duration":5}]}`,
			5, []string{},
		},
		{
			"flat object non-numeric duration keeps zero, not budget",
			`{"summary":"x","category":"work","duration":"soon"}`,
			0, []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			activities, err := ParseActivities(tc.raw, 60)
			require.NoError(t, err)
			require.Len(t, activities, 1)
			assert.Equal(t, tc.wantDuration, activities[0].Duration)
			assert.Equal(t, tc.wantTags, activities[0].Tags)
		})
	}
}

func TestParseActivities_MalformedJSON(t *testing.T) {
	_, err := ParseActivities(`{"activities":[}`, 60)
	assert.ErrorIs(t, err, apperrors.ErrCategorizationFailed)
}

func TestParseActivities_EmptyArrayFails(t *testing.T) {
	// A model that answers with zero activities has refused the task; the
	// caller needs an error so its fallback entry fires.
	activities, err := ParseActivities(`{"activities":[]}`, 60)
	require.ErrorIs(t, err, apperrors.ErrCategorizationFailed)
	assert.Nil(t, activities)
}
