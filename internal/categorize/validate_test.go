package categorize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCategories = []CategoryRef{
	{ID: "work", Name: "Work"},
	{ID: "personal", Name: "Personal"},
	{ID: "other", Name: "Other"},
}

func TestRepairActivities_ValidPassthrough(t *testing.T) {
	in := []Activity{{Summary: "coding", Category: "work", Tags: []string{"go"}, Duration: 30}}
	out := RepairActivities(in, testCategories)
	require.Len(t, out, 1)
	assert.Equal(t, in[0], out[0])
}

func TestRepairActivities_MissingSummary(t *testing.T) {
	out := RepairActivities([]Activity{{Category: "work", Tags: []string{}}}, testCategories)
	require.Len(t, out, 1)
	assert.Equal(t, "Untitled activity", out[0].Summary)
}

func TestRepairActivities_UnknownCategory(t *testing.T) {
	out := RepairActivities([]Activity{{Summary: "x", Category: "sleeping", Tags: []string{}}}, testCategories)
	require.Len(t, out, 1)
	assert.Equal(t, "other", out[0].Category)
}

func TestRepairActivities_UnknownCategoryNoOther(t *testing.T) {
	categories := []CategoryRef{{ID: "work", Name: "Work"}, {ID: "personal", Name: "Personal"}}
	out := RepairActivities([]Activity{{Summary: "x", Category: "sleeping", Tags: []string{}}}, categories)
	require.Len(t, out, 1)
	// Without an "other" category the first known id stands in.
	assert.Equal(t, "work", out[0].Category)
}

func TestRepairActivities_EmptyCategorySet(t *testing.T) {
	out := RepairActivities([]Activity{{Summary: "x", Category: "anything", Tags: []string{}}}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, "other", out[0].Category)
}

func TestRepairActivities_LowercasesTags(t *testing.T) {
	out := RepairActivities([]Activity{{
		Summary:  "x",
		Category: "work",
		Tags:     []string{"Go", "  CODE-Review ", "", "meeting"},
	}}, testCategories)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"go", "code-review", "meeting"}, out[0].Tags)
}

func TestNoSpeechActivity(t *testing.T) {
	a := NoSpeechActivity()
	assert.Equal(t, "No speech detected", a.Summary)
	assert.Equal(t, "other", a.Category)
	assert.Empty(t, a.Tags)
	assert.Equal(t, 0, a.Duration)
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(Request{
		Transcript:             "fixed the login bug then had lunch",
		DefaultDurationMinutes: 90,
		Categories:             testCategories,
	})

	assert.Contains(t, prompt, "fixed the login bug then had lunch")
	assert.Contains(t, prompt, "90 minutes")
	assert.Contains(t, prompt, "- work: Work")
	assert.Contains(t, prompt, "- other: Other")
	assert.Contains(t, prompt, `"activities"`)
}
