package model

import (
	"fmt"
	"time"
)

// TimeEntry represents one slice of tracked activity. A single recording may
// spawn several entries; those share RecordedAt, Transcript and AudioURI.
type TimeEntry struct {
	Key        string    `json:"key"`
	RecordedAt int64     `json:"recorded_at"`
	Duration   int       `json:"duration"`
	Transcript *string   `json:"transcript,omitempty"`
	Summary    *string   `json:"summary,omitempty"`
	CategoryID *string   `json:"category_id,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	AudioURI   *string   `json:"audio_uri,omitempty"`
	Processed  bool      `json:"processed"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SetKey sets the database key for this entry.
func (e *TimeEntry) SetKey(key string) {
	e.Key = key
}

// GetKey returns the database key for this entry.
func (e *TimeEntry) GetKey() string {
	return e.Key
}

// RecordedTime returns the recording stop time as a time.Time.
func (e *TimeEntry) RecordedTime() time.Time {
	return time.Unix(e.RecordedAt, 0)
}

// IsCategorized returns true if the entry carries a category reference.
func (e *TimeEntry) IsCategorized() bool {
	return e.CategoryID != nil && *e.CategoryID != ""
}

// GenerateEntryKey generates a database key for an entry using UUID v7.
func GenerateEntryKey(uuid string) string {
	return fmt.Sprintf("%s:%s", PrefixEntry, uuid)
}

// NewTimeEntry creates a new entry recorded at the given instant. Processed is
// computed once here, from creation-time field presence; later edits never
// recompute it.
func NewTimeEntry(recordedAt int64, durationMinutes int, transcript, summary, categoryID, audioURI *string, tags []string) *TimeEntry {
	now := time.Now()
	return &TimeEntry{
		RecordedAt: recordedAt,
		Duration:   durationMinutes,
		Transcript: transcript,
		Summary:    summary,
		CategoryID: categoryID,
		Tags:       tags,
		AudioURI:   audioURI,
		Processed:  summary != nil && categoryID != nil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// EntryPatch describes a partial update of an entry. Nil fields are left
// untouched.
type EntryPatch struct {
	Duration   *int
	Summary    *string
	CategoryID *string
	Tags       []string
}

// Apply applies the patch to the entry and bumps UpdatedAt. The Processed
// flag reflects categorization completeness at creation and is deliberately
// not recomputed here.
func (e *TimeEntry) Apply(p EntryPatch) {
	if p.Duration != nil && *p.Duration >= 0 {
		e.Duration = *p.Duration
	}
	if p.Summary != nil {
		e.Summary = p.Summary
	}
	if p.CategoryID != nil {
		if *p.CategoryID == "" {
			e.CategoryID = nil
		} else {
			e.CategoryID = p.CategoryID
		}
	}
	if p.Tags != nil {
		e.Tags = p.Tags
	}
	e.UpdatedAt = time.Now()
}

// StringPtr returns a pointer to s. Convenience for optional fields.
func StringPtr(s string) *string { return &s }
