package model

import (
	"fmt"
	"time"
)

// Settings holds application configuration (singleton).
type Settings struct {
	Key                  string `json:"key"`
	NotificationInterval int    `json:"notification_interval"` // minutes
	NotificationEnabled  bool   `json:"notification_enabled"`
	NotificationStart    int    `json:"notification_start_hour"`
	NotificationEnd      int    `json:"notification_end_hour"`
	APIKey               string `json:"api_key,omitempty"`
	MaxRecordingSeconds  int    `json:"max_recording_seconds"`
	LastCheckInTime      *int64 `json:"last_check_in_time,omitempty"` // unix seconds
}

// SetKey sets the database key for these settings.
func (s *Settings) SetKey(key string) {
	s.Key = key
}

// GetKey returns the database key for these settings.
func (s *Settings) GetKey() string {
	return s.Key
}

// DefaultSettings returns the settings used when none are stored yet.
func DefaultSettings() *Settings {
	return &Settings{
		Key:                  KeySettings,
		NotificationInterval: 60,
		NotificationEnabled:  true,
		NotificationStart:    9,
		NotificationEnd:      21,
		MaxRecordingSeconds:  120,
	}
}

// Validate checks settings invariants.
func (s *Settings) Validate() error {
	if s.NotificationInterval < 1 {
		return fmt.Errorf("notification interval must be at least 1 minute, got %d", s.NotificationInterval)
	}
	if s.NotificationStart < 0 || s.NotificationStart > 23 {
		return fmt.Errorf("notification start hour must be 0-23, got %d", s.NotificationStart)
	}
	if s.NotificationEnd < 0 || s.NotificationEnd > 23 {
		return fmt.Errorf("notification end hour must be 0-23, got %d", s.NotificationEnd)
	}
	if s.NotificationStart >= s.NotificationEnd {
		return fmt.Errorf("notification start hour %d must be before end hour %d", s.NotificationStart, s.NotificationEnd)
	}
	if s.MaxRecordingSeconds < 1 {
		return fmt.Errorf("max recording duration must be positive, got %d", s.MaxRecordingSeconds)
	}
	return nil
}

// CheckIn advances the last check-in anchor to t.
func (s *Settings) CheckIn(t time.Time) {
	ts := t.Unix()
	s.LastCheckInTime = &ts
}

// LastCheckIn returns the last check-in time, or false if none exists yet.
func (s *Settings) LastCheckIn() (time.Time, bool) {
	if s.LastCheckInTime == nil {
		return time.Time{}, false
	}
	return time.Unix(*s.LastCheckInTime, 0), true
}
