// Package parser parses human-entered durations and timestamps for manual
// entry logging.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationResult represents the result of parsing a duration.
type DurationResult struct {
	Duration time.Duration
	Valid    bool
}

// durationPattern matches expressions like "2h", "30m", "1h30m", "2.5h".
var durationPattern = regexp.MustCompile(`(?i)^(\d+(?:\.\d+)?)\s*(h|hr|hrs|hour|hours|m|min|mins|minute|minutes)?\s*(?:(\d+(?:\.\d+)?)\s*(m|min|mins|minute|minutes))?$`)

// ParseDuration parses a human-readable duration string.
// Supports formats like "2h", "30 minutes", "1h30m", "2.5h", "90m".
func ParseDuration(input string) DurationResult {
	input = strings.TrimSpace(input)
	if input == "" {
		return DurationResult{}
	}

	// Standard Go duration format first (e.g. "2h30m")
	if d, err := time.ParseDuration(input); err == nil && d > 0 {
		return DurationResult{Duration: d, Valid: true}
	}

	matches := durationPattern.FindStringSubmatch(input)
	if matches == nil {
		return DurationResult{}
	}

	var total time.Duration

	if matches[1] != "" {
		value, _ := strconv.ParseFloat(matches[1], 64)
		unit := strings.ToLower(matches[2])
		if unit == "" {
			// Bare numbers read as minutes
			unit = "m"
		}
		total += unitToDuration(value, unit)
	}

	if matches[3] != "" {
		value, _ := strconv.ParseFloat(matches[3], 64)
		total += unitToDuration(value, "m")
	}

	if total <= 0 {
		return DurationResult{}
	}
	return DurationResult{Duration: total, Valid: true}
}

// Minutes parses a duration string and returns whole minutes.
func Minutes(input string) (int, bool) {
	result := ParseDuration(input)
	if !result.Valid {
		return 0, false
	}
	minutes := int(result.Duration.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return minutes, true
}

func unitToDuration(value float64, unit string) time.Duration {
	switch unit {
	case "h", "hr", "hrs", "hour", "hours":
		return time.Duration(value * float64(time.Hour))
	default:
		return time.Duration(value * float64(time.Minute))
	}
}
