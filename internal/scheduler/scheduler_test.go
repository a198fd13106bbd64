package scheduler

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/notify"
	"github.com/voicetimeapp/voicetime/internal/storage"
)

func newTestScheduler(t *testing.T, out *bytes.Buffer) (*Scheduler, *storage.SettingsRepo) {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	settings := storage.NewSettingsRepo(db)
	s := NewScheduler(settings, notify.NewWriterNotifier(out))
	t.Cleanup(s.CancelAll)
	return s, settings
}

func TestReminderSpec(t *testing.T) {
	tests := []struct {
		interval int
		want     string
	}{
		{15, "*/15 * * * *"},
		{30, "*/30 * * * *"},
		{60, "0 */1 * * *"},
		{120, "0 */2 * * *"},
		{180, "0 */3 * * *"},
		// Intervals that do not align with the clock fall back to a fixed
		// period instead of silently degrading to the nearest divisor.
		{45, "@every 45m"},
		{59, "@every 59m"},
		{90, "@every 90m"},
	}
	for _, tc := range tests {
		cfg := model.DefaultSettings()
		cfg.NotificationInterval = tc.interval
		assert.Equal(t, tc.want, reminderSpec(cfg), "interval %d", tc.interval)
	}
}

func TestWithinActiveHours(t *testing.T) {
	cfg := model.DefaultSettings()
	cfg.NotificationStart = 9
	cfg.NotificationEnd = 21

	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local)
	tests := []struct {
		hour int
		want bool
	}{
		{8, false},
		{9, true}, // start is inclusive
		{14, true},
		{20, true},
		{21, false}, // end is exclusive
		{23, false},
	}
	for _, tc := range tests {
		at := day.Add(time.Duration(tc.hour) * time.Hour)
		assert.Equal(t, tc.want, withinActiveHours(at, cfg), "hour %d", tc.hour)
	}
}

func TestScheduler_ScheduleAndList(t *testing.T) {
	var out bytes.Buffer
	s, _ := newTestScheduler(t, &out)

	require.NoError(t, s.Schedule())

	scheduled := s.List()
	require.Len(t, scheduled, 1)
	assert.Equal(t, "0 */1 * * *", scheduled[0].Spec)
	assert.Equal(t, notify.ActionRecord, scheduled[0].Action)
	assert.True(t, scheduled[0].Next.After(time.Now()))
}

func TestScheduler_DisabledSchedulesNothing(t *testing.T) {
	var out bytes.Buffer
	s, settings := newTestScheduler(t, &out)

	require.NoError(t, settings.SetValue("notification_enabled", "false"))
	require.NoError(t, s.Schedule())
	assert.Empty(t, s.List())
}

func TestScheduler_CancelAll(t *testing.T) {
	var out bytes.Buffer
	s, _ := newTestScheduler(t, &out)

	require.NoError(t, s.Schedule())
	require.NotEmpty(t, s.List())

	s.CancelAll()
	assert.Empty(t, s.List())
}

func TestScheduler_ReschedulePicksUpNewInterval(t *testing.T) {
	var out bytes.Buffer
	s, settings := newTestScheduler(t, &out)

	require.NoError(t, s.Schedule())
	require.NoError(t, settings.SetValue("notification_interval", "15"))
	require.NoError(t, s.Schedule())

	scheduled := s.List()
	require.Len(t, scheduled, 1)
	assert.Equal(t, "*/15 * * * *", scheduled[0].Spec)
}

func TestScheduler_FireWithinActiveHours(t *testing.T) {
	var out bytes.Buffer
	s, _ := newTestScheduler(t, &out)
	s.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 0, 0, 0, time.Local)
	}

	s.fire()

	assert.Contains(t, out.String(), "Time check-in")
	assert.Contains(t, out.String(), "[record]")
}

func TestScheduler_FireOutsideActiveHoursIsSilent(t *testing.T) {
	var out bytes.Buffer
	s, _ := newTestScheduler(t, &out)
	s.now = func() time.Time {
		return time.Date(2026, 8, 31, 3, 0, 0, 0, time.Local)
	}

	s.fire()
	assert.Empty(t, out.String())
}

func TestScheduler_FireRespectsDisableWithoutReschedule(t *testing.T) {
	var out bytes.Buffer
	s, settings := newTestScheduler(t, &out)
	s.now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 0, 0, 0, time.Local)
	}

	// Disabling between triggers takes effect immediately; fire re-reads
	// the settings.
	require.NoError(t, settings.SetValue("notification_enabled", "false"))
	s.fire()
	assert.Empty(t, out.String())
}
