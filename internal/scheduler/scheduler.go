// Package scheduler provides cron-based check-in reminders for the daemon.
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/voicetimeapp/voicetime/internal/logging"
	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/notify"
	"github.com/voicetimeapp/voicetime/internal/storage"
)

// Scheduled describes one scheduled reminder trigger for display.
type Scheduled struct {
	Spec   string    `json:"spec"`
	Next   time.Time `json:"next"`
	Action string    `json:"action"`
}

// Scheduler fires repeating check-in reminders within the configured active
// hours.
type Scheduler struct {
	settings *storage.SettingsRepo
	notifier notify.Notifier

	mu      sync.Mutex
	cron    *cron.Cron
	specs   []string
	entries []cron.EntryID

	// now is swappable for tests.
	now func() time.Time
}

// NewScheduler creates a scheduler backed by the settings store.
func NewScheduler(settings *storage.SettingsRepo, notifier notify.Notifier) *Scheduler {
	return &Scheduler{
		settings: settings,
		notifier: notifier,
		now:      time.Now,
	}
}

// Schedule (re)registers the reminder triggers from the current settings and
// starts the cron runner. Disabled notifications leave nothing scheduled.
func (s *Scheduler) Schedule() error {
	cfg, err := s.settings.Get()
	if err != nil {
		return err
	}

	s.CancelAll()

	if !cfg.NotificationEnabled {
		logging.Info("reminders disabled, nothing scheduled")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron = cron.New()
	spec := reminderSpec(cfg)
	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	s.specs = []string{spec}
	s.entries = []cron.EntryID{id}
	s.cron.Start()

	logging.Info("reminders scheduled",
		"interval_minutes", cfg.NotificationInterval,
		"start_hour", cfg.NotificationStart,
		"end_hour", cfg.NotificationEnd)
	return nil
}

// CancelAll stops the cron runner and clears every scheduled trigger.
func (s *Scheduler) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.cron = nil
	}
	s.specs = nil
	s.entries = nil
}

// List returns the currently scheduled triggers.
func (s *Scheduler) List() []Scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron == nil {
		return nil
	}

	var scheduled []Scheduled
	for i, id := range s.entries {
		entry := s.cron.Entry(id)
		scheduled = append(scheduled, Scheduled{
			Spec:   s.specs[i],
			Next:   entry.Next,
			Action: notify.ActionRecord,
		})
	}
	return scheduled
}

// fire sends one check-in reminder if the current time falls inside the
// active-hours window. The hour gate re-reads settings so edits apply
// without a reschedule.
func (s *Scheduler) fire() {
	cfg, err := s.settings.Get()
	if err != nil {
		logging.Warn("reminder skipped, settings unavailable", "error", err)
		return
	}
	if !cfg.NotificationEnabled || !withinActiveHours(s.now(), cfg) {
		return
	}

	err = s.notifier.Send(notify.Notification{
		Title:   "Time check-in",
		Message: "What have you been up to? Record a quick voice note.",
		Action:  notify.ActionRecord,
	})
	if err != nil {
		logging.Warn("reminder delivery failed", "error", err)
	}
}

// reminderSpec builds the cron spec for the configured interval. Intervals
// that divide evenly into the clock fire on clean minute or hour marks;
// everything else runs on a fixed period so the configured interval is
// honored exactly.
func reminderSpec(cfg *model.Settings) string {
	interval := cfg.NotificationInterval
	switch {
	case interval < 60 && 60%interval == 0:
		return fmt.Sprintf("*/%d * * * *", interval)
	case interval%60 == 0:
		return fmt.Sprintf("0 */%d * * *", interval/60)
	default:
		return fmt.Sprintf("@every %dm", interval)
	}
}

// withinActiveHours reports whether t falls inside [start, end).
func withinActiveHours(t time.Time, cfg *model.Settings) bool {
	hour := t.Hour()
	return hour >= cfg.NotificationStart && hour < cfg.NotificationEnd
}
