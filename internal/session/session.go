// Package session implements the recording orchestrator: the state machine
// that takes a user gesture through audio capture, transcription, model
// categorization, and atomic persistence, with a defined fallback at every
// failure point so a stopped recording always leaves at least one entry
// behind.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/voicetimeapp/voicetime/internal/audio"
	"github.com/voicetimeapp/voicetime/internal/categorize"
	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/logging"
	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/storage"
	"github.com/voicetimeapp/voicetime/internal/transcribe"
)

// State is the orchestrator's current stage.
type State string

const (
	StateIdle         State = "idle"
	StateRecording    State = "recording"
	StateTranscribing State = "transcribing"
	StateCategorizing State = "categorizing"
	StateError        State = "error"
)

// Warnings surfaced on gracefully-degraded outcomes.
const (
	WarnNoTranscript     = "saved without transcript"
	WarnNoCategorization = "saved but categorization failed"
)

// Outcome describes a completed (non-cancelled) recording session.
type Outcome struct {
	Entries    []*model.TimeEntry
	RecordedAt time.Time
	Budget     int    // elapsed-time budget in minutes
	Transcript string // empty when transcription failed or found no speech
	Warning    string // non-empty on degraded outcomes
}

// Session coordinates one recording at a time. Callers are expected to gate
// concurrent use at the surface; re-entrant starts are rejected here anyway.
type Session struct {
	recorder    audio.Recorder
	transcriber transcribe.Transcriber
	categorizer categorize.Categorizer
	entries     *storage.EntryRepo
	categories  *storage.CategoryRepo
	settings    *storage.SettingsRepo

	mu       sync.Mutex
	state    State
	errMsg   string
	elapsed  int
	stopTick chan struct{}

	autoCh chan *Outcome

	// now is swappable for tests.
	now func() time.Time
}

// New creates an idle session orchestrator.
func New(recorder audio.Recorder, transcriber transcribe.Transcriber, categorizer categorize.Categorizer,
	entries *storage.EntryRepo, categories *storage.CategoryRepo, settings *storage.SettingsRepo) *Session {
	return &Session{
		recorder:    recorder,
		transcriber: transcriber,
		categorizer: categorizer,
		entries:     entries,
		categories:  categories,
		settings:    settings,
		state:       StateIdle,
		autoCh:      make(chan *Outcome, 1),
		now:         time.Now,
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ErrorMessage returns the message carried by the error state, if any.
func (s *Session) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Elapsed returns the live recording duration in seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// AutoStopped delivers the outcome of a recording that hit the configured
// duration cap.
func (s *Session) AutoStopped() <-chan *Outcome {
	return s.autoCh
}

// Start begins a recording session. Allowed from idle and from error (a
// fresh start is the only exit from the error state, and it clears the
// message). Any other state rejects with errors.ErrSessionBusy.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state != StateIdle && s.state != StateError {
		s.mu.Unlock()
		return apperrors.ErrSessionBusy
	}
	s.errMsg = ""
	s.mu.Unlock()

	maxSeconds := model.DefaultSettings().MaxRecordingSeconds
	if cfg, err := s.settings.Get(); err == nil {
		maxSeconds = cfg.MaxRecordingSeconds
	}

	if err := s.recorder.Start(); err != nil {
		s.fail(fmt.Sprintf("could not start recording: %v", err))
		return err
	}

	s.mu.Lock()
	s.state = StateRecording
	s.elapsed = 0
	s.stopTick = make(chan struct{})
	stop := s.stopTick
	s.mu.Unlock()

	go s.tick(stop, maxSeconds)
	return nil
}

// tick advances the live duration counter once per second and auto-stops
// the recording at the configured cap.
func (s *Session) tick(stop chan struct{}, maxSeconds int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != StateRecording {
				s.mu.Unlock()
				return
			}
			s.elapsed++
			hitCap := maxSeconds > 0 && s.elapsed >= maxSeconds
			s.mu.Unlock()

			if hitCap {
				logging.Info("recording reached duration cap, auto-stopping", "seconds", maxSeconds)
				outcome, err := s.Stop(context.Background())
				if err == nil && outcome != nil {
					select {
					case s.autoCh <- outcome:
					default:
					}
				}
				return
			}
		}
	}
}

// Stop finalizes the recording and runs the pipeline to completion:
// transcription, categorization, and persistence, degrading gracefully at
// each stage. Calling Stop with no recording in flight is a no-op.
func (s *Session) Stop(ctx context.Context) (outcome *Outcome, err error) {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return nil, nil
	}
	s.state = StateTranscribing
	close(s.stopTick)
	s.mu.Unlock()

	// A panic anywhere in the pipeline lands in the error state instead of
	// crashing the app.
	defer func() {
		if r := recover(); r != nil {
			s.fail(fmt.Sprintf("unexpected error: %v", r))
			outcome, err = nil, fmt.Errorf("unexpected error: %v", r)
		}
	}()

	result, stopErr := s.recorder.Stop()
	if stopErr != nil {
		s.fail(fmt.Sprintf("could not stop recording: %v", stopErr))
		return nil, stopErr
	}
	if result == nil {
		s.fail("recording produced no audio")
		return nil, apperrors.ErrNoActiveRecording
	}

	recordedAt := s.now()
	budget, budgetErr := s.computeBudget(recordedAt)
	if budgetErr != nil {
		s.fail(fmt.Sprintf("could not read settings: %v", budgetErr))
		return nil, budgetErr
	}

	logging.DebugLog("recording stopped",
		"uri", result.URI, "seconds", result.DurationSeconds, "budget_minutes", budget)

	transcript, transcribeErr := s.transcriber.Transcribe(ctx, result.URI)
	if transcribeErr != nil {
		// The audio and the elapsed time survive even when the engine dies.
		logging.Warn("transcription failed, saving degraded entry", "error", transcribeErr)
		return s.persistDegraded(recordedAt, budget, nil, result.URI, WarnNoTranscript)
	}

	s.setState(StateCategorizing)

	refs, refsErr := s.categoryRefs()
	if refsErr != nil {
		s.fail(fmt.Sprintf("could not load categories: %v", refsErr))
		return nil, refsErr
	}

	activities, catErr := s.categorizer.Categorize(ctx, transcript.Text, budget, refs)
	if catErr == nil && len(activities) == 0 {
		// A stopped recording must always leave at least one entry behind.
		catErr = apperrors.Wrap(apperrors.ErrCategorizationFailed, "no activities returned")
	}
	if catErr != nil {
		logging.Warn("categorization failed, saving degraded entry", "error", catErr)
		warning := WarnNoCategorization
		if suggestion := apperrors.Suggestion(catErr); suggestion != "" {
			warning = fmt.Sprintf("%s (%s)", WarnNoCategorization, suggestion)
		}
		return s.persistDegraded(recordedAt, budget, &transcript.Text, result.URI, warning)
	}

	entries := make([]*model.TimeEntry, 0, len(activities))
	for _, a := range activities {
		categoryID := a.Category
		entries = append(entries, model.NewTimeEntry(
			recordedAt.Unix(),
			a.Duration,
			&transcript.Text,
			&a.Summary,
			&categoryID,
			&result.URI,
			a.Tags,
		))
	}

	// All entries from one recording land in a single batch; partial splits
	// must not survive a mid-write crash.
	if err := s.entries.CreateBatch(entries); err != nil {
		s.fail(fmt.Sprintf("could not save entries: %v", err))
		return nil, err
	}

	// Check-in advances only after the entries exist.
	if err := s.settings.CheckIn(recordedAt.Unix()); err != nil {
		s.fail(fmt.Sprintf("could not update check-in time: %v", err))
		return nil, err
	}

	s.setState(StateIdle)
	logging.Info("recording categorized", "entries", len(entries), "budget_minutes", budget)
	return &Outcome{
		Entries:    entries,
		RecordedAt: recordedAt,
		Budget:     budget,
		Transcript: transcript.Text,
	}, nil
}

// Cancel discards an in-progress recording: no persistence, no check-in
// advance. Only meaningful in the recording state; otherwise a no-op.
func (s *Session) Cancel() error {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return nil
	}
	s.state = StateIdle
	s.elapsed = 0
	close(s.stopTick)
	s.mu.Unlock()

	return s.recorder.Cancel()
}

// computeBudget returns the elapsed-time budget in minutes: time since the
// previous check-in, or the configured notification interval on the first
// ever recording. The recording is a voice memo about elapsed real time,
// not a stopwatch, so the raw capture duration is deliberately not used.
func (s *Session) computeBudget(recordedAt time.Time) (int, error) {
	cfg, err := s.settings.Get()
	if err != nil {
		return 0, err
	}

	last, ok := cfg.LastCheckIn()
	if !ok {
		return cfg.NotificationInterval, nil
	}

	minutes := int(math.Round(recordedAt.Sub(last).Seconds() / 60))
	if minutes < 1 {
		minutes = 1
	}
	return minutes, nil
}

// persistDegraded writes the single fallback entry for a recovered failure
// and still advances the check-in clock.
func (s *Session) persistDegraded(recordedAt time.Time, budget int, transcript *string, audioURI, warning string) (*Outcome, error) {
	entry := model.NewTimeEntry(recordedAt.Unix(), budget, transcript, nil, nil, &audioURI, nil)
	if err := s.entries.Create(entry); err != nil {
		s.fail(fmt.Sprintf("could not save entry: %v", err))
		return nil, err
	}
	if err := s.settings.CheckIn(recordedAt.Unix()); err != nil {
		s.fail(fmt.Sprintf("could not update check-in time: %v", err))
		return nil, err
	}

	s.setState(StateIdle)

	text := ""
	if transcript != nil {
		text = *transcript
	}
	return &Outcome{
		Entries:    []*model.TimeEntry{entry},
		RecordedAt: recordedAt,
		Budget:     budget,
		Transcript: text,
		Warning:    warning,
	}, nil
}

// categoryRefs loads the current category set as protocol refs.
func (s *Session) categoryRefs() ([]categorize.CategoryRef, error) {
	categories, err := s.categories.List()
	if err != nil {
		return nil, err
	}
	refs := make([]categorize.CategoryRef, 0, len(categories))
	for _, c := range categories {
		refs = append(refs, categorize.CategoryRef{ID: c.ID, Name: c.Name})
	}
	return refs, nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) fail(msg string) {
	s.mu.Lock()
	s.state = StateError
	s.errMsg = msg
	s.mu.Unlock()
	logging.Error("session entered error state", "message", msg)
}
