package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voicetimeapp/voicetime/internal/audio"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/session"
	"github.com/voicetimeapp/voicetime/internal/transcribe"
)

// Default external engine commands. Both are overridable because the
// reliable engine differs per platform.
const (
	defaultRecordCmd     = "sox -d -q -r 16000 -c 1 -t wav -"
	defaultTranscribeCmd = "whisper-cli --no-timestamps --output-txt-stdout"
)

// recordCmd runs one full recording session interactively.
var recordCmd = &cobra.Command{
	Use:     "record",
	Aliases: []string{"r"},
	Short:   "Record a voice note and file it as time entries",
	Long: `Record a voice note describing what you've been doing. Press Enter to
stop, or Esc to cancel. The note is transcribed, split into categorized
activities by the language model, and saved as one or more entries
covering the time since your last check-in.

Recording stops automatically at the configured duration cap.`,
	RunE: runRecord,
}

func runRecord(cmd *cobra.Command, args []string) error {
	recorder := audio.NewFileRecorder(buildSource(), ctx.AudioDir)
	transcriber := buildTranscriber()
	categorizer, err := ctx.Categorizer()
	if err != nil {
		return err
	}

	sess := session.New(recorder, transcriber, categorizer,
		ctx.EntryRepo, ctx.CategoryRepo, ctx.SettingsRepo)

	if err := sess.Start(); err != nil {
		return err
	}

	ctx.Formatter.Println("● Recording... press Enter to stop, Esc to cancel")

	action, err := waitForKey(sess)
	if err != nil {
		_ = sess.Cancel()
		return err
	}

	switch action {
	case keyCancel:
		if err := sess.Cancel(); err != nil {
			return err
		}
		ctx.Formatter.Println("Recording discarded.")
		return nil

	case keyAutoStopped:
		outcome := <-sess.AutoStopped()
		return printOutcome(outcome)

	default:
		ctx.Formatter.Println("Processing...")
		outcome, err := sess.Stop(context.Background())
		if err != nil {
			if msg := sess.ErrorMessage(); msg != "" {
				return fmt.Errorf("%s", msg)
			}
			return err
		}
		if outcome == nil {
			return nil
		}
		return printOutcome(outcome)
	}
}

type keyAction int

const (
	keyStop keyAction = iota
	keyCancel
	keyAutoStopped
)

// waitForKey blocks until the user stops or cancels, or the session
// auto-stops at the duration cap.
func waitForKey(sess *session.Session) (keyAction, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		// Non-interactive stdin: wait for the cap to stop the recording.
		<-sess.AutoStopped()
		return keyAutoStopped, nil
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return keyStop, err
	}
	defer term.Restore(fd, oldState)

	keys := make(chan byte, 1)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				return
			}
			keys <- buf[0]
			return
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case key := <-keys:
			if key == 27 || key == 'q' { // Esc
				return keyCancel, nil
			}
			return keyStop, nil
		case <-ticker.C:
			if sess.State() != session.StateRecording {
				// The duration cap fired mid-wait.
				return keyAutoStopped, nil
			}
			elapsed := sess.Elapsed()
			fmt.Printf("\r● %02d:%02d  ", elapsed/60, elapsed%60)
		}
	}
}

// printOutcome reports the saved entries and any degradation warning.
func printOutcome(outcome *session.Outcome) error {
	if outcome == nil {
		return nil
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(outcome)
	}

	if outcome.Warning != "" {
		ctx.Formatter.Warning(outcome.Warning)
	}

	for _, e := range outcome.Entries {
		summary := "(no summary)"
		if e.Summary != nil {
			summary = *e.Summary
		}
		category := "uncategorized"
		if e.CategoryID != nil {
			category = *e.CategoryID
		}
		ctx.Formatter.Printf("  %s  %-12s %s\n",
			output.FormatMinutes(e.Duration), category, summary)
	}

	ctx.Formatter.Success(fmt.Sprintf("Saved %d entr%s covering %s.",
		len(outcome.Entries), pluralY(len(outcome.Entries)), output.FormatMinutes(outcome.Budget)))
	return nil
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}

// buildSource creates the microphone source from the environment.
func buildSource() audio.Source {
	command := defaultRecordCmd
	if env := os.Getenv("VOICETIME_RECORD_CMD"); env != "" {
		command = env
	}
	parts := strings.Fields(command)
	return audio.NewExecSource(parts[0], parts[1:]...)
}

// buildTranscriber creates the speech engine adapter from the environment.
func buildTranscriber() transcribe.Transcriber {
	command := defaultTranscribeCmd
	if env := os.Getenv("VOICETIME_TRANSCRIBE_CMD"); env != "" {
		command = env
	}
	parts := strings.Fields(command)
	return transcribe.NewEngineTranscriber(parts[0], parts[1:]...)
}
