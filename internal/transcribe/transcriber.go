// Package transcribe converts recorded audio files to text using an
// on-device speech engine. The engine itself is an external collaborator;
// this package owns only the adapter contract.
package transcribe

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/logging"
)

// Result is a transcription outcome. An empty Text with a nil error means
// the engine detected no speech; that is a normal outcome, not a failure.
type Result struct {
	Text       string
	Confidence float64
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	// Transcribe returns the transcript for the audio at uri. Hard engine
	// faults surface as errors.ErrTranscriptionFailed; "no speech" is an
	// empty-string result.
	Transcribe(ctx context.Context, uri string) (*Result, error)
}

// EngineTranscriber shells out to an external speech-to-text binary (for
// example whisper-cli) that prints the transcript to stdout. No retries are
// attempted here; retry policy belongs to the caller.
type EngineTranscriber struct {
	Command string
	Args    []string
}

// NewEngineTranscriber creates a transcriber backed by the given command.
// The audio file path is appended as the final argument.
func NewEngineTranscriber(command string, args ...string) *EngineTranscriber {
	return &EngineTranscriber{Command: command, Args: args}
}

// Transcribe runs the engine on the audio file.
func (t *EngineTranscriber) Transcribe(ctx context.Context, uri string) (*Result, error) {
	if _, err := os.Stat(uri); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscriptionFailed, "audio file missing")
	}

	if _, err := exec.LookPath(t.Command); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTranscriptionFailed, "speech engine not found: "+t.Command)
	}

	args := append(append([]string{}, t.Args...), uri)
	cmd := exec.CommandContext(ctx, t.Command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Warn("speech engine failed", "command", t.Command, "stderr", stderr.String())
		return nil, apperrors.Wrap(apperrors.ErrTranscriptionFailed, "speech engine error")
	}

	text := strings.TrimSpace(stdout.String())
	if isNoSpeech(text) {
		// Explicit no-speech marker from the engine
		return &Result{Text: ""}, nil
	}

	return &Result{Text: text}, nil
}

// isNoSpeech recognizes the engine's empty-output and no-speech markers.
func isNoSpeech(text string) bool {
	switch strings.ToLower(text) {
	case "", "[blank_audio]", "[silence]", "(silence)":
		return true
	}
	return false
}
