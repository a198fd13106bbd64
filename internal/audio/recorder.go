// Package audio manages the microphone lifecycle for a recording session:
// permission, start/stop/cancel, and moving the finished file into durable
// app storage. The actual audio engine sits behind the Source interface;
// platform quirks stay on that side of the boundary.
package audio

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/logging"
)

// Source produces the recorded audio stream. Implementations wrap the
// platform microphone engine (mono, 16kHz, speech-optimized).
type Source interface {
	// Open asks for microphone access and returns the live audio stream.
	// Must return errors.ErrPermissionDenied when the user declines.
	Open() (io.ReadCloser, error)
}

// Result describes a completed (non-cancelled) recording.
type Result struct {
	URI             string
	DurationSeconds int
}

// Recorder is the capture contract consumed by the session orchestrator.
type Recorder interface {
	Start() error
	Stop() (*Result, error)
	Cancel() error
}

// FileRecorder writes the source stream to a temporary file and moves it
// into the audio directory on stop. Exactly one audio file persists per
// completed recording.
type FileRecorder struct {
	source   Source
	audioDir string

	mu        sync.Mutex
	stream    io.ReadCloser
	tempPath  string
	startedAt time.Time
	done      chan struct{}
	copyErr   error
}

// NewFileRecorder creates a recorder that stores finished recordings under
// audioDir.
func NewFileRecorder(source Source, audioDir string) *FileRecorder {
	return &FileRecorder{source: source, audioDir: audioDir}
}

// Start acquires the microphone and begins writing the stream to a temp
// file. Returns errors.ErrPermissionDenied if access is refused and
// errors.ErrSessionBusy if a recording is already active.
func (r *FileRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream != nil {
		return apperrors.ErrSessionBusy
	}

	stream, err := r.source.Open()
	if err != nil {
		return err
	}

	temp, err := os.CreateTemp("", "voicetime-*.wav")
	if err != nil {
		stream.Close()
		return apperrors.NewSystemErrorWithOp("start recording", "failed to create temp audio file", err)
	}

	r.stream = stream
	r.tempPath = temp.Name()
	r.startedAt = time.Now()
	r.done = make(chan struct{})
	r.copyErr = nil

	go func() {
		defer close(r.done)
		defer temp.Close()
		if _, err := io.Copy(temp, stream); err != nil {
			r.copyErr = err
		}
	}()

	logging.DebugLog("recording started", "temp", r.tempPath)
	return nil
}

// Stop finalizes the recording, moves the file into durable storage under a
// freshly generated filename, and returns the URI plus elapsed seconds.
// Returns (nil, nil) when no recording is active.
func (r *FileRecorder) Stop() (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return nil, nil
	}

	elapsed := int(time.Since(r.startedAt).Seconds())
	if err := r.finalize(); err != nil {
		r.reset()
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		r.reset()
		return nil, err
	}

	if err := os.MkdirAll(r.audioDir, 0755); err != nil {
		r.reset()
		return nil, apperrors.NewSystemErrorWithOp("stop recording", "failed to create audio directory", err)
	}

	dest := filepath.Join(r.audioDir, fmt.Sprintf("recording-%s.wav", id.String()))
	if err := moveFile(r.tempPath, dest); err != nil {
		r.reset()
		return nil, apperrors.NewSystemErrorWithOp("stop recording", "failed to move audio file", err)
	}

	r.reset()
	logging.DebugLog("recording stopped", "uri", dest, "seconds", elapsed)
	return &Result{URI: dest, DurationSeconds: elapsed}, nil
}

// Cancel discards the in-progress recording entirely. The temp file delete
// is best-effort. No-op when nothing is active.
func (r *FileRecorder) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stream == nil {
		return nil
	}

	if err := r.finalize(); err != nil {
		logging.Warn("cancel: audio stream close failed", "error", err)
	}
	if err := os.Remove(r.tempPath); err != nil && !os.IsNotExist(err) {
		logging.Warn("cancel: temp audio delete failed", "path", r.tempPath, "error", err)
	}

	r.reset()
	logging.DebugLog("recording cancelled")
	return nil
}

// finalize closes the stream and waits for the writer goroutine to drain.
func (r *FileRecorder) finalize() error {
	closeErr := r.stream.Close()
	<-r.done
	if r.copyErr != nil {
		return apperrors.NewSystemErrorWithOp("finalize recording", "audio stream write failed", r.copyErr)
	}
	return closeErr
}

func (r *FileRecorder) reset() {
	r.stream = nil
	r.tempPath = ""
	r.done = nil
	r.copyErr = nil
}

// moveFile renames src to dest, falling back to copy+delete across
// filesystems.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
