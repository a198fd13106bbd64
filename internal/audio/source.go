package audio

import (
	"io"
	"os/exec"
	"strings"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
)

// ExecSource captures microphone audio by running an external recorder
// command that writes raw audio to stdout (for example
// "sox -d -r 16000 -c 1 -t wav -"). Which engine actually backs the
// microphone is an implementation detail kept behind Source.
type ExecSource struct {
	Command string
	Args    []string
}

// NewExecSource creates a source backed by the given capture command.
func NewExecSource(command string, args ...string) *ExecSource {
	return &ExecSource{Command: command, Args: args}
}

// Open starts the capture process and returns its stdout stream. Closing the
// stream stops the process.
func (s *ExecSource) Open() (io.ReadCloser, error) {
	if _, err := exec.LookPath(s.Command); err != nil {
		return nil, apperrors.NewUserError(
			"audio capture command not found: "+s.Command,
			"install an audio recorder (e.g. sox) or set VOICETIME_RECORD_CMD",
		)
	}

	cmd := exec.Command(s.Command, s.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, apperrors.NewSystemErrorWithOp("open microphone", "failed to attach to capture process", err)
	}

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		if isPermissionError(err, stderr.String()) {
			return nil, apperrors.ErrPermissionDenied
		}
		return nil, apperrors.NewSystemErrorWithOp("open microphone", "failed to start capture process", err)
	}

	return &processStream{ReadCloser: stdout, cmd: cmd}, nil
}

// processStream ties the stream lifetime to the capture process.
type processStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (p *processStream) Close() error {
	err := p.ReadCloser.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	_ = p.cmd.Wait()
	return err
}

func isPermissionError(err error, stderr string) bool {
	msg := strings.ToLower(err.Error() + " " + stderr)
	return strings.Contains(msg, "permission denied") || strings.Contains(msg, "not permitted")
}
