// Package notify delivers local check-in reminders.
package notify

import (
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/voicetimeapp/voicetime/internal/logging"
)

// ActionRecord is the payload discriminator carried by check-in reminders so
// a tap/click can be told apart from other notifications.
const ActionRecord = "record"

// Notification is one local reminder.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Action  string `json:"action"`
}

// Notifier delivers a notification to the user.
type Notifier interface {
	Send(n Notification) error
}

// DesktopNotifier shells out to the platform notification command
// (notify-send on Linux, osascript on macOS).
type DesktopNotifier struct{}

// NewDesktopNotifier creates a desktop notifier.
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

// Send posts the notification via the platform command.
func (d *DesktopNotifier) Send(n Notification) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`, n.Message, n.Title)
		cmd = exec.Command("osascript", "-e", script)
	default:
		cmd = exec.Command("notify-send", n.Title, n.Message)
	}

	if _, err := exec.LookPath(cmd.Path); err != nil {
		return fmt.Errorf("notification command not available: %w", err)
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	logging.DebugLog("notification sent", "title", n.Title, "action", n.Action)
	return nil
}

// WriterNotifier writes notifications to an io.Writer. Used when no desktop
// environment is available and in tests.
type WriterNotifier struct {
	W io.Writer
}

// NewWriterNotifier creates a writer-backed notifier.
func NewWriterNotifier(w io.Writer) *WriterNotifier {
	return &WriterNotifier{W: w}
}

// Send writes the notification as a single line.
func (n *WriterNotifier) Send(notification Notification) error {
	_, err := fmt.Fprintf(n.W, "[%s] %s: %s\n", notification.Action, notification.Title, notification.Message)
	return err
}
