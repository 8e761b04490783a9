package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// DesktopNotifier shows notifications with notify-send on Linux and
// osascript on macOS. On other systems it does nothing.
type DesktopNotifier struct {
	goos string
	run  func(name string, args ...string) error
}

// NewDesktopNotifier creates a notifier for the current OS
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{
		goos: runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Notify sends a desktop notification
func (d *DesktopNotifier) Notify(notification Notification) error {
	var err error
	switch d.goos {
	case "linux":
		err = d.run("notify-send", notification.Title, notification.Message)
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`,
			escapeAppleScript(notification.Message), escapeAppleScript(notification.Title))
		err = d.run("osascript", "-e", script)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to send desktop notification: %w", err)
	}
	return nil
}

// Close cleans up resources (no-op for desktop notifier)
func (d *DesktopNotifier) Close() error {
	return nil
}

// escapeAppleScript escapes quotes and backslashes for AppleScript
func escapeAppleScript(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	return s
}
