package ui

import (
	"fmt"
	"html"
	"os/exec"
	"runtime"
	"strings"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	cmd := exec.Command("osascript", "-e", appleScript(title, message))
	return cmd.Run()
}

var appleScriptEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// appleScript renders a display notification command with both strings
// quoted as AppleScript literals
func appleScript(title, message string) string {
	return fmt.Sprintf(`display notification "%s" with title "%s"`,
		appleScriptEscaper.Replace(message), appleScriptEscaper.Replace(title))
}

// PowerShell expands variables and backtick escapes inside @"..."@
var powerShellEscaper = strings.NewReplacer("`", "``", "$", "`$")

func toastText(s string) string {
	return powerShellEscaper.Replace(html.EscapeString(s))
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("imgharvest").Show($toast)
	`, toastText(title), toastText(message))

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

// Notifier prints run events and mirrors them as desktop notifications
type Notifier struct {
	sender  NotificationSender
	desktop bool
}

// NewNotifier creates a new Notifier based on the current platform.
// Desktop notifications are only sent when desktop is true.
func NewNotifier(desktop bool) *Notifier {
	var sender NotificationSender

	switch runtime.GOOS {
	case "linux":
		sender = &LinuxNotificationSender{}
	case "darwin":
		sender = &MacOSNotificationSender{}
	case "windows":
		sender = &WindowsNotificationSender{}
	}

	return &Notifier{sender: sender, desktop: desktop}
}

// NewNotifierWithSender creates a Notifier that always uses sender
func NewNotifierWithSender(sender NotificationSender) *Notifier {
	return &Notifier{sender: sender, desktop: true}
}

func (n *Notifier) send(title, message string) {
	if !n.desktop || n.sender == nil {
		return
	}
	// notifications are best effort
	_ = n.sender.Send(title, message)
}

// SendNotification sends a desktop notification and prints to console
func (n *Notifier) SendNotification(title, message string) {
	if !quietMode {
		fmt.Fprintf(output, "\n%s: %s\n", Cyan(title), Yellow(message))
	}
	n.send(title, message)
}

// SendError sends an error notification
func (n *Notifier) SendError(title, message string) {
	fmt.Fprintf(output, "\n%s: %s\n", Red(title), Red(message))
	n.send(title, message)
}

// SendSuccess sends a success notification
func (n *Notifier) SendSuccess(title, message string) {
	if !quietMode {
		fmt.Fprintf(output, "\n%s: %s\n", Green(title), Green(message))
	}
	n.send(title, message)
}
