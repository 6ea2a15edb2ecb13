// Package notify sends best-effort desktop notifications for theme
// install/apply completion, via notify-send or dunstify.
package notify

import (
	"os/exec"

	"github.com/pawlette/pawlette/internal/logger"
)

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyCritical Urgency = "critical"
)

// Notification is a single desktop notification request.
type Notification struct {
	Summary string
	Body    string
	Icon    string
	Urgency Urgency
}

func command() string {
	if _, err := exec.LookPath("notify-send"); err == nil {
		return "notify-send"
	}
	if _, err := exec.LookPath("dunstify"); err == nil {
		return "dunstify"
	}
	return ""
}

// Send fires a notification, logging (not returning) any failure — a
// missing notification daemon should never fail a theme operation.
func Send(n Notification) {
	cmd := command()
	if cmd == "" {
		return
	}

	args := []string{"-a", "pawlette"}
	if n.Urgency != "" {
		args = append(args, "-u", string(n.Urgency))
	}
	if n.Icon != "" {
		args = append(args, "-i", n.Icon)
	}
	args = append(args, n.Summary)
	if n.Body != "" {
		args = append(args, n.Body)
	}

	if out, err := exec.Command(cmd, args...).CombinedOutput(); err != nil {
		logger.Warn("notification failed", "error", err, "output", string(out))
	}
}

// ThemeApplied notifies that a theme finished applying.
func ThemeApplied(name, version string) {
	Send(Notification{
		Summary: "Theme applied",
		Body:    name + " v" + version,
		Urgency: UrgencyNormal,
	})
}

// ThemeInstalled notifies that a theme finished installing.
func ThemeInstalled(name, version string) {
	Send(Notification{
		Summary: "Theme installed",
		Body:    name + " v" + version,
		Urgency: UrgencyNormal,
	})
}
