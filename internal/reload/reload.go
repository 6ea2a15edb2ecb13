// Package reload runs window-manager/app reload commands after the
// merge-copy engine updates an application's config, gated on whether
// that app appears to be running.
package reload

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/pawlette/pawlette/internal/logger"
)

// Command describes a reload action and its prerequisites.
type Command struct {
	App               string
	Argv              []string
	CheckCommandExists string
	CheckProcess       string
	CheckBusName       string
}

// Registry is the default reload-command table, keyed by app name.
var Registry = map[string]Command{
	"hypr":    {App: "hypr", Argv: []string{"hyprctl", "reload"}, CheckCommandExists: "hyprctl"},
	"waybar":  {App: "waybar", Argv: []string{"killall", "-SIGUSR2", "waybar"}, CheckProcess: "waybar"},
	"kitty":   {App: "kitty", Argv: []string{"kitty", "@", "set-colors", "--all"}, CheckProcess: "kitty"},
	"dunst":   {App: "dunst", Argv: []string{"killall", "-SIGUSR2", "dunst"}, CheckProcess: "dunst", CheckBusName: "org.freedesktop.Notifications"},
	"cava":    {App: "cava", Argv: []string{"killall", "-SIGUSR1", "cava"}, CheckProcess: "cava"},
	"tmux":    {App: "tmux", Argv: []string{"tmux", "source-file", "~/.tmux.conf"}, CheckCommandExists: "tmux"},
}

// Run executes the reload command for app if its declared prerequisites
// hold. A command with no prerequisites declared always runs.
func Run(app string) {
	cmd, ok := Registry[app]
	if !ok {
		return
	}
	if !prerequisitesHold(cmd) {
		logger.Debug("reload prerequisites not met, skipping", "app", app)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, cmd.Argv[0], cmd.Argv[1:]...)
	if out, err := c.CombinedOutput(); err != nil {
		logger.Warn("reload command failed", "app", app, "error", err, "output", strings.TrimSpace(string(out)))
	}
}

func prerequisitesHold(cmd Command) bool {
	if cmd.CheckCommandExists == "" && cmd.CheckProcess == "" && cmd.CheckBusName == "" {
		return true
	}
	if cmd.CheckCommandExists != "" {
		if commandExists(cmd.CheckCommandExists) {
			return true
		}
	}
	if cmd.CheckProcess != "" {
		if processRunning(cmd.CheckProcess) {
			return true
		}
	}
	if cmd.CheckBusName != "" {
		if busNameOwned(cmd.CheckBusName) {
			return true
		}
	}
	return false
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// processRunning runs `pgrep -x` for a process whose name matches name
// exactly.
func processRunning(name string) bool {
	out, err := exec.Command("pgrep", "-x", name).Output()
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(out))) > 0
}

// busNameOwned probes the session D-Bus for a well-known bus name,
// providing a secondary "is it running" signal for apps that register
// themselves on D-Bus before they're visible to a process-name scan
// (e.g. notification daemons activated on first notify-send call).
func busNameOwned(name string) bool {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return false
	}
	defer conn.Close()

	var names []string
	obj := conn.BusObject()
	if err := obj.Call("org.freedesktop.DBus.ListNames", 0).Store(&names); err != nil {
		return false
	}
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
