// Package applier implements the GTK/icon/cursor system appliers as one
// record type parameterized over {config key, session keys, symlink root,
// source subfolder, extra Qt configs}.
package applier

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/paths"
)

// Applier is the shared GTK/icon/cursor applier shape.
type Applier struct {
	Name          string
	ConfigKey     string
	GsettingsKey  string
	XsettingsKey  string
	SymlinkRoot   string
	SourceFolder  func(themeRoot string) string
	QtConfigs     []string

	// AfterApply hooks additional per-applier behavior (GTK's gtk-4.0
	// mirroring, cursor's index.theme + Xresources update).
	AfterApply func(a *Applier, themeName, themeRoot string) error
}

// GTK builds the GTK applier: symlinks ~/.themes/pawlette-<theme>, updates
// gtkrc/settings.ini, mirrors gtk-4.0 assets.
func GTK() *Applier {
	a := &Applier{
		Name:         "gtk",
		ConfigKey:    "gtk-theme-name",
		GsettingsKey: "gtk-theme",
		XsettingsKey: "Net/ThemeName",
		SymlinkRoot:  filepath.Join(home(), ".themes"),
		SourceFolder: func(themeRoot string) string { return filepath.Join(themeRoot, "gtk-theme") },
	}
	a.AfterApply = gtkAfterApply
	return a
}

// Icons builds the icon-theme applier: symlinks ~/.icons/pawlette-<theme>,
// updates icon-theme config keys.
func Icons() *Applier {
	return &Applier{
		Name:         "icons",
		ConfigKey:    "icon-theme-name",
		GsettingsKey: "icon-theme",
		XsettingsKey: "Net/IconThemeName",
		SymlinkRoot:  filepath.Join(home(), ".icons"),
		SourceFolder: func(themeRoot string) string { return filepath.Join(themeRoot, "icons") },
	}
}

// Cursor builds the cursor applier: symlinks, updates icon-theme-cursor
// keys, writes ~/.icons/default/index.theme, updates .Xresources + xrdb.
func Cursor() *Applier {
	a := &Applier{
		Name:         "cursor",
		ConfigKey:    "cursor-theme-name",
		GsettingsKey: "cursor-theme",
		XsettingsKey: "Net/CursorThemeName",
		SymlinkRoot:  filepath.Join(home(), ".icons"),
		SourceFolder: func(themeRoot string) string { return filepath.Join(themeRoot, "icons", "cursors") },
	}
	a.AfterApply = cursorAfterApply
	return a
}

func home() string {
	h, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return h
}

// Apply runs the shared apply steps then the applier's hook, if any.
func (a *Applier) Apply(themeName, themeRoot string) error {
	linkPath := filepath.Join(a.SymlinkRoot, "pawlette-"+themeName)
	target := a.SourceFolder(themeRoot)

	if err := paths.CreateSymlink(target, linkPath); err != nil {
		return fmt.Errorf("%s: create symlink: %w", a.Name, err)
	}

	linkName := "pawlette-" + themeName
	if err := updateGTKConfigs(a.ConfigKey, linkName); err != nil {
		logger.Warn("gtk config update failed", "applier", a.Name, "error", err)
	}
	if err := updateQtConfigs(a.QtConfigs, a.ConfigKey, linkName); err != nil {
		logger.Warn("qt config update failed", "applier", a.Name, "error", err)
	}
	if err := applyLiveSession(a.GsettingsKey, a.XsettingsKey, linkName); err != nil {
		logger.Warn("live session apply failed", "applier", a.Name, "error", err)
	}

	if a.AfterApply != nil {
		return a.AfterApply(a, themeName, themeRoot)
	}
	return nil
}

var gtkConfigFiles = []string{
	filepath.Join("gtk-2.0", "gtkrc"),
	filepath.Join("gtk-3.0", "settings.ini"),
	filepath.Join("gtk-4.0", "settings.ini"),
}

// gtkKeyFor maps a generic config key to each gtk config file's actual
// ini/rc key name.
func gtkKeyFor(configKey string) string {
	switch configKey {
	case "gtk-theme-name":
		return "gtk-theme-name"
	case "icon-theme-name":
		return "gtk-icon-theme-name"
	case "cursor-theme-name":
		return "gtk-cursor-theme-name"
	default:
		return configKey
	}
}

func updateGTKConfigs(configKey, value string) error {
	key := gtkKeyFor(configKey)
	var firstErr error
	for _, rel := range gtkConfigFiles {
		path := filepath.Join(paths.ConfigRoot(), rel)
		if err := replaceOrAppendKey(path, key, value, "="); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func updateQtConfigs(qtConfigs []string, configKey, value string) error {
	key := gtkKeyFor(configKey)
	for _, path := range qtConfigs {
		if err := ensureIniSection(path, "Appearance", key, value); err != nil {
			return err
		}
	}
	return nil
}

// replaceOrAppendKey idempotently replaces a `key=value` line in an ini or
// rc-style file, appending it if absent.
func replaceOrAppendKey(path, key, value, sep string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	lines := strings.Split(string(content), "\n")
	re := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(key) + `\s*` + regexp.QuoteMeta(sep))
	found := false
	for i, line := range lines {
		if re.MatchString(line) {
			lines[i] = fmt.Sprintf("%s%s%s", key, sep, value)
			found = true
			break
		}
	}
	if !found {
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, fmt.Sprintf("%s%s%s", key, sep, value))
	}

	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return paths.AtomicWrite(path, []byte(out), 0o644)
}

// ensureIniSection ensures [section] exists in path and that key=value is
// set within it, idempotently.
func ensureIniSection(path, section, key, value string) error {
	content, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	lines := strings.Split(string(content), "\n")
	sectionHeader := "[" + section + "]"
	sectionIdx := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == sectionHeader {
			sectionIdx = i
			break
		}
	}
	if sectionIdx == -1 {
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		lines = append(lines, sectionHeader, fmt.Sprintf("%s=%s", key, value))
		return writeLines(path, lines)
	}

	re := regexp.MustCompile(`^\s*` + regexp.QuoteMeta(key) + `\s*=`)
	end := len(lines)
	for i := sectionIdx + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "[") {
			end = i
			break
		}
	}
	found := false
	for i := sectionIdx + 1; i < end; i++ {
		if re.MatchString(lines[i]) {
			lines[i] = fmt.Sprintf("%s=%s", key, value)
			found = true
			break
		}
	}
	if !found {
		insertLine := fmt.Sprintf("%s=%s", key, value)
		lines = append(lines[:end], append([]string{insertLine}, lines[end:]...)...)
	}

	return writeLines(path, lines)
}

func writeLines(path string, lines []string) error {
	out := strings.Join(lines, "\n")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return paths.AtomicWrite(path, []byte(out), 0o644)
}

// applyLiveSession sets the setting on the running session: gsettings
// under Wayland, xsettingsd config + killall -HUP under X11.
func applyLiveSession(gsettingsKey, xsettingsKey, value string) error {
	switch paths.SessionType() {
	case "wayland":
		cmd := exec.Command("gsettings", "set", "org.gnome.desktop.interface", gsettingsKey, value)
		return cmd.Run()
	case "x11":
		xsettingsdPath := filepath.Join(paths.ConfigRoot(), "xsettingsd", "xsettingsd.conf")
		if err := replaceOrAppendKey(xsettingsdPath, xsettingsKey, `"`+value+`"`, " "); err != nil {
			return err
		}
		return exec.Command("killall", "-HUP", "xsettingsd").Run()
	default:
		return nil
	}
}

func gtkAfterApply(a *Applier, themeName, themeRoot string) error {
	gtk4Src := filepath.Join(a.SourceFolder(themeRoot), "gtk-4.0")
	gtk4Dst := filepath.Join(paths.ConfigRoot(), "gtk-4.0")

	for _, name := range []string{"gtk.css", "gtk-dark.css", "assets"} {
		src := filepath.Join(gtk4Src, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(gtk4Dst, name)
		if err := paths.CreateSymlink(src, dst); err != nil {
			logger.Warn("gtk4 mirror symlink failed", "name", name, "error", err)
		}
	}
	return nil
}

func cursorAfterApply(a *Applier, themeName, themeRoot string) error {
	indexPath := filepath.Join(home(), ".icons", "default", "index.theme")
	content := fmt.Sprintf("[Icon Theme]\nInherits=%s\n", themeName)
	if err := paths.AtomicWrite(indexPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write index.theme: %w", err)
	}

	xresources := filepath.Join(home(), ".Xresources")
	if err := replaceOrAppendKey(xresources, "Xcursor.theme", themeName, ":"); err != nil {
		logger.Warn("xresources update failed", "error", err)
	}
	if err := exec.Command("xrdb", "-merge", xresources).Run(); err != nil {
		logger.Debug("xrdb merge failed (no X11 session?)", "error", err)
	}

	dataLink := filepath.Join(paths.DataDir, "icons", "pawlette-"+themeName, "cursors")
	cursorsSrc := filepath.Join(themeRoot, "icons", "cursors")
	if _, err := os.Stat(cursorsSrc); err == nil {
		if err := paths.CreateSymlink(cursorsSrc, dataLink); err != nil {
			logger.Warn("cursor data-dir symlink failed", "error", err)
		}
	}
	return nil
}

// ApplyAll runs GTK, Icons, and Cursor in order for themeName rooted at
// themeRoot, collecting non-fatal per-applier errors via logger.
func ApplyAll(themeName, themeRoot string, qtConfigs []string) {
	appliers := []*Applier{GTK(), Icons(), Cursor()}
	for _, a := range appliers {
		a.QtConfigs = qtConfigs
		if err := a.Apply(themeName, themeRoot); err != nil {
			logger.Error("system applier failed", "applier", a.Name, "error", err)
		}
	}
}
