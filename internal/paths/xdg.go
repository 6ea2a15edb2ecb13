// Package paths resolves the XDG base directories pawlette operates under
// and the canonical locations it keeps inside them.
package paths

import (
	"os"
	"path/filepath"
)

var (
	ConfigDir string
	DataDir   string
	StateDir  string
	CacheDir  string

	ThemesDir          string
	SystemThemesDir    string
	ManifestFile       string
	StateRepoDir       string
	BackupsDir         string
	AppConfigFile      string
	DefaultLogFile     string
)

const SystemThemesPath = "/usr/share/pawlette"

func init() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}

	ConfigDir = filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", filepath.Join(home, ".config")), "pawlette")
	DataDir = filepath.Join(getEnvOrDefault("XDG_DATA_HOME", filepath.Join(home, ".local", "share")), "pawlette")
	StateDir = filepath.Join(getEnvOrDefault("XDG_STATE_HOME", filepath.Join(home, ".local", "state")), "pawlette")
	CacheDir = filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", filepath.Join(home, ".cache")), "pawlette")

	ThemesDir = filepath.Join(DataDir, "themes")
	SystemThemesDir = SystemThemesPath
	ManifestFile = filepath.Join(StateDir, "installed_themes.json")
	StateRepoDir = filepath.Join(StateDir, "config_state.git")
	BackupsDir = filepath.Join(StateDir, "backups")
	AppConfigFile = filepath.Join(ConfigDir, "pawlette.json")
	DefaultLogFile = filepath.Join(StateDir, "pawlette.log")
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ConfigRoot is the XDG config root pawlette's state-engine work-tree is
// rooted at: $XDG_CONFIG_HOME itself, not pawlette's own config subdir.
func ConfigRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return getEnvOrDefault("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
}

// VersionFile returns the side-channel version file path for a theme name.
func VersionFile(themeName string) string {
	return filepath.Join(StateDir, themeName+".version")
}

// SessionType reads XDG_SESSION_TYPE on each call, normalized to
// x11/wayland/unknown.
func SessionType() string {
	switch os.Getenv("XDG_SESSION_TYPE") {
	case "x11":
		return "x11"
	case "wayland":
		return "wayland"
	default:
		return "unknown"
	}
}

// EnsureDirs creates the directories pawlette needs to exist up front.
func EnsureDirs() error {
	for _, d := range []string{ConfigDir, DataDir, StateDir, CacheDir, ThemesDir, BackupsDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
