package paths

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTypeNormalizes(t *testing.T) {
	orig := os.Getenv("XDG_SESSION_TYPE")
	defer os.Setenv("XDG_SESSION_TYPE", orig)

	os.Setenv("XDG_SESSION_TYPE", "wayland")
	assert.Equal(t, "wayland", SessionType())

	os.Setenv("XDG_SESSION_TYPE", "x11")
	assert.Equal(t, "x11", SessionType())

	os.Setenv("XDG_SESSION_TYPE", "tty")
	assert.Equal(t, "unknown", SessionType())
}

func TestVersionFileUsesStateDir(t *testing.T) {
	origStateDir := StateDir
	defer func() { StateDir = origStateDir }()

	StateDir = "/tmp/pawlette-state-test"
	assert.Equal(t, "/tmp/pawlette-state-test/nord.version", VersionFile("nord"))
}

func TestConfigRootPrefersEnvOverride(t *testing.T) {
	orig := os.Getenv("XDG_CONFIG_HOME")
	defer os.Setenv("XDG_CONFIG_HOME", orig)

	os.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config-home")
	assert.Equal(t, "/tmp/custom-config-home", ConfigRoot())
}
