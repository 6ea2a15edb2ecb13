package applier

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlette/pawlette/internal/paths"
)

func TestReplaceOrAppendKeyAppendsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtkrc")
	require.NoError(t, replaceOrAppendKey(path, "gtk-theme-name", "nord", "="))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gtk-theme-name=nord")
}

func TestReplaceOrAppendKeyIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gtkrc")
	require.NoError(t, os.WriteFile(path, []byte("gtk-theme-name=old\nother=1\n"), 0o644))

	require.NoError(t, replaceOrAppendKey(path, "gtk-theme-name", "nord", "="))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "gtk-theme-name=nord")
	assert.Contains(t, content, "other=1")
	assert.Equal(t, 1, countOccurrences(content, "gtk-theme-name="))
}

func TestEnsureIniSectionCreatesSectionWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qt5ct.conf")
	require.NoError(t, ensureIniSection(path, "Appearance", "icon_theme", "pawlette-nord"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[Appearance]")
	assert.Contains(t, content, "icon_theme=pawlette-nord")
}

func TestEnsureIniSectionUpdatesExistingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qt5ct.conf")
	require.NoError(t, os.WriteFile(path, []byte("[Appearance]\nicon_theme=old\n\n[Other]\nfoo=bar\n"), 0o644))

	require.NoError(t, ensureIniSection(path, "Appearance", "icon_theme", "pawlette-nord"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "icon_theme=pawlette-nord")
	assert.NotContains(t, content, "icon_theme=old")
	assert.Contains(t, content, "[Other]")
	assert.Contains(t, content, "foo=bar")
}

func TestGTKApplyCreatesSymlinkAndUpdatesConfigs(t *testing.T) {
	home := t.TempDir()
	configRoot := t.TempDir()
	themeRoot := t.TempDir()

	require.NoError(t, os.Setenv("HOME", home))
	require.NoError(t, os.Setenv("XDG_CONFIG_HOME", configRoot))
	defer os.Unsetenv("XDG_CONFIG_HOME")

	require.NoError(t, os.MkdirAll(filepath.Join(themeRoot, "gtk-theme"), 0o755))

	a := GTK()
	require.NoError(t, a.Apply("nord", themeRoot))

	linkPath := filepath.Join(home, ".themes", "pawlette-nord")
	info, err := os.Lstat(linkPath)
	require.NoError(t, err)
	assert.True(t, info.Mode()&os.ModeSymlink != 0)

	data, err := os.ReadFile(filepath.Join(paths.ConfigRoot(), "gtk-3.0", "settings.ini"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "gtk-theme-name=pawlette-nord")
}

func countOccurrences(s, substr string) int {
	count := 0
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			count++
			i += len(substr) - 1
		}
	}
	return count
}
