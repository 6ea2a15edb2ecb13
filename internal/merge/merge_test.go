package merge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestApplySmartCopiesPlainFiles(t *testing.T) {
	configsDir := t.TempDir()
	targetRoot := t.TempDir()

	writeFile(t, filepath.Join(configsDir, "someapp", "config.conf"), "theme-config\n")

	e := New(map[string]string{".conf": "#"})
	require.NoError(t, e.Apply("nord", configsDir, targetRoot))

	data, err := os.ReadFile(filepath.Join(targetRoot, "someapp", "config.conf"))
	require.NoError(t, err)
	assert.Equal(t, "theme-config\n", string(data))
}

func TestApplySchedulesPrePostPair(t *testing.T) {
	configsDir := t.TempDir()
	targetRoot := t.TempDir()

	writeFile(t, filepath.Join(targetRoot, "someapp", "config.conf"), "existing\n")
	writeFile(t, filepath.Join(configsDir, "someapp", "config.conf.prepaw"), "pre-block")
	writeFile(t, filepath.Join(configsDir, "someapp", "config.conf.postpaw"), "post-block")

	e := New(map[string]string{".conf": "#"})
	require.NoError(t, e.Apply("nord", configsDir, targetRoot))

	data, err := os.ReadFile(filepath.Join(targetRoot, "someapp", "config.conf"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "pre-block")
	assert.Contains(t, content, "post-block")
	assert.Contains(t, content, "existing")
}

func TestApplySchedulesJSONMerge(t *testing.T) {
	configsDir := t.TempDir()
	targetRoot := t.TempDir()

	writeFile(t, filepath.Join(targetRoot, "someapp", "settings.json"), `{"a":1,"b":{"c":2}}`)
	writeFile(t, filepath.Join(configsDir, "someapp", "settings.json.jsonpaw"), `{"b":{"d":3}}`)

	e := New(map[string]string{".json": "//"})
	require.NoError(t, e.Apply("nord", configsDir, targetRoot))

	data, err := os.ReadFile(filepath.Join(targetRoot, "someapp", "settings.json"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, `"a": 1`)
	assert.Contains(t, content, `"c": 2`)
	assert.Contains(t, content, `"d": 3`)
}

func TestApplySkipsMissingPatchTargetWithoutFailing(t *testing.T) {
	configsDir := t.TempDir()
	targetRoot := t.TempDir()

	writeFile(t, filepath.Join(configsDir, "someapp", "config.conf.prepaw"), "pre-block")

	e := New(map[string]string{".conf": "#"})
	assert.NoError(t, e.Apply("nord", configsDir, targetRoot))
}
