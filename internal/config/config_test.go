package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Equal(t, Default().MaxBackups, cfg.MaxBackups)
	assert.Equal(t, "#", cfg.CommentToken(".conf"))
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pawlette.json")
	require.NoError(t, os.WriteFile(path, []byte("not valid json{{{"), 0o644))

	cfg := Load(path)
	assert.Equal(t, Default().MaxBackups, cfg.MaxBackups)
}

func TestLoadValidFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pawlette.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"max_backups": 9, "comment_styles": {".foo": ";"}}`), 0o644))

	cfg := Load(path)
	assert.Equal(t, 9, cfg.MaxBackups)
	assert.Equal(t, ";", cfg.CommentToken(".foo"))
}

func TestCommentTokenFallsBackToHash(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "#", cfg.CommentToken(".unknownext"))
}
