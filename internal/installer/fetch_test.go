package installer

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name string
	mode int64
	typ  byte
	body string
	link string
}

func buildTarGz(t *testing.T, entries []tarEntry) string {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)

	for _, e := range entries {
		hdr := &tar.Header{
			Name:     e.name,
			Mode:     e.mode,
			Typeflag: e.typ,
			Linkname: e.link,
		}
		if e.typ == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.typ == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())

	path := filepath.Join(t.TempDir(), "archive.tar.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestInstallStripsCommonPrefix(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "mytheme-1.0/", typ: tar.TypeDir, mode: 0o755},
		{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o644, body: "{}"},
	})

	themesDir := t.TempDir()
	target, err := Install(archive, "mytheme", themesDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(target, "theme.json"))
}

func TestInstallRejectsPathTraversal(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o644, body: "{}"},
		{name: "mytheme-1.0/../../../etc/passwd", typ: tar.TypeReg, mode: 0o644, body: "pwned"},
	})

	themesDir := t.TempDir()
	target, err := Install(archive, "mytheme", themesDir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(target, "theme.json"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(filepath.Dir(themesDir)), "etc", "passwd"))

	entries, err := os.ReadDir(filepath.Dir(themesDir))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotEqual(t, "etc", e.Name())
	}
}

func TestInstallSanitizesPermissions(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "mytheme-1.0/", typ: tar.TypeDir, mode: 0o700},
		{name: "mytheme-1.0/script.sh", typ: tar.TypeReg, mode: 0o777, body: "#!/bin/sh\n"},
		{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o600, body: "{}"},
	})

	themesDir := t.TempDir()
	target, err := Install(archive, "mytheme", themesDir)
	require.NoError(t, err)

	dirInfo, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), dirInfo.Mode().Perm())

	scriptInfo, err := os.Stat(filepath.Join(target, "script.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), scriptInfo.Mode().Perm())

	jsonInfo, err := os.Stat(filepath.Join(target, "theme.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), jsonInfo.Mode().Perm())
}

func TestInstallIsCleanReinstall(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "mytheme-1.0/old.json", typ: tar.TypeReg, mode: 0o644, body: "{}"},
	})
	themesDir := t.TempDir()
	target, err := Install(archive, "mytheme", themesDir)
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(target, "old.json"))

	archive2 := buildTarGz(t, []tarEntry{
		{name: "mytheme-2.0/new.json", typ: tar.TypeReg, mode: 0o644, body: "{}"},
	})
	target2, err := Install(archive2, "mytheme", themesDir)
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(target2, "old.json"))
	assert.FileExists(t, filepath.Join(target2, "new.json"))
}

func TestParseNameVersion(t *testing.T) {
	name, version := ParseNameVersion("catppuccin-mocha-1.2.3", "")
	assert.Equal(t, "catppuccin-mocha", name)
	assert.Equal(t, "1.2.3", version)
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, -1, CompareVersions("1.2.0", "1.10.0"))
	assert.Equal(t, 0, CompareVersions("1.2.0", "1.2.0"))
	assert.Equal(t, 1, CompareVersions("2.0.0", "1.9.9"))
}
