package installer

import (
	"archive/tar"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlette/pawlette/internal/catalog"
	"github.com/pawlette/pawlette/internal/manifest"
	"github.com/pawlette/pawlette/internal/paths"
)

// archiveServer serves a pre-built tar.gz fixture at archivePath for any request path.
func archiveServer(t *testing.T, archivePath string) *httptest.Server {
	t.Helper()
	data, err := os.ReadFile(archivePath)
	require.NoError(t, err)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
}

func TestInstallFromGatesConfirmOnCommunitySource(t *testing.T) {
	paths.ThemesDir = t.TempDir()
	paths.ManifestFile = paths.ThemesDir + "-manifest.json"
	paths.StateDir = t.TempDir()

	archive := buildTarGz(t, []tarEntry{{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o644, body: "{}"}})
	srv := archiveServer(t, archive)
	defer srv.Close()

	official := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer official.Close()
	community := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mytheme " + srv.URL + "\n"))
	}))
	defer community.Close()

	origOfficial, origCommunity := catalog.OfficialURL, catalog.CommunityURL
	catalog.OfficialURL, catalog.CommunityURL = official.URL, community.URL
	defer func() { catalog.OfficialURL, catalog.CommunityURL = origOfficial, origCommunity }()

	m, err := manifest.Load(paths.ManifestFile)
	require.NoError(t, err)

	calls := 0
	confirm := func(title string, lines []string) bool {
		calls++
		return true
	}

	inst := New(m, confirm)
	name, err := inst.InstallFrom("mytheme")
	require.NoError(t, err)
	assert.Equal(t, "mytheme", name)
	assert.Equal(t, 1, calls, "community source must be gated by Confirm exactly once")
}

func TestInstallFromSkipsConfirmOnOfficialSource(t *testing.T) {
	paths.ThemesDir = t.TempDir()
	paths.ManifestFile = paths.ThemesDir + "-manifest.json"
	paths.StateDir = t.TempDir()

	archive := buildTarGz(t, []tarEntry{{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o644, body: "{}"}})
	srv := archiveServer(t, archive)
	defer srv.Close()

	official := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mytheme " + srv.URL + "\n"))
	}))
	defer official.Close()
	community := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer community.Close()

	origOfficial, origCommunity := catalog.OfficialURL, catalog.CommunityURL
	catalog.OfficialURL, catalog.CommunityURL = official.URL, community.URL
	defer func() { catalog.OfficialURL, catalog.CommunityURL = origOfficial, origCommunity }()

	m, err := manifest.Load(paths.ManifestFile)
	require.NoError(t, err)

	calls := 0
	confirm := func(title string, lines []string) bool {
		calls++
		return true
	}

	inst := New(m, confirm)
	name, err := inst.InstallFrom("mytheme")
	require.NoError(t, err)
	assert.Equal(t, "mytheme", name)
	assert.Equal(t, 0, calls, "official source must never be gated by Confirm")
}

func TestInstallFromAbortsWhenConfirmRefuses(t *testing.T) {
	paths.ThemesDir = t.TempDir()
	paths.ManifestFile = paths.ThemesDir + "-manifest.json"
	paths.StateDir = t.TempDir()

	archive := buildTarGz(t, []tarEntry{{name: "mytheme-1.0/theme.json", typ: tar.TypeReg, mode: 0o644, body: "{}"}})
	srv := archiveServer(t, archive)
	defer srv.Close()

	official := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer official.Close()
	community := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mytheme " + srv.URL + "\n"))
	}))
	defer community.Close()

	origOfficial, origCommunity := catalog.OfficialURL, catalog.CommunityURL
	catalog.OfficialURL, catalog.CommunityURL = official.URL, community.URL
	defer func() { catalog.OfficialURL, catalog.CommunityURL = origOfficial, origCommunity }()

	m, err := manifest.Load(paths.ManifestFile)
	require.NoError(t, err)

	inst := New(m, func(title string, lines []string) bool { return false })
	_, err = inst.InstallFrom("mytheme")
	assert.Error(t, err)
	_, ok := m.Get("mytheme")
	assert.False(t, ok, "refused install must not leave a manifest record")
}
