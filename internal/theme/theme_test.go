package theme

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThemeLayoutPaths(t *testing.T) {
	th := New("nord", "/themes")
	assert.Equal(t, "/themes/nord", th.Root)
	assert.Equal(t, "/themes/nord/configs", th.ConfigsDir())
	assert.Equal(t, "/themes/nord/icons/cursors", th.CursorsDir())
	assert.Equal(t, "/themes/nord/logo.png", th.LogoPath())
}

func TestHasGTKReflectsSubtree(t *testing.T) {
	root := t.TempDir()
	th := &Theme{Name: "nord", Root: root}
	assert.False(t, th.HasGTK())

	require.NoError(t, os.MkdirAll(th.GTKDir(), 0o755))
	assert.True(t, th.HasGTK())
}

func TestWallpapersListsFiles(t *testing.T) {
	root := t.TempDir()
	th := &Theme{Name: "nord", Root: root}
	require.NoError(t, os.MkdirAll(th.WallpapersDir(), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(th.WallpapersDir(), "a.png"), []byte("x"), 0o644))

	wallpapers := th.Wallpapers()
	assert.Len(t, wallpapers, 1)
}

func TestImageDimsReadsHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logo.png")
	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	img.Set(0, 0, color.White)

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	w, h, err := ImageDims(path)
	require.NoError(t, err)
	assert.Equal(t, 16, w)
	assert.Equal(t, 8, h)
}
