package theme

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	_ "golang.org/x/image/webp"
)

// Info is the per-theme record printed by `get-themes-info`.
type Info struct {
	Path       string `json:"path"`
	Logo       string `json:"logo,omitempty"`
	Wallpapers []string `json:"wallpapers,omitempty"`
	GTKFolder  string `json:"gtk-folder,omitempty"`
	Source     string `json:"source"`
	Version    string `json:"version"`
}

// ImageDims decodes only the image header, returning width/height without
// reading full pixel data. jpeg/png/webp are all registered decoders.
func ImageDims(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image header: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// Wallpapers lists the paths of the wallpaper files bundled with the theme,
// sorted by file name; subdirectories are skipped.
func (t *Theme) Wallpapers() []string {
	dir := t.WallpapersDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	return out
}

// HasGTK reports whether the theme bundles a gtk-theme/ subtree.
func (t *Theme) HasGTK() bool {
	info, err := os.Stat(t.GTKDir())
	return err == nil && info.IsDir()
}
