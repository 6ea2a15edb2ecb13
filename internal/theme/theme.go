// Package theme holds the in-memory representation of an installed theme
// and its on-disk layout conventions.
package theme

import "path/filepath"

// Theme is the in-memory representation of a theme's on-disk layout.
// Any subtree listed here is optional; the theme never references paths
// outside its own root.
type Theme struct {
	Name string
	Root string
}

// ConfigsDir is the configs/<app>/... tree merged into the XDG config root.
func (t *Theme) ConfigsDir() string { return filepath.Join(t.Root, "configs") }

// GTKDir is the optional gtk-theme/ tree.
func (t *Theme) GTKDir() string { return filepath.Join(t.Root, "gtk-theme") }

// IconsDir is the optional icons/ tree (may contain cursors/).
func (t *Theme) IconsDir() string { return filepath.Join(t.Root, "icons") }

// CursorsDir is the optional icons/cursors subtree.
func (t *Theme) CursorsDir() string { return filepath.Join(t.IconsDir(), "cursors") }

// WallpapersDir is the optional wallpapers/ tree.
func (t *Theme) WallpapersDir() string { return filepath.Join(t.Root, "wallpapers") }

// LogoPath is the optional <root>/logo.png. The path is returned whether
// or not the file exists; no default logo is substituted.
func (t *Theme) LogoPath() string {
	candidate := filepath.Join(t.Root, "logo.png")
	return candidate
}

// New builds a Theme rooted at dir under the given themes directory.
func New(name, themesDir string) *Theme {
	return &Theme{Name: name, Root: filepath.Join(themesDir, name)}
}
