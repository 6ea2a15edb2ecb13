// Package orchestrator implements the end-to-end apply/restore/reset/
// uninstall flows, wiring the state engine, merge-copy engine, patch
// engine, and system appliers together.
package orchestrator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pawlette/pawlette/internal/applier"
	"github.com/pawlette/pawlette/internal/config"
	"github.com/pawlette/pawlette/internal/installer"
	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/manifest"
	"github.com/pawlette/pawlette/internal/merge"
	"github.com/pawlette/pawlette/internal/notify"
	"github.com/pawlette/pawlette/internal/patch"
	"github.com/pawlette/pawlette/internal/paths"
	"github.com/pawlette/pawlette/internal/perrors"
	"github.com/pawlette/pawlette/internal/reload"
	"github.com/pawlette/pawlette/internal/state"
	"github.com/pawlette/pawlette/internal/theme"
)

// Orchestrator wires the three core subsystems into the CLI-facing flows.
type Orchestrator struct {
	Config   *config.Config
	Manifest *manifest.Manifest
	State    *state.Engine
	Installer *installer.Installer
}

// New builds an Orchestrator from the standard on-disk locations.
func New() (*Orchestrator, error) {
	if err := paths.EnsureDirs(); err != nil {
		return nil, err
	}

	cfg := config.Load(paths.AppConfigFile)

	m, err := manifest.Load(paths.ManifestFile)
	if err != nil {
		return nil, perrors.New(perrors.ConfigMalformed, "load-manifest", err)
	}

	se, err := state.Open(cfg.MaxBackups)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		Config:    cfg,
		Manifest:  m,
		State:     se,
		Installer: installer.New(m, installer.WarnboxConfirmer()),
	}, nil
}

// resolveTheme looks up name first in the local themes dir, then the
// system themes dir.
func resolveTheme(name string) (*theme.Theme, error) {
	local := theme.New(name, paths.ThemesDir)
	if _, err := os.Stat(local.Root); err == nil {
		return local, nil
	}
	sys := theme.New(name, paths.SystemThemesDir)
	if _, err := os.Stat(sys.Root); err == nil {
		return sys, nil
	}
	return nil, perrors.New(perrors.ThemeNotFound, "resolve-theme", fmt.Errorf("theme %q not found locally or in system themes", name))
}

// Apply runs the full apply_theme flow for name.
func (o *Orchestrator) Apply(name string) error {
	th, err := resolveTheme(name)
	if err != nil {
		return err
	}

	rec, _ := o.Manifest.Get(name)
	newVersion := rec.Version
	if newVersion == "" {
		newVersion = "0.0.0"
	}

	upToDate, err := o.State.BeginApply(name, newVersion)
	if err != nil {
		return err
	}
	if upToDate {
		logger.Info("theme already applied, running reload commands only", "name", name)
		for _, app := range touchedApps(th) {
			reload.Run(app)
		}
		return nil
	}

	touched := collectTargetFiles(th, paths.ConfigRoot())

	cleanStaleMarkersFor(touched, o.Config)

	mergeEngine := merge.New(o.Config.CommentStyles)
	if err := mergeEngine.Apply(name, th.ConfigsDir(), paths.ConfigRoot()); err != nil {
		return err
	}

	applier.ApplyAll(name, th.Root, qtConfigFiles())

	touched = collectTargetFiles(th, paths.ConfigRoot())
	if err := o.State.FinishApply(name, newVersion, touched); err != nil {
		return err
	}

	logger.Info("applied theme", "name", name, "version", newVersion)
	notify.ThemeApplied(name, newVersion)
	return nil
}

// touchedApps lists the top-level configs/<app> directory names a theme
// carries, so an already-applied theme can re-run reload commands without
// re-running the merge-copy or system appliers.
func touchedApps(th *theme.Theme) []string {
	entries, err := os.ReadDir(th.ConfigsDir())
	if err != nil {
		return nil
	}
	var apps []string
	for _, e := range entries {
		if e.IsDir() {
			apps = append(apps, e.Name())
		}
	}
	return apps
}

// collectTargetFiles lists the absolute destination paths under targetRoot
// that the theme's configs/ tree will touch (patch suffixes stripped), for
// IgnoreSet filtering and staging.
func collectTargetFiles(th *theme.Theme, targetRoot string) []string {
	var out []string
	root := th.ConfigsDir()
	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		for _, suffix := range []string{".prepaw", ".postpaw", ".jsonpaw"} {
			if filepath.Ext(rel) == suffix {
				rel = rel[:len(rel)-len(suffix)]
			}
		}
		out = append(out, filepath.Join(targetRoot, rel))
		return nil
	})
	return out
}

func cleanStaleMarkersFor(targetFiles []string, cfg *config.Config) {
	for _, f := range targetFiles {
		ext := filepath.Ext(f)
		token := cfg.CommentToken(ext)
		if err := patch.CleanStaleMarkers(f, token); err != nil {
			logger.Warn("stale marker cleanup failed", "file", f, "error", err)
		}
	}
}

func qtConfigFiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return []string{
		filepath.Join(home, ".config", "qt5ct", "qt5ct.conf"),
		filepath.Join(home, ".config", "qt6ct", "qt6ct.conf"),
	}
}

// Restore returns to main.
func (o *Orchestrator) Restore() error {
	return o.State.RestoreOriginal()
}

// ResetTheme restores a theme's owned files to branch HEAD.
func (o *Orchestrator) ResetTheme(name string) error {
	th, err := resolveTheme(name)
	if err != nil {
		return err
	}
	owned := collectTargetFiles(th, paths.ConfigRoot())
	return o.State.ResetToClean(name, owned)
}

// UninstallTheme removes a theme's files and, if safe, its branch.
func (o *Orchestrator) UninstallTheme(name string) error {
	if err := o.Installer.Uninstall(name); err != nil {
		return err
	}
	return o.State.UninstallTheme(name)
}

// CurrentTheme reports the applied theme name, or "" if on main.
func (o *Orchestrator) CurrentTheme() (string, error) {
	return o.State.CurrentTheme()
}

// History returns up to limit (hash, subject) commits for branch (or the
// current branch if name is empty).
func (o *Orchestrator) History(name string, limit int) ([][2]string, error) {
	branch := name
	if branch == "" {
		cur, err := o.State.Repo.CurrentBranch()
		if err != nil {
			return nil, err
		}
		branch = cur
	}
	return o.State.Repo.Log(branch, limit)
}

// UserChanges returns the commits on branch (or current) whose subject
// starts with the user-edit marker.
func (o *Orchestrator) UserChanges(name string) ([][2]string, error) {
	all, err := o.History(name, 0)
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, c := range all {
		if len(c[1]) >= 6 && c[1][:6] == "[USER]" {
			out = append(out, c)
		}
	}
	return out, nil
}

// RestoreCommit restores the work-tree to a specific commit's content for
// the theme's owned files (or every tracked file if name is empty).
func (o *Orchestrator) RestoreCommit(hash, name string) error {
	var filePaths []string
	if name != "" {
		th, err := resolveTheme(name)
		if err != nil {
			return err
		}
		filePaths = collectTargetFiles(th, paths.ConfigRoot())
	} else {
		tracked, err := o.State.Repo.LsFiles()
		if err != nil {
			return err
		}
		filePaths = tracked
	}
	return o.State.Repo.RestoreCommit(hash, filePaths)
}

// Status reports the current theme and whether the work-tree has pending changes.
type Status struct {
	CurrentTheme string `json:"current_theme"`
	Dirty        bool   `json:"dirty"`
}

func (o *Orchestrator) GetStatus() (Status, error) {
	cur, err := o.CurrentTheme()
	if err != nil {
		return Status{}, err
	}
	dirty, err := o.State.Repo.HasUncommittedChanges()
	if err != nil {
		return Status{}, err
	}
	return Status{CurrentTheme: cur, Dirty: dirty}, nil
}

// InstalledThemeNames lists installed theme names, for `get-themes`.
func (o *Orchestrator) InstalledThemeNames() []string {
	all := o.Manifest.All()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	return names
}

// ThemesInfo builds the name->{path,logo,wallpapers,gtk-folder,source,version}
// map for `get-themes-info`.
func (o *Orchestrator) ThemesInfo() map[string]theme.Info {
	out := make(map[string]theme.Info)
	for name, rec := range o.Manifest.All() {
		th, err := resolveTheme(name)
		if err != nil {
			continue
		}
		source := "local"
		if rec.Source != nil {
			source = string(*rec.Source)
		}
		info := theme.Info{
			Path:    th.Root,
			Source:  source,
			Version: rec.Version,
		}
		if _, err := os.Stat(th.LogoPath()); err == nil {
			info.Logo = th.LogoPath()
		}
		info.Wallpapers = th.Wallpapers()
		if th.HasGTK() {
			info.GTKFolder = th.GTKDir()
		}
		out[name] = info
	}
	return out
}
