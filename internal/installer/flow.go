package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pawlette/pawlette/internal/catalog"
	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/manifest"
	"github.com/pawlette/pawlette/internal/notify"
	"github.com/pawlette/pawlette/internal/paths"
	"github.com/pawlette/pawlette/internal/perrors"
	"github.com/pawlette/pawlette/internal/warnbox"
)

// Confirmer asks the user a y/n question before a community-theme
// install/update proceeds; refusal aborts the operation.
type Confirmer func(title string, lines []string) bool

// Installer orchestrates install/update/uninstall against the
// installed-themes manifest and the on-disk themes directory.
type Installer struct {
	ThemesDir string
	Manifest  *manifest.Manifest
	Confirm   Confirmer
}

// New builds an Installer rooted at paths.ThemesDir with the given manifest.
func New(m *manifest.Manifest, confirm Confirmer) *Installer {
	return &Installer{ThemesDir: paths.ThemesDir, Manifest: m, Confirm: confirm}
}

// InstallFrom installs a theme identified by a remote catalog name, a
// direct URL, or a local archive path.
func (inst *Installer) InstallFrom(identifier string) (name string, err error) {
	if looksLikeURL(identifier) {
		return inst.installFromURL(identifier, manifest.SourceLocal, "")
	}
	if _, statErr := os.Stat(identifier); statErr == nil {
		return inst.installFromLocalPath(identifier)
	}

	remotes := catalog.FetchRemoteThemes()
	rt, ok := remotes[identifier]
	if !ok {
		return "", perrors.New(perrors.ThemeNotFound, "install", fmt.Errorf("theme %q not found in catalog", identifier))
	}

	src := manifest.Source(rt.Source)
	if src == manifest.SourceCommunity && inst.Confirm != nil {
		if !inst.Confirm("Community theme warning", []string{
			fmt.Sprintf("%q is a community-maintained theme, not reviewed by pawlette.", identifier),
			"Proceed only if you trust its source.",
		}) {
			return "", fmt.Errorf("installation of %q cancelled by user", identifier)
		}
	}

	return inst.installFromURL(rt.URL, src, identifier)
}

func looksLikeURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (inst *Installer) installFromLocalPath(path string) (string, error) {
	filename := filepath.Base(path)
	stem := StripArchiveExt(filename)
	name, version := ParseNameVersion(stem, "")

	target, err := Install(path, name, inst.ThemesDir)
	if err != nil {
		return "", err
	}

	srcLocal := manifest.SourceLocal
	inst.Manifest.Put(name, manifest.Record{
		Version:       version,
		SourceURL:     path,
		InstalledPath: target,
		Source:        &srcLocal,
	})
	if err := inst.Manifest.Save(); err != nil {
		return "", err
	}
	return name, nil
}

func (inst *Installer) installFromURL(url string, source manifest.Source, catalogName string) (string, error) {
	filename := filepath.Base(url)
	stem := StripArchiveExt(filename)
	name, version := ParseNameVersion(stem, url)
	if catalogName != "" {
		name = catalogName
	}

	tmpPath, err := DownloadToTemp(url, func(downloaded, total int64) {
		if total > 0 {
			logger.Debug("downloading", "pct", float64(downloaded)/float64(total)*100)
		}
	})
	if err != nil {
		return "", err
	}
	defer os.Remove(tmpPath)

	target, err := Install(tmpPath, name, inst.ThemesDir)
	if err != nil {
		return "", err
	}

	src := source
	inst.Manifest.Put(name, manifest.Record{
		Version:       version,
		SourceURL:     url,
		InstalledPath: target,
		Source:        &src,
	})
	if err := inst.Manifest.Save(); err != nil {
		return "", err
	}

	logger.Info("installed theme", "name", name, "version", version, "source", source)
	notify.ThemeInstalled(name, version)
	return name, nil
}

// Update re-installs name from its current catalog URL if the catalog
// reports a newer version.
func (inst *Installer) Update(name string) error {
	rec, ok := inst.Manifest.Get(name)
	if !ok {
		return perrors.New(perrors.ThemeNotFound, "update", fmt.Errorf("theme %q is not installed", name))
	}

	remotes := catalog.FetchRemoteThemes()
	rt, ok := remotes[name]
	if !ok {
		return perrors.New(perrors.ThemeNotFound, "update", fmt.Errorf("theme %q not found in catalog", name))
	}

	_, newVersion := ParseNameVersion(StripArchiveExt(filepath.Base(rt.URL)), rt.URL)
	if CompareVersions(newVersion, rec.Version) <= 0 {
		logger.Info("theme already up to date", "name", name, "version", rec.Version)
		return nil
	}

	src := manifest.Source(rt.Source)
	if src == manifest.SourceCommunity && inst.Confirm != nil {
		if !inst.Confirm("Community theme warning", []string{
			fmt.Sprintf("Updating %q (community-maintained, not reviewed by pawlette).", name),
		}) {
			return fmt.Errorf("update of %q cancelled by user", name)
		}
	}

	_, err := inst.installFromURL(rt.URL, src, name)
	return err
}

// UpdateAll updates every installed theme that has a newer catalog version,
// gathering a single confirmation up front if any community theme is outdated.
func (inst *Installer) UpdateAll() error {
	remotes := catalog.FetchRemoteThemes()
	all := inst.Manifest.All()

	var outdated []string
	hasCommunity := false
	for name, rec := range all {
		rt, ok := remotes[name]
		if !ok {
			continue
		}
		_, newVersion := ParseNameVersion(StripArchiveExt(filepath.Base(rt.URL)), rt.URL)
		if CompareVersions(newVersion, rec.Version) > 0 {
			outdated = append(outdated, name)
			if manifest.Source(rt.Source) == manifest.SourceCommunity {
				hasCommunity = true
			}
		}
	}

	if len(outdated) == 0 {
		logger.Info("all themes up to date")
		return nil
	}

	if hasCommunity && inst.Confirm != nil {
		if !inst.Confirm("Community theme warning", []string{
			"This update includes one or more community-maintained themes.",
		}) {
			return fmt.Errorf("update-all cancelled by user")
		}
	}

	for _, name := range outdated {
		rt := remotes[name]
		if _, err := inst.installFromURL(rt.URL, manifest.Source(rt.Source), name); err != nil {
			logger.Error("update failed", "name", name, "error", err)
		}
	}
	return nil
}

// Uninstall removes the theme directory, manifest entry, and side-channel
// version file. Idempotent: missing theme is not an error.
func (inst *Installer) Uninstall(name string) error {
	rec, ok := inst.Manifest.Get(name)
	if ok {
		if err := os.RemoveAll(rec.InstalledPath); err != nil && !os.IsNotExist(err) {
			return perrors.New(perrors.PermissionDenied, "uninstall", err)
		}
	}
	inst.Manifest.Remove(name)
	if err := inst.Manifest.Save(); err != nil {
		return err
	}

	versionFile := paths.VersionFile(name)
	if err := os.Remove(versionFile); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove version side-channel", "name", name, "error", err)
	}
	return nil
}

// WarnboxConfirmer adapts warnbox.Render + stdin confirmation into a Confirmer.
func WarnboxConfirmer() Confirmer {
	return func(title string, lines []string) bool {
		fmt.Print(warnbox.Render(title, lines))
		fmt.Print("Proceed? [y/N]: ")
		var answer string
		fmt.Scanln(&answer)
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}
