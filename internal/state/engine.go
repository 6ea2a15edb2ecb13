package state

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/pawlette/pawlette/internal/paths"
	"github.com/pawlette/pawlette/internal/perrors"
)

const mainBranch = "main"
const defaultMaxBackups = 5

// Engine is the state engine: branch-per-theme VCS orchestration, ignore
// rules, upgrade backups, and user-edit auto-commit.
type Engine struct {
	Repo *Repo

	// MaxBackups is the keep-last-N policy applied to a theme's backup
	// branches each time a new one is created on version upgrade.
	MaxBackups int
}

// Open binds an Engine to the standard state-repo locations, initializing
// the bare repository on first use. maxBackups configures the keep-last-N
// pruning policy for upgrade backup branches (pawlette.json's
// max_backups, 5 if non-positive).
func Open(maxBackups int) (*Engine, error) {
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}
	repo := New(paths.StateRepoDir, paths.ConfigRoot())
	if !repo.IsInitialized() {
		if err := os.MkdirAll(paths.StateRepoDir, 0o755); err != nil {
			return nil, err
		}
		if err := repo.Init(); err != nil {
			return nil, err
		}
	}
	if err := repo.WriteExcludeFile(); err != nil {
		return nil, err
	}
	return &Engine{Repo: repo, MaxBackups: maxBackups}, nil
}

// commitPendingUserEdits stages and commits any uncommitted work-tree
// changes with the `[USER] Save user customizations - <ts>` subject.
func (e *Engine) commitPendingUserEdits() error {
	dirty, err := e.Repo.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	if err := e.Repo.AddAll(); err != nil {
		return err
	}
	subject := fmt.Sprintf("[USER] Save user customizations - %s", time.Now().Format("2006-01-02 15:04:05"))
	return e.Repo.Commit(subject)
}

// ThemeAppliedPredicate implements the "theme was really applied" check:
// the conjunction of the version side-channel file matching new_version
// AND the branch history containing a commit whose subject starts with
// "Apply theme: <name>". Both signals are preserved deliberately per the
// design notes' explicit instruction not to drop either one.
func (e *Engine) ThemeAppliedPredicate(name, newVersion string) (bool, error) {
	current, err := readVersionFile(name)
	if err != nil {
		return false, err
	}
	if current != newVersion {
		return false, nil
	}
	return e.Repo.LogSubjectExists(name, "Apply theme: "+name)
}

func readVersionFile(name string) (string, error) {
	data, err := os.ReadFile(paths.VersionFile(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func writeVersionFile(name, version string) error {
	return paths.AtomicWrite(paths.VersionFile(name), []byte(version+"\n"), 0o644)
}

// BeginApply runs the pre-merge steps of apply_theme: commit pending user
// edits, resolve current/new version, switch/create the theme branch
// and report whether the theme is already up to date (in which case only
// reload commands should run). When the theme is not up to date, the
// recorded version differs from newVersion and the branch already holds an
// apply commit, the branch is renamed to a backup branch and recreated
// fresh from main.
func (e *Engine) BeginApply(name, newVersion string) (upToDate bool, err error) {
	if err := e.commitPendingUserEdits(); err != nil {
		return false, err
	}

	currentVersion, err := readVersionFile(name)
	if err != nil {
		return false, err
	}

	hadPriorApply := false
	if e.Repo.BranchExists(name) {
		hadPriorApply, err = e.Repo.LogSubjectExists(name, "Apply theme: "+name)
		if err != nil {
			return false, err
		}
	}

	if err := e.Repo.Checkout(name); err != nil {
		return false, err
	}

	upToDate, err = e.ThemeAppliedPredicate(name, newVersion)
	if err != nil {
		return false, err
	}
	if upToDate {
		return true, nil
	}

	if currentVersion != "" && currentVersion != newVersion && hadPriorApply {
		if err := e.createBackupBranch(name, currentVersion); err != nil {
			return false, err
		}
		// createBackupBranch already renamed <name> to the backup branch,
		// which removes <name> and moves HEAD onto the backup; recreate it
		// fresh from main.
		if err := e.Repo.CreateBranch(name, mainBranch); err != nil {
			return false, err
		}
		if err := e.Repo.Checkout(name); err != nil {
			return false, err
		}
	}

	return false, nil
}

// createBackupBranch renames the current (soon-to-be-replaced) branch to
// <name>-v<old>-backup-<ts>, satisfying testable property 4, then prunes
// that theme's backup branches down to the keep-last-N policy.
func (e *Engine) createBackupBranch(name, oldVersion string) error {
	ts := time.Now().Format("20060102150405")
	backupName := fmt.Sprintf("%s-v%s-backup-%s", name, oldVersion, ts)
	if err := e.Repo.RenameBranch(name, backupName); err != nil {
		return err
	}
	return e.pruneBackups(name)
}

// pruneBackups keeps only the MaxBackups most recent backup branches for
// name, force-deleting older ones. Backup branches are ordered by the
// timestamp suffix after "-backup-", which is zero-padded and fixed width
// (YYYYMMDDHHMMSS), so its string order is time order whatever the
// version part of the name.
func (e *Engine) pruneBackups(name string) error {
	backups, err := e.Repo.ListBranches(fmt.Sprintf("%s-v*-backup-*", name))
	if err != nil {
		return err
	}
	if len(backups) <= e.MaxBackups {
		return nil
	}
	stamp := func(b string) string { return b[strings.LastIndex(b, "-backup-")+len("-backup-"):] }
	sort.Slice(backups, func(i, j int) bool { return stamp(backups[i]) < stamp(backups[j]) })
	toDelete := backups[:len(backups)-e.MaxBackups]
	for _, b := range toDelete {
		if err := e.Repo.DeleteBranch(b); err != nil {
			return err
		}
	}
	return nil
}

// FinishApply re-enumerates touched files, filters the IgnoreSet, commits
// them under "Apply theme: <name> v<new_version>", persists the version
// side-channel file, and, if system-applier side effects left further
// changes uncommitted, makes a second commit for those.
func (e *Engine) FinishApply(name, newVersion string, touchedFiles []string) error {
	filtered := FilterIgnored(touchedFiles)
	if err := e.Repo.AddPaths(filtered); err != nil {
		return err
	}
	if err := e.Repo.AddAll(); err != nil {
		return err
	}
	if err := writeVersionFile(name, newVersion); err != nil {
		return err
	}

	subject := fmt.Sprintf("Apply theme: %s v%s", name, newVersion)
	if err := e.Repo.Commit(subject); err != nil {
		return err
	}

	dirty, err := e.Repo.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if dirty {
		if err := e.Repo.AddAll(); err != nil {
			return err
		}
		if err := e.Repo.Commit(fmt.Sprintf("Apply system themes for: %s", name)); err != nil {
			return err
		}
	}
	return nil
}

// RestoreOriginal commits pending user edits then checks out main.
func (e *Engine) RestoreOriginal() error {
	if err := e.commitPendingUserEdits(); err != nil {
		return err
	}
	_, err := e.Repo.run("checkout", mainBranch)
	return err
}

// ResetToClean restores only the given theme-owned files to the branch's
// HEAD content (scoped semantics, not a whole-branch reset).
func (e *Engine) ResetToClean(name string, ownedFiles []string) error {
	if err := e.Repo.Checkout(name); err != nil {
		return err
	}
	return e.Repo.RestorePaths(ownedFiles)
}

// UninstallTheme refuses to delete the branch for name if it is currently
// checked out; otherwise force-deletes it.
func (e *Engine) UninstallTheme(name string) error {
	current, err := e.Repo.CurrentBranch()
	if err != nil {
		return err
	}
	if current == name {
		return perrors.New(perrors.VCSFailure, "uninstall", fmt.Errorf("branch %q is currently checked out", name))
	}
	if !e.Repo.BranchExists(name) {
		return nil
	}
	return e.Repo.DeleteBranch(name)
}

// CleanupIgnoredFiles untracks any currently-tracked path that matches
// the exclude file, without deleting it from disk, committing if anything changed.
func (e *Engine) CleanupIgnoredFiles() error {
	tracked, err := e.Repo.LsFiles()
	if err != nil {
		return err
	}
	ignored, err := e.Repo.CheckIgnoreStdin(tracked)
	if err != nil {
		return err
	}
	if len(ignored) == 0 {
		return nil
	}
	if err := e.Repo.RemoveCached(ignored); err != nil {
		return err
	}
	dirty, err := e.Repo.HasUncommittedChanges()
	if err != nil {
		return err
	}
	if !dirty {
		return nil
	}
	return e.Repo.Commit("chore: stop tracking ignored files")
}

// CurrentTheme returns the checked-out theme name, or "" if on main
// (main is the sentinel for "no theme applied").
func (e *Engine) CurrentTheme() (string, error) {
	branch, err := e.Repo.CurrentBranch()
	if err != nil {
		return "", err
	}
	if branch == mainBranch {
		return "", nil
	}
	return branch, nil
}
