// Package state implements the branch-per-theme VCS orchestration atop a
// bare git repository whose work-tree is the user's XDG config root.
package state

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/pawlette/pawlette/internal/logger"
	"github.com/pawlette/pawlette/internal/perrors"
)

// Repo wraps argv invocations of git against a bare repository and an
// external work-tree, per the VCS abstraction boundary: init, checkout
// with optional force, branch create/rename/delete, add-all, commit,
// log-by-subject, show-ref, status-porcelain, restore/checkout-file,
// check-ignore, ls-files.
type Repo struct {
	GitDir   string
	WorkTree string
}

// New builds a Repo bound to an existing bare repo + work-tree pair.
func New(gitDir, workTree string) *Repo {
	return &Repo{GitDir: gitDir, WorkTree: workTree}
}

func (r *Repo) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	full := append([]string{"--git-dir=" + r.GitDir, "--work-tree=" + r.WorkTree}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		logger.Warn("git command failed", "args", args, "stderr", strings.TrimSpace(stderr.String()))
		return stdout.String(), perrors.New(perrors.VCSFailure, "git "+strings.Join(args, " "), fmt.Errorf("%w: %s", err, stderr.String()))
	}
	return stdout.String(), nil
}

// Init creates a bare repository at r.GitDir configured with r.WorkTree,
// a synthetic committer identity, and an initial empty commit on main.
func (r *Repo) Init() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	initCmd := exec.CommandContext(ctx, "git", "init", "--bare", "-b", "main", r.GitDir)
	if out, err := initCmd.CombinedOutput(); err != nil {
		return perrors.New(perrors.VCSFailure, "git init", fmt.Errorf("%w: %s", err, out))
	}

	if _, err := r.run("config", "core.bare", "false"); err != nil {
		return err
	}
	if _, err := r.run("config", "core.worktree", r.WorkTree); err != nil {
		return err
	}
	if _, err := r.run("config", "user.name", "pawlette"); err != nil {
		return err
	}
	if _, err := r.run("config", "user.email", "pawlette@localhost"); err != nil {
		return err
	}

	if _, err := r.run("commit", "--allow-empty", "-m", "initial commit"); err != nil {
		return err
	}
	return nil
}

// IsInitialized reports whether the bare repo has already been created.
func (r *Repo) IsInitialized() bool {
	_, err := r.run("rev-parse", "--git-dir")
	return err == nil
}

// BranchExists reports whether name is a local branch.
func (r *Repo) BranchExists(name string) bool {
	_, err := r.run("show-ref", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// CurrentBranch returns the checked-out branch name, or "HEAD" if detached.
func (r *Repo) CurrentBranch() (string, error) {
	out, err := r.run("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CreateBranch creates name from the given start point (e.g. "main")
// without checking it out.
func (r *Repo) CreateBranch(name, startPoint string) error {
	_, err := r.run("branch", name, startPoint)
	return err
}

// ListBranches returns local branch names matching a shell glob pattern
// (as accepted by `git branch --list`), e.g. "name-v*-backup-*".
func (r *Repo) ListBranches(pattern string) ([]string, error) {
	out, err := r.run("branch", "--list", pattern, "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// RenameBranch renames old to newName.
func (r *Repo) RenameBranch(old, newName string) error {
	_, err := r.run("branch", "-m", old, newName)
	return err
}

// DeleteBranch force-deletes name.
func (r *Repo) DeleteBranch(name string) error {
	_, err := r.run("branch", "-D", name)
	return err
}

// Checkout checks out branch, creating it from main if absent. Tries a
// soft checkout first; on failure (typically untracked files conflicting
// with tracked files on the target branch), retries with force, which is
// safe because pending edits are committed before any checkout attempt.
func (r *Repo) Checkout(branch string) error {
	if !r.BranchExists(branch) {
		if err := r.CreateBranch(branch, "main"); err != nil {
			return err
		}
	}
	if _, err := r.run("checkout", branch); err == nil {
		return nil
	}
	_, err := r.run("checkout", "-f", branch)
	return err
}

// HasUncommittedChanges reports whether the work-tree has pending changes.
func (r *Repo) HasUncommittedChanges() (bool, error) {
	out, err := r.run("status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// AddAll stages every change in the work-tree.
func (r *Repo) AddAll() error {
	_, err := r.run("add", "-A")
	return err
}

// AddPaths stages specific paths.
func (r *Repo) AddPaths(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"add"}, paths...)
	_, err := r.run(args...)
	return err
}

// Commit creates a commit with the given subject. Returns nil (no error)
// if there was nothing to commit.
func (r *Repo) Commit(subject string) error {
	out, err := r.run("commit", "-m", subject)
	if err != nil {
		// git prints "nothing to commit" on stdout, not stderr.
		if strings.Contains(out, "nothing to commit") || strings.Contains(err.Error(), "nothing to commit") {
			return nil
		}
		return err
	}
	return nil
}

// LogSubjectExists reports whether any commit reachable from branch has
// a subject starting with prefix.
func (r *Repo) LogSubjectExists(branch, prefix string) (bool, error) {
	out, err := r.run("log", branch, "--format=%s")
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Log returns (hash, subject) pairs for branch, most recent first, up to
// limit entries (0 = unlimited).
func (r *Repo) Log(branch string, limit int) ([][2]string, error) {
	args := []string{"log", branch, "--format=%H\t%s"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	out, err := r.run(args...)
	if err != nil {
		return nil, err
	}
	var result [][2]string
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) == 2 {
			result = append(result, [2]string{parts[0], parts[1]})
		}
	}
	return result, nil
}

// RestorePaths restores files to their HEAD content, preferring `restore`
// and falling back to `checkout -- <path>` on older git.
func (r *Repo) RestorePaths(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"restore", "--worktree", "--staged", "--source=HEAD", "--"}, paths...)
	if _, err := r.run(args...); err == nil {
		return nil
	}
	args = append([]string{"checkout", "--"}, paths...)
	_, err := r.run(args...)
	return err
}

// RestoreCommit restores the work-tree to the content of a specific commit.
func (r *Repo) RestoreCommit(hash string, filePaths []string) error {
	args := append([]string{"checkout", hash, "--"}, filePaths...)
	_, err := r.run(args...)
	return err
}

// LsFiles lists every tracked path.
func (r *Repo) LsFiles() ([]string, error) {
	out, err := r.run("ls-files")
	if err != nil {
		return nil, err
	}
	return splitNonEmptyLines(out), nil
}

// CheckIgnoreStdin runs check-ignore over candidatePaths (NUL-separated
// stdin), returning the subset that matches the exclude file. --no-index
// is required here: candidatePaths are paths CleanupIgnoredFiles already
// knows are tracked, and check-ignore otherwise never reports a tracked
// path as ignored regardless of the exclude file.
func (r *Repo) CheckIgnoreStdin(candidatePaths []string) ([]string, error) {
	if len(candidatePaths) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	full := []string{"--git-dir=" + r.GitDir, "--work-tree=" + r.WorkTree, "check-ignore", "--stdin", "-z", "--no-index"}
	cmd := exec.CommandContext(ctx, "git", full...)
	cmd.Stdin = strings.NewReader(strings.Join(candidatePaths, "\x00") + "\x00")

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	// check-ignore exits 1 when nothing matched; that is not a failure.
	_ = cmd.Run()

	raw := strings.Split(stdout.String(), "\x00")
	var out []string
	for _, p := range raw {
		if p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

// RemoveCached untracks paths from the index without deleting them on disk.
func (r *Repo) RemoveCached(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	const chunkSize = 200
	for i := 0; i < len(paths); i += chunkSize {
		end := i + chunkSize
		if end > len(paths) {
			end = len(paths)
		}
		args := append([]string{"rm", "--cached", "--ignore-unmatch", "--"}, paths[i:end]...)
		if _, err := r.run(args...); err != nil {
			return err
		}
	}
	return nil
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
