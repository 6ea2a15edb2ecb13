package state

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pawlette/pawlette/internal/paths"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	skipIfNoGit(t)

	stateDir := t.TempDir()
	workTree := t.TempDir()
	paths.StateDir = stateDir

	repo := New(filepath.Join(stateDir, "config_state.git"), workTree)
	require.NoError(t, repo.Init())
	require.NoError(t, repo.WriteExcludeFile())

	return &Engine{Repo: repo, MaxBackups: defaultMaxBackups}, workTree
}

func TestBeginApplyCreatesBranchAndAppliesFresh(t *testing.T) {
	e, workTree := newTestEngine(t)

	upToDate, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)
	assert.False(t, upToDate)

	require.NoError(t, os.WriteFile(filepath.Join(workTree, "theme.conf"), []byte("nord"), 0o644))
	require.NoError(t, e.FinishApply("nord", "1.0.0", []string{filepath.Join(workTree, "theme.conf")}))

	cur, err := e.CurrentTheme()
	require.NoError(t, err)
	assert.Equal(t, "nord", cur)

	applied, err := e.ThemeAppliedPredicate("nord", "1.0.0")
	require.NoError(t, err)
	assert.True(t, applied)
}

func TestBeginApplyIsIdempotentWhenUpToDate(t *testing.T) {
	e, workTree := newTestEngine(t)

	_, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(workTree, "theme.conf"), []byte("nord"), 0o644))
	require.NoError(t, e.FinishApply("nord", "1.0.0", []string{filepath.Join(workTree, "theme.conf")}))

	upToDate, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)
	assert.True(t, upToDate)
}

func TestBeginApplyCreatesBackupBranchOnVersionChange(t *testing.T) {
	e, workTree := newTestEngine(t)

	_, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(workTree, "theme.conf"), []byte("v1"), 0o644))
	require.NoError(t, e.FinishApply("nord", "1.0.0", []string{filepath.Join(workTree, "theme.conf")}))

	_, err = e.BeginApply("nord", "2.0.0")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(workTree, "theme.conf"), []byte("v2"), 0o644))
	require.NoError(t, e.FinishApply("nord", "2.0.0", []string{filepath.Join(workTree, "theme.conf")}))

	out, err := e.Repo.run("branch", "--list", "nord-v1.0.0-backup-*")
	require.NoError(t, err)
	assert.NotEmpty(t, out, "expected a backup branch for the v1.0.0 state")
}

func TestResetToCleanOnlyTouchesOwnedFiles(t *testing.T) {
	e, workTree := newTestEngine(t)

	_, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)

	owned := filepath.Join(workTree, "owned.conf")
	unrelated := filepath.Join(workTree, "unrelated.conf")
	require.NoError(t, os.WriteFile(owned, []byte("original"), 0o644))
	require.NoError(t, os.WriteFile(unrelated, []byte("original"), 0o644))
	require.NoError(t, e.FinishApply("nord", "1.0.0", []string{owned, unrelated}))

	require.NoError(t, os.WriteFile(owned, []byte("user-edited"), 0o644))
	require.NoError(t, os.WriteFile(unrelated, []byte("user-edited"), 0o644))

	require.NoError(t, e.ResetToClean("nord", []string{owned}))

	ownedContent, err := os.ReadFile(owned)
	require.NoError(t, err)
	assert.Equal(t, "original", string(ownedContent))

	unrelatedContent, err := os.ReadFile(unrelated)
	require.NoError(t, err)
	assert.Equal(t, "user-edited", string(unrelatedContent), "reset-theme must not touch files outside the theme's owned set")
}

func TestUninstallThemeRefusesCurrentBranch(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)

	err = e.UninstallTheme("nord")
	assert.Error(t, err)
}

func TestPruneBackupsKeepsOnlyMostRecentN(t *testing.T) {
	e, _ := newTestEngine(t)
	e.MaxBackups = 2

	timestamps := []string{
		"20240101000000",
		"20240102000000",
		"20240103000000",
		"20240104000000",
	}
	for _, ts := range timestamps {
		require.NoError(t, e.Repo.CreateBranch(fmt.Sprintf("nord-v1.0.0-backup-%s", ts), "main"))
	}

	require.NoError(t, e.pruneBackups("nord"))

	remaining, err := e.Repo.ListBranches("nord-v*-backup-*")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"nord-v1.0.0-backup-20240103000000",
		"nord-v1.0.0-backup-20240104000000",
	}, remaining)
}

func TestRestoreOriginalReturnsToMain(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.BeginApply("nord", "1.0.0")
	require.NoError(t, err)

	require.NoError(t, e.RestoreOriginal())

	cur, err := e.CurrentTheme()
	require.NoError(t, err)
	assert.Equal(t, "", cur)
}

func TestCleanupIgnoredFilesUntracksMatchesWithoutDeleting(t *testing.T) {
	e, workTree := newTestEngine(t)

	tracked := filepath.Join(workTree, "keep.conf")
	ignored := filepath.Join(workTree, "app.log")
	require.NoError(t, os.WriteFile(tracked, []byte("keep"), 0o644))
	require.NoError(t, os.WriteFile(ignored, []byte("volatile"), 0o644))
	require.NoError(t, e.Repo.AddAll())
	// add -A skips excluded paths, so force-add the ignored file to track it.
	_, addErr := e.Repo.run("add", "-f", ignored)
	require.NoError(t, addErr)
	require.NoError(t, e.Repo.Commit("add files, including one that matches an ignore pattern"))

	require.NoError(t, e.CleanupIgnoredFiles())

	tracked2, err := e.Repo.LsFiles()
	require.NoError(t, err)
	assert.Contains(t, tracked2, "keep.conf")
	assert.NotContains(t, tracked2, "app.log")

	_, err = os.Stat(ignored)
	require.NoError(t, err, "cleanup must untrack the file, not delete it from disk")
}
