package gitscan

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkSummaryCollectsCommitsAndChanges(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "pulse")
	repo := initRepo(t, dir)
	commitFile(t, repo, dir, "main.go", "package main", "TEAM-123: add entrypoint", time.Now().Add(-time.Hour))
	commitFile(t, repo, dir, "util.go", "package main", "refactor helpers", time.Now())

	// One staged file and one untracked file.
	wt, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "staged.go"), []byte("package main"), 0o644))
	_, err = wt.Add("staged.go")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo"), 0o644))

	a := NewAnalyzer()
	summary, err := a.WorkSummary(dir, 30, 30)
	require.NoError(t, err)

	assert.Equal(t, "pulse", summary.RepoName)
	assert.Equal(t, "master", summary.CurrentBranch)

	require.Len(t, summary.RecentCommits, 2)
	assert.Equal(t, "refactor helpers", summary.RecentCommits[0].Message)
	assert.Equal(t, []string{"TEAM-123"}, summary.RecentCommits[1].IssueRefs)
	assert.Len(t, summary.RecentCommits[0].ShortSHA, 7)
	assert.Positive(t, summary.RecentCommits[0].FilesChanged)

	require.Len(t, summary.Uncommitted.Staged, 1)
	assert.Equal(t, "staged.go", summary.Uncommitted.Staged[0].Path)
	assert.Equal(t, "added", summary.Uncommitted.Staged[0].ChangeType)
	assert.Equal(t, []string{"notes.txt"}, summary.Uncommitted.Untracked)

	require.Len(t, summary.Branches, 1)
	assert.Equal(t, "master", summary.Branches[0].Name)
	assert.True(t, summary.Branches[0].IsActive)
}

func TestWorkSummaryRespectsSinceDays(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "aged")
	repo := initRepo(t, dir)
	commitFile(t, repo, dir, "old.txt", "old", "ancient work", time.Now().AddDate(0, 0, -90))
	commitFile(t, repo, dir, "new.txt", "new", "recent work", time.Now())

	a := NewAnalyzer()
	summary, err := a.WorkSummary(dir, 30, 30)
	require.NoError(t, err)

	require.Len(t, summary.RecentCommits, 1)
	assert.Equal(t, "recent work", summary.RecentCommits[0].Message)
}

func TestAnalyzeMissingRepo(t *testing.T) {
	a := NewAnalyzer()
	_, err := a.WorkSummary(filepath.Join(t.TempDir(), "void"), 30, 30)
	assert.Error(t, err)
}

func TestPullWithoutRemoteFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "loner")
	repo := initRepo(t, dir)
	commitFile(t, repo, dir, "f.txt", "x", "initial commit", time.Now())

	res := Pull(dir, "master")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestIssueRefExtraction(t *testing.T) {
	refs := issueRefPattern.FindAllString("PROJ-1 and TEAM2-42 but not proj-3 or X-9", -1)
	assert.Equal(t, []string{"PROJ-1", "TEAM2-42"}, refs)
}
