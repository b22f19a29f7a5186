package gitscan

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// issueRefPattern matches tracker keys like TEAM-123 in commit messages and
// branch names.
var issueRefPattern = regexp.MustCompile(`[A-Z][A-Z0-9]+-\d+`)

// Analyzer produces detailed work summaries for individual repositories.
type Analyzer struct{}

// NewAnalyzer returns an Analyzer.
func NewAnalyzer() *Analyzer { return &Analyzer{} }

// WorkSummary aggregates uncommitted changes, recent commits, and branch
// state for one repository path.
func (a *Analyzer) WorkSummary(path string, maxCommits, sinceDays int) (*WorkSummary, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	summary := &WorkSummary{
		RepoName:      filepath.Base(path),
		RepoPath:      path,
		CurrentBranch: "HEAD",
		Uncommitted:   uncommittedChanges(repo),
	}

	head, err := repo.Head()
	if err != nil {
		return summary, nil
	}
	if head.Name().IsBranch() {
		summary.CurrentBranch = head.Name().Short()
	}

	summary.RecentCommits = recentCommits(repo, head.Hash(), maxCommits, sinceDays)
	summary.Branches = branchInfos(repo, summary.CurrentBranch)
	return summary, nil
}

// Uncommitted returns just the pending-change portion of the summary.
func (a *Analyzer) Uncommitted(path string) (*UncommittedChanges, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	ch := uncommittedChanges(repo)
	return &ch, nil
}

// Commits returns the recent commits of a repository.
func (a *Analyzer) Commits(path string, maxCommits, sinceDays int) ([]CommitInfo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		return nil, nil
	}
	return recentCommits(repo, head.Hash(), maxCommits, sinceDays), nil
}

// Branches returns local branch summaries for a repository.
func (a *Analyzer) Branches(path string) ([]BranchInfo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	current := ""
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}
	return branchInfos(repo, current), nil
}

func uncommittedChanges(repo *git.Repository) UncommittedChanges {
	changes := UncommittedChanges{
		Staged:    []FileChange{},
		Unstaged:  []FileChange{},
		Untracked: []string{},
	}
	wt, err := repo.Worktree()
	if err != nil {
		return changes
	}
	st, err := wt.Status()
	if err != nil {
		return changes
	}
	for path, fs := range st {
		if fs.Staging == git.Untracked {
			changes.Untracked = append(changes.Untracked, path)
			continue
		}
		if fs.Staging != git.Unmodified {
			changes.Staged = append(changes.Staged, FileChange{
				Path:       path,
				ChangeType: changeType(fs.Staging),
			})
		}
		if fs.Worktree != git.Unmodified {
			changes.Unstaged = append(changes.Unstaged, FileChange{
				Path:       path,
				ChangeType: changeType(fs.Worktree),
			})
		}
	}
	return changes
}

func changeType(code git.StatusCode) string {
	switch code {
	case git.Added:
		return "added"
	case git.Deleted:
		return "deleted"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	case git.Untracked:
		return "untracked"
	default:
		return "modified"
	}
}

func recentCommits(repo *git.Repository, from plumbing.Hash, maxCommits, sinceDays int) []CommitInfo {
	if maxCommits <= 0 {
		maxCommits = maxRecentCommits
	}
	if sinceDays <= 0 {
		sinceDays = 30
	}
	cutoff := time.Now().AddDate(0, 0, -sinceDays)

	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return nil
	}
	defer iter.Close()

	var commits []CommitInfo
	for len(commits) < maxCommits {
		c, err := iter.Next()
		if err != nil {
			break
		}
		when := c.Committer.When
		if when.Before(cutoff) {
			break
		}

		info := CommitInfo{
			SHA:         c.Hash.String(),
			ShortSHA:    c.Hash.String()[:7],
			Message:     strings.TrimSpace(c.Message),
			Author:      c.Author.Name,
			AuthorEmail: c.Author.Email,
			Date:        when,
			IssueRefs:   issueRefPattern.FindAllString(c.Message, -1),
		}
		if stats, err := c.Stats(); err == nil {
			info.FilesChanged = len(stats)
			for _, fs := range stats {
				info.Insertions += fs.Addition
				info.Deletions += fs.Deletion
			}
		}
		commits = append(commits, info)
	}
	return commits
}

func branchInfos(repo *git.Repository, current string) []BranchInfo {
	iter, err := repo.Branches()
	if err != nil {
		return nil
	}
	var out []BranchInfo
	_ = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		info := BranchInfo{
			Name:      name,
			IsActive:  name == current,
			IssueRefs: issueRefPattern.FindAllString(name, -1),
		}
		if c, err := repo.CommitObject(ref.Hash()); err == nil {
			when := c.Committer.When
			info.LastCommitDate = &when
		}
		if remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", name), true); err == nil {
			info.Tracking = "origin/" + name
			info.Ahead = countDivergence(repo, ref.Hash(), remoteRef.Hash())
			info.Behind = countDivergence(repo, remoteRef.Hash(), ref.Hash())
		}
		out = append(out, info)
		return nil
	})
	return out
}

// countDivergence counts commits reachable from tip but not from other,
// capped the same way scan probes are.
func countDivergence(repo *git.Repository, tip, other plumbing.Hash) int {
	if tip == other {
		return 0
	}
	otherSet := commitHashSet(repo, other, 200)
	iter, err := repo.Log(&git.LogOptions{From: tip})
	if err != nil {
		return 0
	}
	defer iter.Close()
	count := 0
	for count < 100 {
		c, err := iter.Next()
		if err != nil {
			break
		}
		if _, ok := otherSet[c.Hash]; ok {
			break
		}
		count++
	}
	return count
}
