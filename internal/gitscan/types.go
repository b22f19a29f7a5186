// Package gitscan discovers local git repositories and summarizes their
// working-copy state using go-git.
package gitscan

import "time"

// RepoStatus reports whether a working copy has uncommitted changes.
type RepoStatus string

const (
	StatusClean RepoStatus = "clean"
	StatusDirty RepoStatus = "dirty"
)

// RepoInfo is a single repository's summary metadata as reported by a scan.
// The Path is the unique identifier across the whole system.
type RepoInfo struct {
	Name              string        `json:"name"`
	Path              string        `json:"path"`
	CurrentBranch     string        `json:"current_branch"`
	Status            RepoStatus    `json:"status"`
	UncommittedCount  int           `json:"uncommitted_count"`
	RecentCommitCount int           `json:"recent_commit_count"`
	HasRemote         bool          `json:"has_remote"`
	UnpushedCount     int           `json:"unpushed_count"`
	UntrackedCount    int           `json:"untracked_count"`
	LastCommitAt      *time.Time    `json:"last_commit_at,omitempty"`
	StaleBranches     []StaleBranch `json:"stale_branches,omitempty"`
}

// StaleBranch is a local branch that is unmerged and older than the staleness cutoff.
type StaleBranch struct {
	Name           string     `json:"name"`
	LastCommitDate *time.Time `json:"last_commit_date,omitempty"`
	DaysStale      int        `json:"days_stale"`
}

// FileChange describes one staged or unstaged change in a working copy.
type FileChange struct {
	Path       string `json:"path"`
	ChangeType string `json:"change_type"` // added, modified, deleted, renamed, copied, untracked
}

// UncommittedChanges partitions a working copy's pending changes.
type UncommittedChanges struct {
	Staged    []FileChange `json:"staged"`
	Unstaged  []FileChange `json:"unstaged"`
	Untracked []string     `json:"untracked"`
}

// CommitInfo summarizes a single commit for the activity views.
type CommitInfo struct {
	SHA          string    `json:"sha"`
	ShortSHA     string    `json:"short_sha"`
	Message      string    `json:"message"`
	Author       string    `json:"author"`
	AuthorEmail  string    `json:"author_email"`
	Date         time.Time `json:"date"`
	FilesChanged int       `json:"files_changed"`
	Insertions   int       `json:"insertions"`
	Deletions    int       `json:"deletions"`
	IssueRefs    []string  `json:"issue_refs,omitempty"`
}

// BranchInfo summarizes a local branch relative to its tracking branch.
type BranchInfo struct {
	Name           string     `json:"name"`
	IsActive       bool       `json:"is_active"`
	Tracking       string     `json:"tracking,omitempty"`
	Ahead          int        `json:"ahead"`
	Behind         int        `json:"behind"`
	LastCommitDate *time.Time `json:"last_commit_date,omitempty"`
	IssueRefs      []string   `json:"issue_refs,omitempty"`
}

// WorkSummary aggregates everything the analyze view shows for one repository.
type WorkSummary struct {
	RepoName      string             `json:"repo_name"`
	RepoPath      string             `json:"repo_path"`
	CurrentBranch string             `json:"current_branch"`
	Uncommitted   UncommittedChanges `json:"uncommitted"`
	RecentCommits []CommitInfo       `json:"recent_commits"`
	Branches      []BranchInfo       `json:"branches"`
}

// PullResult reports the outcome of a checkout-and-pull operation.
type PullResult struct {
	Success       bool   `json:"success"`
	Branch        string `json:"branch"`
	Output        string `json:"output,omitempty"`
	CurrentBranch string `json:"current_branch,omitempty"`
	Error         string `json:"error,omitempty"`
}

// recencyWindow is the activity threshold: commits inside it count as recent
// and branches older than it count as stale.
const recencyWindow = 30 * 24 * time.Hour

// maxRecentCommits caps the per-repo commit probe during a scan.
const maxRecentCommits = 30
