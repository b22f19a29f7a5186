package gitscan

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// defaultBranchCandidates are tried in order when locating the branch that
// stale-branch detection compares against.
var defaultBranchCandidates = []string{"main", "master", "develop", "development"}

// probeRepo opens a working copy and summarizes its state. displayName
// overrides the directory basename (used when a nested scan path points
// inside a repository).
func probeRepo(path, displayName string) (*RepoInfo, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	name := displayName
	if name == "" {
		name = filepath.Base(path)
	}

	info := &RepoInfo{
		Name: name,
		Path: path,
	}

	if remotes, err := repo.Remotes(); err == nil {
		info.HasRemote = len(remotes) > 0
	}

	staged, unstaged, untracked := statusCounts(repo)
	info.UntrackedCount = untracked
	info.UncommittedCount = staged + unstaged + untracked
	if info.UncommittedCount > 0 {
		info.Status = StatusDirty
	} else {
		info.Status = StatusClean
	}

	head, err := repo.Head()
	if err != nil {
		// Repository with no commits yet.
		info.CurrentBranch = "main"
		return info, nil
	}

	if head.Name().IsBranch() {
		info.CurrentBranch = head.Name().Short()
	} else {
		info.CurrentBranch = "HEAD" // detached
	}

	cutoff := time.Now().Add(-recencyWindow)
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err == nil {
		n := 0
		for n < maxRecentCommits {
			c, err := iter.Next()
			if err != nil {
				break
			}
			if info.LastCommitAt == nil {
				when := c.Committer.When
				info.LastCommitAt = &when
			}
			if c.Committer.When.Before(cutoff) {
				break
			}
			n++
		}
		iter.Close()
		info.RecentCommitCount = n
	}

	if info.HasRemote && head.Name().IsBranch() {
		info.UnpushedCount = countUnpushed(repo, head.Hash(), info.CurrentBranch)
	}

	info.StaleBranches = staleBranches(repo, info.CurrentBranch, cutoff)

	return info, nil
}

// statusCounts tallies staged, unstaged, and untracked entries the way the
// dashboard reports them: every untracked file counts once, and a file both
// staged and modified counts in both buckets.
func statusCounts(repo *git.Repository) (staged, unstaged, untracked int) {
	wt, err := repo.Worktree()
	if err != nil {
		return 0, 0, 0
	}
	st, err := wt.Status()
	if err != nil {
		return 0, 0, 0
	}
	for _, fs := range st {
		if fs.Staging == git.Untracked {
			untracked++
			continue
		}
		if fs.Staging != git.Unmodified {
			staged++
		}
		if fs.Worktree != git.Unmodified {
			unstaged++
		}
	}
	return staged, unstaged, untracked
}

// countUnpushed counts commits reachable from localHead that the
// remote-tracking ref for branch does not contain. Walks are capped so a
// scan never degrades into full-history traversal.
func countUnpushed(repo *git.Repository, localHead plumbing.Hash, branch string) int {
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return 0
	}
	remote := commitHashSet(repo, remoteRef.Hash(), 200)

	iter, err := repo.Log(&git.LogOptions{From: localHead})
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
		if _, ok := remote[c.Hash]; ok {
			break
		}
		count++
	}
	return count
}

// staleBranches reports local branches whose tip is older than cutoff and is
// not contained in the default branch's recent history.
func staleBranches(repo *git.Repository, currentBranch string, cutoff time.Time) []StaleBranch {
	defaultName := ""
	local := map[string]plumbing.Hash{}
	branches, err := repo.Branches()
	if err != nil {
		return nil
	}
	_ = branches.ForEach(func(ref *plumbing.Reference) error {
		local[ref.Name().Short()] = ref.Hash()
		return nil
	})

	for _, candidate := range defaultBranchCandidates {
		if _, ok := local[candidate]; ok {
			defaultName = candidate
			break
		}
	}
	if defaultName == "" {
		if _, ok := local[currentBranch]; ok && currentBranch != "HEAD" {
			defaultName = currentBranch
		} else {
			return nil
		}
	}

	defaultHistory := commitHashSet(repo, local[defaultName], 200)
	now := time.Now()

	var stale []StaleBranch
	for name, hash := range local {
		if name == defaultName {
			continue
		}
		c, err := repo.CommitObject(hash)
		if err != nil {
			continue
		}
		when := c.Committer.When
		if !when.Before(cutoff) {
			continue
		}
		if _, merged := defaultHistory[hash]; merged {
			continue
		}
		stale = append(stale, StaleBranch{
			Name:           name,
			LastCommitDate: &when,
			DaysStale:      int(now.Sub(when).Hours() / 24),
		})
	}
	return stale
}

// commitHashSet collects up to max commit hashes reachable from from.
func commitHashSet(repo *git.Repository, from plumbing.Hash, max int) map[plumbing.Hash]struct{} {
	set := make(map[plumbing.Hash]struct{}, max)
	iter, err := repo.Log(&git.LogOptions{From: from})
	if err != nil {
		return set
	}
	defer iter.Close()
	for len(set) < max {
		c, err := iter.Next()
		if err != nil {
			break
		}
		set[c.Hash] = struct{}{}
	}
	return set
}
