package gitscan

import (
	"errors"
	"log/slog"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/devpulse/internal/logfields"
)

// Pull checks out branch in the repository at path and pulls from origin.
// Failures are reported in the result rather than as an error so batch
// callers can surface per-repo outcomes.
func Pull(path, branch string) PullResult {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return PullResult{Branch: branch, Error: err.Error()}
	}
	wt, err := repo.Worktree()
	if err != nil {
		return PullResult{Branch: branch, Error: err.Error()}
	}

	if branch != "" {
		err = wt.Checkout(&git.CheckoutOptions{
			Branch: plumbing.NewBranchReferenceName(branch),
		})
		if err != nil {
			return PullResult{Branch: branch, Error: err.Error()}
		}
	}

	err = wt.Pull(&git.PullOptions{RemoteName: "origin"})
	output := "updated"
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		output = "already up to date"
		err = nil
	}
	if err != nil {
		return PullResult{Branch: branch, Error: err.Error()}
	}

	current := branch
	if head, herr := repo.Head(); herr == nil && head.Name().IsBranch() {
		current = head.Name().Short()
	}

	slog.Info("repository pulled", logfields.Path(path), logfields.Branch(branch))
	return PullResult{
		Success:       true,
		Branch:        branch,
		Output:        output,
		CurrentBranch: current,
	}
}
