package repoview

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/logfields"
)

// Favoriter is the slice of the favorites store the dispatcher needs.
type Favoriter interface {
	IsFavorite(path string) bool
	Add(ctx context.Context, path, name string) error
	Remove(ctx context.Context, path string) error
}

// Dispatcher executes bulk actions against the current selection. Actions
// operate on the intersection of the selection and the passed repository
// list: paths selected but filtered out of view are skipped for every action,
// export and favorites alike.
type Dispatcher struct {
	favorites Favoriter
}

// NewDispatcher wires a dispatcher to a favorites backend.
func NewDispatcher(favorites Favoriter) *Dispatcher {
	return &Dispatcher{favorites: favorites}
}

// FavoriteAll favorites every selected, visible repository not already
// favorited. Calls are sequential and independent: a failure is logged and
// counted but does not roll back earlier successes or stop the loop.
// Returns how many favorites were added and how many calls failed.
func (d *Dispatcher) FavoriteAll(ctx context.Context, selection *Selection, repos []gitscan.RepoInfo) (added, failed int) {
	if selection == nil || selection.Size() == 0 {
		return 0, 0
	}
	for _, r := range repos {
		if !selection.Has(r.Path) || d.favorites.IsFavorite(r.Path) {
			continue
		}
		if err := d.favorites.Add(ctx, r.Path, r.Name); err != nil {
			slog.Warn("bulk favorite failed", logfields.Path(r.Path), logfields.Error(err))
			failed++
			continue
		}
		added++
	}
	return added, failed
}

// UnfavoriteAll removes favorite status from every selected, visible
// repository currently favorited. Same partial-failure semantics as
// FavoriteAll.
func (d *Dispatcher) UnfavoriteAll(ctx context.Context, selection *Selection, repos []gitscan.RepoInfo) (removed, failed int) {
	if selection == nil || selection.Size() == 0 {
		return 0, 0
	}
	for _, r := range repos {
		if !selection.Has(r.Path) || !d.favorites.IsFavorite(r.Path) {
			continue
		}
		if err := d.favorites.Remove(ctx, r.Path); err != nil {
			slog.Warn("bulk unfavorite failed", logfields.Path(r.Path), logfields.Error(err))
			failed++
			continue
		}
		removed++
	}
	return removed, failed
}
