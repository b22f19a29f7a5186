package client

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/devpulse/internal/logfields"
)

// FavoritesMirror keeps a local view of the user's favorites and applies
// toggles optimistically: the local state flips immediately, the server call
// runs behind it, and a failure rolls the flip back.
//
// Each path carries a monotonic version counter. A toggle bumps the version
// before calling the server, and the rollback only applies if no newer toggle
// has happened for that path in the meantime. Rapid repeated toggles thus
// converge on the latest user intent instead of replaying stale failures.
type FavoritesMirror struct {
	client *Client
	logger *slog.Logger

	mu        sync.Mutex
	favorites map[string]bool
	versions  map[string]uint64
}

// NewFavoritesMirror creates an empty mirror backed by the given client.
func NewFavoritesMirror(c *Client, logger *slog.Logger) *FavoritesMirror {
	return &FavoritesMirror{
		client:    c,
		logger:    logger,
		favorites: map[string]bool{},
		versions:  map[string]uint64{},
	}
}

// Fetch replaces the mirror with the server's current favorites. A fetch
// failure is logged and degrades to an empty mirror rather than stale or
// partial state; callers proceed as if nothing is favorited yet.
func (m *FavoritesMirror) Fetch(ctx context.Context) {
	list, err := m.client.Favorites(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites = map[string]bool{}
	if err != nil {
		m.logger.Warn("favorites fetch failed", logfields.Error(err))
		return
	}
	for _, f := range list {
		m.favorites[f.RepoPath] = true
	}
}

// IsFavorite reports the current local view for a path.
func (m *FavoritesMirror) IsFavorite(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.favorites[path]
}

// Paths returns all paths currently marked favorite.
func (m *FavoritesMirror) Paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.favorites))
	for p, fav := range m.favorites {
		if fav {
			out = append(out, p)
		}
	}
	return out
}

// Add favorites a path on the server and records it locally on success.
// Together with Remove and IsFavorite this lets the mirror back bulk actions.
func (m *FavoritesMirror) Add(ctx context.Context, path, name string) error {
	if err := m.client.AddFavorite(ctx, path, name); err != nil {
		return err
	}
	m.mu.Lock()
	m.favorites[path] = true
	m.versions[path]++
	m.mu.Unlock()
	return nil
}

// Remove unfavorites a path on the server and clears it locally on success.
func (m *FavoritesMirror) Remove(ctx context.Context, path string) error {
	if err := m.client.RemoveFavorite(ctx, path); err != nil {
		return err
	}
	m.mu.Lock()
	m.favorites[path] = false
	m.versions[path]++
	m.mu.Unlock()
	return nil
}

// Toggle flips favorite status for a path optimistically and synchronizes
// with the server. It returns the local state after the call settles.
func (m *FavoritesMirror) Toggle(ctx context.Context, path, name string) bool {
	m.mu.Lock()
	wasFavorite := m.favorites[path]
	m.favorites[path] = !wasFavorite
	m.versions[path]++
	version := m.versions[path]
	m.mu.Unlock()

	var err error
	if wasFavorite {
		err = m.client.RemoveFavorite(ctx, path)
	} else {
		err = m.client.AddFavorite(ctx, path, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		// Roll back only if this is still the latest toggle for the path.
		if m.versions[path] == version {
			m.favorites[path] = wasFavorite
		}
		m.logger.Warn("favorite toggle failed",
			logfields.Path(path),
			slog.Bool("was_favorite", wasFavorite),
			logfields.Error(err))
	}
	return m.favorites[path]
}
