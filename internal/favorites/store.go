// Package favorites persists per-user repository favorites in SQLite.
package favorites

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	dperrors "git.home.luguber.info/inful/devpulse/internal/errors"
)

// Favorite is one favorited repository for a user.
type Favorite struct {
	User      string    `json:"user"`
	RepoPath  string    `json:"repo_path"`
	RepoName  string    `json:"repo_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists favorites in SQLite.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens the database and ensures the schema exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS favorites (
		user TEXT NOT NULL,
		repo_path TEXT NOT NULL,
		repo_name TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (user, repo_path)
	);
	CREATE INDEX IF NOT EXISTS idx_favorites_user ON favorites(user);
	`
	_, err := s.db.Exec(schema)
	return err
}

// List returns the user's favorites ordered by creation time, newest first.
func (s *Store) List(ctx context.Context, user string) ([]Favorite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT user, repo_path, repo_name, created_at FROM favorites WHERE user = ? ORDER BY created_at DESC, repo_path",
		user,
	)
	if err != nil {
		return nil, dperrors.StorageError("query favorites", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var f Favorite
		var createdUnix int64
		if err := rows.Scan(&f.User, &f.RepoPath, &f.RepoName, &createdUnix); err != nil {
			return nil, dperrors.StorageError("scan favorite", err)
		}
		f.CreatedAt = time.Unix(createdUnix, 0).UTC()
		favorites = append(favorites, f)
	}
	if err := rows.Err(); err != nil {
		return nil, dperrors.StorageError("iterate favorites", err)
	}

	return favorites, nil
}

// Add records a favorite. Adding a path already favorited by the user
// returns an already-exists error.
func (s *Store) Add(ctx context.Context, user, repoPath, repoName string) error {
	if repoPath == "" {
		return dperrors.ValidationError("repo_path must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.exists(ctx, user, repoPath)
	if err != nil {
		return err
	}
	if exists {
		return dperrors.AlreadyExists("favorite").WithContext("path", repoPath)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO favorites (user, repo_path, repo_name, created_at) VALUES (?, ?, ?, ?)",
		user, repoPath, repoName, time.Now().Unix(),
	)
	if err != nil {
		return dperrors.StorageError("insert favorite", err)
	}
	return nil
}

// Remove deletes a favorite. Removing a path that is not favorited returns
// a not-found error.
func (s *Store) Remove(ctx context.Context, user, repoPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM favorites WHERE user = ? AND repo_path = ?",
		user, repoPath,
	)
	if err != nil {
		return dperrors.StorageError("delete favorite", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dperrors.StorageError("count deleted favorites", err)
	}
	if affected == 0 {
		return dperrors.NotFound("favorite").WithContext("path", repoPath)
	}
	return nil
}

// IsFavorite reports whether the user has favorited the path.
func (s *Store) IsFavorite(ctx context.Context, user, repoPath string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exists(ctx, user, repoPath)
}

// Check resolves favorite status for several paths in one call.
func (s *Store) Check(ctx context.Context, user string, repoPaths []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]bool, len(repoPaths))
	for _, p := range repoPaths {
		favorited, err := s.exists(ctx, user, p)
		if err != nil {
			return nil, err
		}
		result[p] = favorited
	}
	return result, nil
}

func (s *Store) exists(ctx context.Context, user, repoPath string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM favorites WHERE user = ? AND repo_path = ?",
		user, repoPath,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, dperrors.StorageError("query favorite", err)
	}
	return true, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
