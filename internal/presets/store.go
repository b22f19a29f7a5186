// Package presets persists named filter presets per user in SQLite.
package presets

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	dperrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
)

// Preset is a saved filter combination a user can recall by name.
// At most one preset per user is the default, applied on dashboard load.
type Preset struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Name      string            `json:"name"`
	Criteria  repoview.Criteria `json:"criteria"`
	IsDefault bool              `json:"is_default"`
	CreatedAt time.Time         `json:"created_at"`
}

// Update carries optional field changes for an existing preset.
// Nil fields are left untouched.
type Update struct {
	Name      *string
	Criteria  *repoview.Criteria
	IsDefault *bool
}

// Store persists presets in SQLite.
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
	CREATE TABLE IF NOT EXISTS filter_presets (
		id TEXT PRIMARY KEY,
		user TEXT NOT NULL,
		name TEXT NOT NULL,
		search_term TEXT NOT NULL DEFAULT '',
		activity_filter TEXT NOT NULL DEFAULT 'all',
		status_filter TEXT NOT NULL DEFAULT 'all',
		branch_filter TEXT NOT NULL DEFAULT 'all',
		is_default INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		UNIQUE (user, name)
	);
	CREATE INDEX IF NOT EXISTS idx_presets_user ON filter_presets(user);
	`
	_, err := s.db.Exec(schema)
	return err
}

// List returns the user's presets in creation order.
func (s *Store) List(ctx context.Context, user string) ([]Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user, name, search_term, activity_filter, status_filter, branch_filter, is_default, created_at FROM filter_presets WHERE user = ? ORDER BY created_at, id",
		user,
	)
	if err != nil {
		return nil, dperrors.StorageError("query presets", err)
	}
	defer rows.Close()

	presets := []Preset{}
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}
	if err := rows.Err(); err != nil {
		return nil, dperrors.StorageError("iterate presets", err)
	}
	return presets, nil
}

// Get returns a single preset by id, scoped to the user.
func (s *Store) Get(ctx context.Context, user, id string) (Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, user, id)
}

// Default returns the user's default preset, or nil when none is set.
func (s *Store) Default(ctx context.Context, user string) (*Preset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, user, name, search_term, activity_filter, status_filter, branch_filter, is_default, created_at FROM filter_presets WHERE user = ? AND is_default = 1",
		user,
	)
	p, err := scanPreset(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create saves a new preset. Names are unique per user. Marking the new
// preset default clears the flag on any previous default.
func (s *Store) Create(ctx context.Context, user, name string, criteria repoview.Criteria, isDefault bool) (Preset, error) {
	if name == "" {
		return Preset{}, dperrors.ValidationError("preset name must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM filter_presets WHERE user = ? AND name = ?", user, name,
	).Scan(&one)
	if err == nil {
		return Preset{}, dperrors.AlreadyExists("preset").WithContext("name", name)
	}
	if err != sql.ErrNoRows {
		return Preset{}, dperrors.StorageError("query preset name", err)
	}

	if isDefault {
		if err := s.clearDefault(ctx, user, ""); err != nil {
			return Preset{}, err
		}
	}

	p := Preset{
		ID:        uuid.New().String(),
		User:      user,
		Name:      name,
		Criteria:  normalized(criteria),
		IsDefault: isDefault,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO filter_presets (id, user, name, search_term, activity_filter, status_filter, branch_filter, is_default, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.User, p.Name, p.Criteria.Search, string(p.Criteria.Activity), string(p.Criteria.Status), p.Criteria.Branch, boolToInt(p.IsDefault), p.CreatedAt.Unix(),
	)
	if err != nil {
		return Preset{}, dperrors.StorageError("insert preset", err)
	}
	return p, nil
}

// UpdatePreset applies partial changes to an existing preset. Setting
// IsDefault true clears the flag on every other preset of the user.
func (s *Store) UpdatePreset(ctx context.Context, user, id string, upd Update) (Preset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.get(ctx, user, id)
	if err != nil {
		return Preset{}, err
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return Preset{}, dperrors.ValidationError("preset name must not be empty")
		}
		p.Name = *upd.Name
	}
	if upd.Criteria != nil {
		p.Criteria = normalized(*upd.Criteria)
	}
	if upd.IsDefault != nil {
		if *upd.IsDefault {
			if err := s.clearDefault(ctx, user, id); err != nil {
				return Preset{}, err
			}
		}
		p.IsDefault = *upd.IsDefault
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE filter_presets SET name = ?, search_term = ?, activity_filter = ?, status_filter = ?, branch_filter = ?, is_default = ? WHERE id = ? AND user = ?",
		p.Name, p.Criteria.Search, string(p.Criteria.Activity), string(p.Criteria.Status), p.Criteria.Branch, boolToInt(p.IsDefault), id, user,
	)
	if err != nil {
		return Preset{}, dperrors.StorageError("update preset", err)
	}
	return p, nil
}

// Delete removes a preset by id.
func (s *Store) Delete(ctx context.Context, user, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM filter_presets WHERE id = ? AND user = ?", id, user,
	)
	if err != nil {
		return dperrors.StorageError("delete preset", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return dperrors.StorageError("count deleted presets", err)
	}
	if affected == 0 {
		return dperrors.NotFound("preset").WithContext("id", id)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, user, id string) (Preset, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, user, name, search_term, activity_filter, status_filter, branch_filter, is_default, created_at FROM filter_presets WHERE id = ? AND user = ?",
		id, user,
	)
	p, err := scanPreset(row)
	if err == sql.ErrNoRows {
		return Preset{}, dperrors.NotFound("preset").WithContext("id", id)
	}
	return p, err
}

// clearDefault unsets is_default on every preset of the user except keepID.
func (s *Store) clearDefault(ctx context.Context, user, keepID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE filter_presets SET is_default = 0 WHERE user = ? AND id != ?", user, keepID,
	)
	if err != nil {
		return dperrors.StorageError("clear default preset", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreset(row rowScanner) (Preset, error) {
	var p Preset
	var activity, status string
	var isDefault int
	var createdUnix int64
	err := row.Scan(&p.ID, &p.User, &p.Name, &p.Criteria.Search, &activity, &status, &p.Criteria.Branch, &isDefault, &createdUnix)
	if err == sql.ErrNoRows {
		return Preset{}, err
	}
	if err != nil {
		return Preset{}, dperrors.StorageError("scan preset", err)
	}
	p.Criteria.Activity = repoview.ActivityFilter(activity)
	p.Criteria.Status = repoview.StatusFilter(status)
	p.IsDefault = isDefault != 0
	p.CreatedAt = time.Unix(createdUnix, 0).UTC()
	return p, nil
}

// normalized fills empty criteria fields with their pass-through values so
// stored presets round-trip cleanly.
func normalized(c repoview.Criteria) repoview.Criteria {
	if c.Activity == "" {
		c.Activity = repoview.ActivityAll
	}
	if c.Status == "" {
		c.Status = repoview.StatusAll
	}
	if c.Branch == "" {
		c.Branch = repoview.BranchAll
	}
	return c
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
