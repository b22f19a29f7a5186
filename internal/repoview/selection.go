package repoview

import (
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/util/sets"
)

// Selection tracks the repository paths chosen for bulk actions. It is
// deliberately independent of filtering: a path stays selected after being
// filtered out of view. Only SelectAllVisible resets it against the visible
// set.
type Selection struct {
	paths sets.Set[string]
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{paths: sets.New[string]()}
}

// Toggle flips membership of a single path.
func (s *Selection) Toggle(path string) {
	if s.paths.Has(path) {
		s.paths.Delete(path)
		return
	}
	s.paths.Add(path)
}

// Has reports whether path is selected.
func (s *Selection) Has(path string) bool { return s.paths.Has(path) }

// Size returns the number of selected paths.
func (s *Selection) Size() int { return s.paths.Len() }

// Paths returns the selected paths in unspecified order.
func (s *Selection) Paths() []string { return s.paths.Values() }

// SelectAllVisible replaces the selection with exactly the paths of the
// filtered list. This is a hard reset, not a union: prior out-of-view
// selections are dropped.
func (s *Selection) SelectAllVisible(filtered []gitscan.RepoInfo) {
	next := sets.New[string]()
	for _, r := range filtered {
		next.Add(r.Path)
	}
	s.paths = next
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.paths = sets.New[string]()
}
