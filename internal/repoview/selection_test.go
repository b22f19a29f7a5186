package repoview

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleIsInvolution(t *testing.T) {
	s := NewSelection()
	s.Toggle("/r/alpha")
	assert.True(t, s.Has("/r/alpha"))
	s.Toggle("/r/alpha")
	assert.False(t, s.Has("/r/alpha"))
	assert.Zero(t, s.Size())
}

func TestSelectAllVisibleIsHardReplace(t *testing.T) {
	repos := sampleRepos()
	s := NewSelection()
	s.Toggle("/r/alpha")
	s.Toggle("/r/beta")

	// Filter such that beta drops out, then select all visible: the result
	// must be exactly the visible set, not a union with prior selection.
	filtered := Apply(repos, Criteria{Branch: "main"}) // alpha, gamma
	s.SelectAllVisible(filtered)

	got := s.Paths()
	sort.Strings(got)
	assert.Equal(t, []string{"/r/alpha", "/r/gamma"}, got)
	assert.False(t, s.Has("/r/beta"))
}

func TestSelectAllVisibleOfEmptyViewClears(t *testing.T) {
	s := NewSelection()
	s.Toggle("/r/alpha")
	s.SelectAllVisible(nil)
	assert.Zero(t, s.Size())
}

func TestClearEmptiesSelection(t *testing.T) {
	s := NewSelection()
	s.Toggle("/r/alpha")
	s.Toggle("/r/beta")
	s.Clear()
	assert.Zero(t, s.Size())
	assert.Empty(t, s.Paths())
}

func TestSelectionSurvivesFilterChanges(t *testing.T) {
	repos := sampleRepos()
	s := NewSelection()
	s.Toggle("/r/beta")

	// Applying a filter that hides beta must not prune the selection.
	_ = Apply(repos, Criteria{Branch: "main"})
	assert.True(t, s.Has("/r/beta"))
}
