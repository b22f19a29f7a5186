// Package repoview implements the dashboard's repository list state: filter
// criteria, selection, view modes, and the bulk actions that operate on them.
package repoview

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/util/sets"
)

// ActivityFilter partitions repositories by commit recency.
type ActivityFilter string

const (
	ActivityAll      ActivityFilter = "all"
	ActivityActive   ActivityFilter = "active"
	ActivityInactive ActivityFilter = "inactive"
)

// StatusFilter matches the repository's clean/dirty status.
type StatusFilter string

const (
	StatusAll   StatusFilter = "all"
	StatusClean StatusFilter = "clean"
	StatusDirty StatusFilter = "dirty"
)

// BranchAll is the pass-through branch filter value.
const BranchAll = "all"

// activityWindow is the recency threshold separating active from inactive.
const activityWindow = 30 * 24 * time.Hour

// Criteria is the complete filter tuple. The zero value does not filter;
// use DefaultCriteria for the canonical defaults.
type Criteria struct {
	Search   string         `json:"search"`
	Activity ActivityFilter `json:"activity"`
	Status   StatusFilter   `json:"status"`
	Branch   string         `json:"branch"`
}

// DefaultCriteria returns the pass-through criteria tuple.
func DefaultCriteria() Criteria {
	return Criteria{Activity: ActivityAll, Status: StatusAll, Branch: BranchAll}
}

// IsDefault reports whether no criterion deviates from its default.
func (c Criteria) IsDefault() bool {
	return c.Search == "" &&
		(c.Activity == "" || c.Activity == ActivityAll) &&
		(c.Status == "" || c.Status == StatusAll) &&
		(c.Branch == "" || c.Branch == BranchAll)
}

// Matches reports whether a single repository passes every active predicate.
// Predicates are conjunctive; each passes through at its default value.
func (c Criteria) Matches(r gitscan.RepoInfo, now time.Time) bool {
	if c.Search != "" && !strings.Contains(strings.ToLower(r.Name), strings.ToLower(c.Search)) {
		return false
	}
	switch c.Activity {
	case ActivityActive:
		if !isActive(r, now) {
			return false
		}
	case ActivityInactive:
		if isActive(r, now) {
			return false
		}
	}
	switch c.Status {
	case StatusClean:
		if r.Status != gitscan.StatusClean {
			return false
		}
	case StatusDirty:
		if r.Status != gitscan.StatusDirty {
			return false
		}
	}
	if c.Branch != "" && c.Branch != BranchAll && r.CurrentBranch != c.Branch {
		return false
	}
	return true
}

// isActive applies the 30-day recency threshold on the last commit.
func isActive(r gitscan.RepoInfo, now time.Time) bool {
	return r.LastCommitAt != nil && now.Sub(*r.LastCommitAt) <= activityWindow
}

// Apply returns the subset of repos passing all active predicates, in input
// order. The input slice is never mutated.
func Apply(repos []gitscan.RepoInfo, c Criteria) []gitscan.RepoInfo {
	now := time.Now()
	out := make([]gitscan.RepoInfo, 0, len(repos))
	for _, r := range repos {
		if c.Matches(r, now) {
			out = append(out, r)
		}
	}
	return out
}

// Branches derives the distinct, sorted branch-filter option set from the
// observed current branches.
func Branches(repos []gitscan.RepoInfo) []string {
	s := sets.New[string]()
	for _, r := range repos {
		if r.CurrentBranch != "" {
			s.Add(r.CurrentBranch)
		}
	}
	return sets.SortedStrings(s)
}

// View binds a repository list to filter criteria and exposes the derived
// values the dashboard renders. Repos are treated as immutable input.
type View struct {
	repos    []gitscan.RepoInfo
	criteria Criteria
}

// NewView creates a view over repos with default criteria.
func NewView(repos []gitscan.RepoInfo) *View {
	return &View{repos: repos, criteria: DefaultCriteria()}
}

// SetCriteria replaces the whole filter tuple in one transition.
func (v *View) SetCriteria(c Criteria) { v.criteria = c }

// Criteria returns the current filter tuple.
func (v *View) Criteria() Criteria { return v.criteria }

// Clear resets all four criteria to their defaults in a single transition.
func (v *View) Clear() { v.criteria = DefaultCriteria() }

// Filtered returns the repositories passing the current criteria.
func (v *View) Filtered() []gitscan.RepoInfo { return Apply(v.repos, v.criteria) }

// FilteredCount returns the size of the filtered subset.
func (v *View) FilteredCount() int { return len(v.Filtered()) }

// TotalCount returns the size of the unfiltered list.
func (v *View) TotalCount() int { return len(v.repos) }

// HasActiveFilters reports whether any criterion deviates from its default.
func (v *View) HasActiveFilters() bool { return !v.criteria.IsDefault() }

// Branches returns the branch-filter option set for the full list.
func (v *View) Branches() []string { return Branches(v.repos) }
