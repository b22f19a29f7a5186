package repoview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/devpulse/internal/gitscan"
)

func ts(daysAgo int) *time.Time {
	t := time.Now().AddDate(0, 0, -daysAgo)
	return &t
}

func sampleRepos() []gitscan.RepoInfo {
	return []gitscan.RepoInfo{
		{Name: "alpha", Path: "/r/alpha", CurrentBranch: "main", Status: gitscan.StatusClean, LastCommitAt: ts(2)},
		{Name: "beta", Path: "/r/beta", CurrentBranch: "dev", Status: gitscan.StatusDirty, LastCommitAt: ts(45)},
		{Name: "gamma", Path: "/r/gamma", CurrentBranch: "main", Status: gitscan.StatusDirty, LastCommitAt: ts(1)},
	}
}

func TestApplyIsSubsetAndConjunctive(t *testing.T) {
	repos := sampleRepos()

	// search="al" keeps only alpha
	got := Apply(repos, Criteria{Search: "al", Activity: ActivityAll, Status: StatusAll, Branch: BranchAll})
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)

	// combination semantics are AND: search "al" + status dirty excludes
	// alpha (clean) and beta (search miss) alike
	got = Apply(repos, Criteria{Search: "al", Activity: ActivityAll, Status: StatusDirty, Branch: BranchAll})
	assert.Empty(t, got)

	// every surviving element satisfies all predicates
	got = Apply(repos, Criteria{Status: StatusDirty, Branch: "main"})
	require.Len(t, got, 1)
	assert.Equal(t, "gamma", got[0].Name)
}

func TestApplySearchIsCaseInsensitive(t *testing.T) {
	got := Apply(sampleRepos(), Criteria{Search: "ALPH"})
	require.Len(t, got, 1)
	assert.Equal(t, "alpha", got[0].Name)
}

func TestActivityPartitionsByRecency(t *testing.T) {
	repos := sampleRepos()

	active := Apply(repos, Criteria{Activity: ActivityActive})
	require.Len(t, active, 2)

	inactive := Apply(repos, Criteria{Activity: ActivityInactive})
	require.Len(t, inactive, 1)
	assert.Equal(t, "beta", inactive[0].Name)

	// a repo with no commits at all is inactive
	noCommits := []gitscan.RepoInfo{{Name: "empty", Path: "/r/empty", CurrentBranch: "main"}}
	assert.Empty(t, Apply(noCommits, Criteria{Activity: ActivityActive}))
	assert.Len(t, Apply(noCommits, Criteria{Activity: ActivityInactive}), 1)
}

func TestClearRestoresIdentity(t *testing.T) {
	repos := sampleRepos()
	v := NewView(repos)
	v.SetCriteria(Criteria{Search: "x", Activity: ActivityActive, Status: StatusDirty, Branch: "dev"})
	assert.True(t, v.HasActiveFilters())

	v.Clear()
	assert.False(t, v.HasActiveFilters())
	assert.Equal(t, repos, v.Filtered(), "clear followed by apply must be identity")
	assert.Equal(t, v.TotalCount(), v.FilteredCount())
}

func TestDerivedCounts(t *testing.T) {
	v := NewView(sampleRepos())
	assert.Equal(t, 3, v.TotalCount())

	v.SetCriteria(Criteria{Status: StatusDirty})
	assert.Equal(t, 2, v.FilteredCount())
	assert.Equal(t, 3, v.TotalCount())
}

func TestBranchOptionsAreDerivedAndSorted(t *testing.T) {
	assert.Equal(t, []string{"dev", "main"}, Branches(sampleRepos()))
	assert.Empty(t, Branches(nil))
}

func TestIsDefaultTreatsZeroAndAllAlike(t *testing.T) {
	assert.True(t, Criteria{}.IsDefault())
	assert.True(t, DefaultCriteria().IsDefault())
	assert.False(t, Criteria{Search: "a"}.IsDefault())
	assert.False(t, Criteria{Branch: "main"}.IsDefault())
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	repos := sampleRepos()
	snapshot := append([]gitscan.RepoInfo(nil), repos...)
	_ = Apply(repos, Criteria{Status: StatusDirty})
	assert.Equal(t, snapshot, repos)
}

func TestParseViewMode(t *testing.T) {
	assert.Equal(t, ViewGrid, ParseViewMode(""))
	assert.Equal(t, ViewGrid, ParseViewMode("mosaic"))
	assert.Equal(t, ViewList, ParseViewMode("list"))
	assert.Equal(t, ViewVisualization, ParseViewMode("visualization"))
}
