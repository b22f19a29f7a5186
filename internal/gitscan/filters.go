package gitscan

import (
	"sort"
	"strings"
)

// SortKey selects the scan listing order.
type SortKey string

const (
	SortByName        SortKey = "name"
	SortByStatus      SortKey = "status"
	SortByUncommitted SortKey = "uncommitted"
	SortByCommits     SortKey = "commits"
	SortByActivity    SortKey = "activity"
)

// Filters narrows a scan result server-side. Zero value passes everything.
type Filters struct {
	Status         RepoStatus // "" passes both
	HasUncommitted *bool
	MinCommits     int
	SortBy         SortKey
	SortDesc       bool
}

// Apply filters and sorts repos in place and returns the kept slice.
func (f Filters) Apply(repos []RepoInfo) []RepoInfo {
	kept := repos[:0]
	for _, r := range repos {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.HasUncommitted != nil {
			if *f.HasUncommitted && r.UncommittedCount == 0 {
				continue
			}
			if !*f.HasUncommitted && r.UncommittedCount > 0 {
				continue
			}
		}
		if f.MinCommits > 0 && r.RecentCommitCount < f.MinCommits {
			continue
		}
		kept = append(kept, r)
	}

	key := f.SortBy
	if key == "" {
		key = SortByName
	}
	less := func(a, b RepoInfo) bool {
		switch key {
		case SortByStatus:
			return a.Status < b.Status
		case SortByUncommitted:
			return a.UncommittedCount < b.UncommittedCount
		case SortByCommits:
			return a.RecentCommitCount < b.RecentCommitCount
		case SortByActivity:
			return a.UncommittedCount+a.RecentCommitCount < b.UncommittedCount+b.RecentCommitCount
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if f.SortDesc {
			return less(kept[j], kept[i])
		}
		return less(kept[i], kept[j])
	})
	return kept
}
