package repoview

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/gitscan"
)

// csvHeader is the fixed column order of repository exports.
var csvHeader = []string{"Name", "Path", "Branch", "Status", "Commits", "Uncommitted"}

// ExportCSV writes one row per selected repository present in repos, in repos
// order. Selected paths absent from repos are silently skipped. An empty
// selection writes nothing at all, not even the header.
func ExportCSV(w io.Writer, selection *Selection, repos []gitscan.RepoInfo) error {
	if selection == nil || selection.Size() == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range repos {
		if !selection.Has(r.Path) {
			continue
		}
		row := []string{
			r.Name,
			r.Path,
			r.CurrentBranch,
			string(r.Status),
			strconv.Itoa(r.RecentCommitCount),
			strconv.Itoa(r.UncommittedCount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename returns the download name for an export taken at now.
func ExportFilename(now time.Time) string {
	return fmt.Sprintf("repos_export_%s.csv", now.Format("2006-01-02"))
}
