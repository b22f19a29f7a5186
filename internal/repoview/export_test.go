package repoview

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSVEmptySelectionIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, NewSelection(), sampleRepos()))
	assert.Zero(t, buf.Len())

	require.NoError(t, ExportCSV(&buf, nil, sampleRepos()))
	assert.Zero(t, buf.Len())
}

func TestExportCSVRowsAndColumnOrder(t *testing.T) {
	repos := sampleRepos()
	s := NewSelection()
	s.Toggle("/r/alpha")
	s.Toggle("/r/beta")

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, s, repos))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3, "header plus exactly two data rows")
	assert.Equal(t, []string{"Name", "Path", "Branch", "Status", "Commits", "Uncommitted"}, records[0])
	assert.Equal(t, []string{"alpha", "/r/alpha", "main", "clean", "0", "0"}, records[1])
	assert.Equal(t, "beta", records[2][0])
}

func TestExportCSVSkipsOutOfViewSelections(t *testing.T) {
	repos := sampleRepos()
	s := NewSelection()
	s.Toggle("/r/beta")
	s.Toggle("/r/ghost") // selected but not in the passed list

	filtered := Apply(repos, Criteria{Status: StatusDirty, Branch: "dev"}) // beta only
	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, s, filtered))

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "beta", records[1][0])
}

func TestExportFilename(t *testing.T) {
	at := time.Date(2026, 8, 26, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "repos_export_2026-08-26.csv", ExportFilename(at))
}
