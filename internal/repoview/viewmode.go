package repoview

// ViewMode selects how the filtered list is rendered. It is pure UI state:
// changing it never touches filter or selection state and never triggers a
// refetch.
type ViewMode string

const (
	ViewGrid          ViewMode = "grid"
	ViewList          ViewMode = "list"
	ViewVisualization ViewMode = "visualization"
)

// ParseViewMode maps a config or query value to a ViewMode, defaulting to grid.
func ParseViewMode(s string) ViewMode {
	switch ViewMode(s) {
	case ViewList:
		return ViewList
	case ViewVisualization:
		return ViewVisualization
	default:
		return ViewGrid
	}
}
