// Package responses defines API response types used by DevPulse HTTP handlers.
package responses

import (
	"time"

	"git.home.luguber.info/inful/devpulse/internal/daemon"
	"git.home.luguber.info/inful/devpulse/internal/favorites"
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/presets"
)

// ReposResponse is the repository listing with filter metadata.
type ReposResponse struct {
	Repos         []gitscan.RepoInfo `json:"repos"`
	TotalCount    int                `json:"total_count"`
	FilteredCount int                `json:"filtered_count"`
	Branches      []string           `json:"branches"`
	ScannedAt     time.Time          `json:"scanned_at"`
}

// AnalyzeResponse wraps a repository work summary.
type AnalyzeResponse struct {
	Summary gitscan.WorkSummary `json:"summary"`
}

// PullResponse reports the outcome of a pull operation.
type PullResponse struct {
	Result gitscan.PullResult `json:"result"`
}

// FavoritesResponse lists a user's favorites.
type FavoritesResponse struct {
	Favorites []favorites.Favorite `json:"favorites"`
	Count     int                  `json:"count"`
}

// FavoriteCheckResponse maps repository paths to favorite status.
type FavoriteCheckResponse struct {
	Favorites map[string]bool `json:"favorites"`
}

// PresetsResponse lists a user's saved filter presets.
type PresetsResponse struct {
	Presets []presets.Preset `json:"presets"`
}

// StatusResponse is the daemon's operational status.
type StatusResponse struct {
	Status      string        `json:"status"`
	Version     string        `json:"version"`
	DefaultView string        `json:"default_view"`
	Daemon      daemon.Status `json:"daemon"`
}

// HealthResponse is the health check payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageResponse is a generic success acknowledgement.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
