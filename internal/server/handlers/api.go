package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/daemon"
	derrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/favorites"
	"git.home.luguber.info/inful/devpulse/internal/gitscan"
	"git.home.luguber.info/inful/devpulse/internal/logfields"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/presets"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
	"git.home.luguber.info/inful/devpulse/internal/server/responses"
)

// Handlers bundles the API endpoints and their dependencies.
type Handlers struct {
	runtime   *daemon.Runtime
	favorites *favorites.Store
	presets   *presets.Store
	analyzer  *gitscan.Analyzer
	adapter   *derrors.HTTPErrorAdapter
	recorder  metrics.Recorder
	logger    *slog.Logger
	user      string
	version   string
	view      repoview.ViewMode
}

// New wires the handler set. recorder may be nil (noop).
func New(runtime *daemon.Runtime, favStore *favorites.Store, presetStore *presets.Store, recorder metrics.Recorder, logger *slog.Logger, user, version, defaultView string) *Handlers {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Handlers{
		runtime:   runtime,
		favorites: favStore,
		presets:   presetStore,
		analyzer:  gitscan.NewAnalyzer(),
		adapter:   derrors.NewHTTPErrorAdapter(logger),
		recorder:  recorder,
		logger:    logger,
		user:      user,
		version:   version,
		view:      repoview.ParseViewMode(defaultView),
	}
}

// HandleRepos serves the repository listing with filtering and sorting.
//
// Query parameters: search, activity (all|active|inactive), status
// (all|clean|dirty), branch, sort (name|status|uncommitted|commits|activity),
// order (asc|desc), refresh (bypass the scan cache).
func (h *Handlers) HandleRepos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	force := q.Get("refresh") == "true" || q.Get("refresh") == "1"

	repos, err := h.runtime.Repos(r.Context(), force)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	criteria := criteriaFromQuery(q.Get("search"), q.Get("activity"), q.Get("status"), q.Get("branch"))
	filtered := repoview.Apply(repos, criteria)

	if sortKey := q.Get("sort"); sortKey != "" {
		f := gitscan.Filters{SortBy: gitscan.SortKey(sortKey), SortDesc: q.Get("order") == "desc"}
		filtered = f.Apply(filtered)
	}

	_ = writeJSON(w, http.StatusOK, responses.ReposResponse{
		Repos:         filtered,
		TotalCount:    len(repos),
		FilteredCount: len(filtered),
		Branches:      repoview.Branches(repos),
		ScannedAt:     time.Now(),
	})
}

func criteriaFromQuery(search, activity, status, branch string) repoview.Criteria {
	c := repoview.DefaultCriteria()
	c.Search = search
	if activity != "" {
		c.Activity = repoview.ActivityFilter(activity)
	}
	if status != "" {
		c.Status = repoview.StatusFilter(status)
	}
	if branch != "" {
		c.Branch = branch
	}
	return c
}

type analyzeRequest struct {
	Path       string `json:"path"`
	MaxCommits int    `json:"max_commits"`
	SinceDays  int    `json:"since_days"`
}

// HandleAnalyze returns the recent work summary for a single repository.
func (h *Handlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
		return
	}
	if req.Path == "" {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("path is required"))
		return
	}

	summary, err := h.analyzer.WorkSummary(req.Path, req.MaxCommits, req.SinceDays)
	h.recorder.IncGitOperation("analyze", metrics.ResultFromError(err))
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, responses.AnalyzeResponse{Summary: *summary})
}

type pullRequest struct {
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
}

// HandlePull checks out the requested branch (when given) and pulls from
// origin. Pull failures are reported inside the result, not as HTTP errors.
func (h *Handlers) HandlePull(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req pullRequest
	if err := decodeJSON(r, &req); err != nil {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
		return
	}
	if req.Path == "" {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("path is required"))
		return
	}

	result := gitscan.Pull(req.Path, req.Branch)
	if result.Success {
		h.recorder.IncGitOperation("pull", metrics.ResultSuccess)
		h.runtime.Invalidate()
	} else {
		h.recorder.IncGitOperation("pull", metrics.ResultFailed)
	}
	h.logger.Info("pull requested",
		logfields.Path(req.Path),
		logfields.Branch(req.Branch),
		slog.Bool("success", result.Success))

	_ = writeJSON(w, http.StatusOK, responses.PullResponse{Result: result})
}

type exportRequest struct {
	Paths []string `json:"paths"`
}

// HandleExportCSV streams the selected repositories as a CSV download.
// Selection comes from the JSON body (POST) or the comma-separated paths
// query parameter (GET). An empty selection yields 204 and no body.
func (h *Handlers) HandleExportCSV(w http.ResponseWriter, r *http.Request) {
	var paths []string
	switch r.Method {
	case http.MethodGet:
		if raw := r.URL.Query().Get("paths"); raw != "" {
			paths = strings.Split(raw, ",")
		}
	case http.MethodPost:
		var req exportRequest
		if err := decodeJSON(r, &req); err != nil {
			h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
			return
		}
		paths = req.Paths
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	selection := repoview.NewSelection()
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			selection.Toggle(p)
		}
	}
	if selection.Size() == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	repos, err := h.runtime.Repos(r.Context(), false)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+repoview.ExportFilename(time.Now())+`"`)
	if err := repoview.ExportCSV(w, selection, repos); err != nil {
		h.logger.Error("csv export failed", logfields.Error(err))
	}
}
