package handlers

import (
	"net/http"
	"strings"

	derrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/presets"
	"git.home.luguber.info/inful/devpulse/internal/repoview"
	"git.home.luguber.info/inful/devpulse/internal/server/responses"
)

type presetRequest struct {
	Name           string `json:"name"`
	SearchTerm     string `json:"search_term"`
	ActivityFilter string `json:"activity_filter"`
	StatusFilter   string `json:"status_filter"`
	BranchFilter   string `json:"branch_filter"`
	IsDefault      bool   `json:"is_default"`
}

type presetUpdateRequest struct {
	Name           *string `json:"name,omitempty"`
	SearchTerm     *string `json:"search_term,omitempty"`
	ActivityFilter *string `json:"activity_filter,omitempty"`
	StatusFilter   *string `json:"status_filter,omitempty"`
	BranchFilter   *string `json:"branch_filter,omitempty"`
	IsDefault      *bool   `json:"is_default,omitempty"`
}

// HandlePresets serves the preset collection: GET lists, POST creates.
func (h *Handlers) HandlePresets(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.presets.List(r.Context(), h.user)
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, responses.PresetsResponse{Presets: list})

	case http.MethodPost:
		var req presetRequest
		if err := decodeJSON(r, &req); err != nil {
			h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
			return
		}
		criteria := repoview.Criteria{
			Search:   req.SearchTerm,
			Activity: repoview.ActivityFilter(req.ActivityFilter),
			Status:   repoview.StatusFilter(req.StatusFilter),
			Branch:   req.BranchFilter,
		}
		created, err := h.presets.Create(r.Context(), h.user, req.Name, criteria, req.IsDefault)
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusCreated, created)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// HandlePresetByID serves a single preset addressed by id: PUT updates,
// DELETE removes.
func (h *Handlers) HandlePresetByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/filter-presets/")
	if id == "" || strings.Contains(id, "/") {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("preset id is required"))
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req presetUpdateRequest
		if err := decodeJSON(r, &req); err != nil {
			h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
			return
		}
		upd := presets.Update{Name: req.Name, IsDefault: req.IsDefault}
		if req.SearchTerm != nil || req.ActivityFilter != nil || req.StatusFilter != nil || req.BranchFilter != nil {
			current, err := h.presets.Get(r.Context(), h.user, id)
			if err != nil {
				h.adapter.WriteErrorResponse(w, r, err)
				return
			}
			c := current.Criteria
			if req.SearchTerm != nil {
				c.Search = *req.SearchTerm
			}
			if req.ActivityFilter != nil {
				c.Activity = repoview.ActivityFilter(*req.ActivityFilter)
			}
			if req.StatusFilter != nil {
				c.Status = repoview.StatusFilter(*req.StatusFilter)
			}
			if req.BranchFilter != nil {
				c.Branch = *req.BranchFilter
			}
			upd.Criteria = &c
		}

		updated, err := h.presets.UpdatePreset(r.Context(), h.user, id, upd)
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := h.presets.Delete(r.Context(), h.user, id); err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, responses.MessageResponse{Status: "ok"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
