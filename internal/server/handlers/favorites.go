package handlers

import (
	"net/http"

	derrors "git.home.luguber.info/inful/devpulse/internal/errors"
	"git.home.luguber.info/inful/devpulse/internal/metrics"
	"git.home.luguber.info/inful/devpulse/internal/server/responses"
)

type favoriteRequest struct {
	RepoPath string `json:"repo_path"`
	RepoName string `json:"repo_name"`
}

// HandleFavorites serves the favorites collection: GET lists, POST adds,
// DELETE removes (path given via the path query parameter, since repository
// paths contain slashes).
func (h *Handlers) HandleFavorites(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.favorites.List(r.Context(), h.user)
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, responses.FavoritesResponse{Favorites: list, Count: len(list)})

	case http.MethodPost:
		var req favoriteRequest
		if err := decodeJSON(r, &req); err != nil {
			h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
			return
		}
		err := h.favorites.Add(r.Context(), h.user, req.RepoPath, req.RepoName)
		h.recorder.IncFavoriteOperation("add", metrics.ResultFromError(err))
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusCreated, responses.MessageResponse{Status: "ok"})

	case http.MethodDelete:
		path := r.URL.Query().Get("path")
		if path == "" {
			h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("path query parameter is required"))
			return
		}
		err := h.favorites.Remove(r.Context(), h.user, path)
		h.recorder.IncFavoriteOperation("remove", metrics.ResultFromError(err))
		if err != nil {
			h.adapter.WriteErrorResponse(w, r, err)
			return
		}
		_ = writeJSON(w, http.StatusOK, responses.MessageResponse{Status: "ok"})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

type favoriteCheckRequest struct {
	Paths []string `json:"paths"`
}

// HandleFavoritesCheck resolves favorite status for a batch of paths.
func (h *Handlers) HandleFavoritesCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req favoriteCheckRequest
	if err := decodeJSON(r, &req); err != nil {
		h.adapter.WriteErrorResponse(w, r, derrors.ValidationError("invalid request body"))
		return
	}

	result, err := h.favorites.Check(r.Context(), h.user, req.Paths)
	if err != nil {
		h.adapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeJSON(w, http.StatusOK, responses.FavoriteCheckResponse{Favorites: result})
}
