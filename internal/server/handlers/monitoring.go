package handlers

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/devpulse/internal/server/responses"
)

// HandleHealth is the liveness probe.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = writeJSON(w, http.StatusOK, responses.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// HandleStatus reports daemon uptime and the last scan outcome.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	_ = writeJSON(w, http.StatusOK, responses.StatusResponse{
		Status:      "running",
		Version:     h.version,
		DefaultView: string(h.view),
		Daemon:      h.runtime.CurrentStatus(),
	})
}
