// Package api exposes the campaign operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/outboundhq/dialer/internal/campaign"
	"github.com/outboundhq/dialer/internal/types"
	"github.com/rs/zerolog"
)

// CampaignHandler handles the campaign lifecycle endpoints
type CampaignHandler struct {
	orchestrator *campaign.Orchestrator
	logger       zerolog.Logger
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(orchestrator *campaign.Orchestrator, logger zerolog.Logger) *CampaignHandler {
	return &CampaignHandler{
		orchestrator: orchestrator,
		logger:       logger.With().Str("component", "campaigns").Logger(),
	}
}

// Register mounts the campaign routes
func (h *CampaignHandler) Register(r chi.Router) {
	r.Post("/campaigns", h.HandleLaunch)
	r.Post("/campaigns/{id}/pause", h.HandlePause)
	r.Post("/campaigns/{id}/resume", h.HandleResume)
	r.Post("/campaigns/{id}/cancel", h.HandleCancel)
	r.Get("/campaigns/{id}/stats", h.HandleStats)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (h *CampaignHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, types.ErrCampaignNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, types.ErrInvalidConfig):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error().Err(err).Msg("campaign operation failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// HandleLaunch handles POST /campaigns
func (h *CampaignHandler) HandleLaunch(w http.ResponseWriter, r *http.Request) {
	var config types.CampaignConfig
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	summary, err := h.orchestrator.Launch(r.Context(), config)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
}

// HandlePause handles POST /campaigns/{id}/pause
func (h *CampaignHandler) HandlePause(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.orchestrator.Pause(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"campaign_id": id, "state": string(types.CampaignPaused)})
}

// HandleResume handles POST /campaigns/{id}/resume
func (h *CampaignHandler) HandleResume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.orchestrator.Resume(id); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"campaign_id": id, "state": string(types.CampaignRunning)})
}

// HandleCancel handles POST /campaigns/{id}/cancel
func (h *CampaignHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.orchestrator.Cancel(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaign_id": id, "removed_jobs": removed})
}

// statsResponse pairs the job counts with the campaign's lifecycle state
type statsResponse struct {
	CampaignID string              `json:"campaign_id"`
	State      types.CampaignState `json:"state"`
	types.CampaignStats
}

// HandleStats handles GET /campaigns/{id}/stats
func (h *CampaignHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.orchestrator.Stats(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	state, err := h.orchestrator.State(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{CampaignID: id, State: state, CampaignStats: stats})
}
