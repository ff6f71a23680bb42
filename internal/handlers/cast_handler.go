package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/services"
	"github.com/google/uuid"
)

type CastHandler struct {
	casts  *services.CastService
	logger *slog.Logger
}

func NewCastHandler(casts *services.CastService, logger *slog.Logger) *CastHandler {
	return &CastHandler{casts: casts, logger: logger}
}

type scheduleBody struct {
	Content       string `json:"content"`
	ScheduledTime string `json:"scheduled_time"`
}

type castResponse struct {
	Success bool                  `json:"success"`
	Cast    *models.ScheduledCast `json:"cast"`
}

func (h *CastHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	fid := FidFromContext(r.Context())

	var body scheduleBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}
	if body.Content == "" || body.ScheduledTime == "" {
		writeError(w, h.logger, apperrors.InvalidArg("missing required fields"))
		return
	}

	scheduledTime, err := time.Parse(time.RFC3339, body.ScheduledTime)
	if err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid scheduled_time"))
		return
	}

	cast, err := h.casts.Schedule(r.Context(), fid, body.Content, scheduledTime)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, castResponse{Success: true, Cast: cast})
}

type cancelBody struct {
	CastID string `json:"cast_id"`
}

func (h *CastHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	fid := FidFromContext(r.Context())

	var body cancelBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}

	castID, err := uuid.Parse(body.CastID)
	if err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid cast_id"))
		return
	}

	cast, err := h.casts.Cancel(r.Context(), fid, castID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, castResponse{Success: true, Cast: cast})
}

func (h *CastHandler) List(w http.ResponseWriter, r *http.Request) {
	fid := FidFromContext(r.Context())

	casts, err := h.casts.List(r.Context(), fid)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if casts == nil {
		casts = []*models.ScheduledCast{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"casts": casts})
}
