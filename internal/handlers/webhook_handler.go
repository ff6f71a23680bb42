package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/models"
	"github.com/castqueue/castqueue/internal/repositories"
)

// WebhookHandler ingests miniapp host events and keeps the per-user
// notification token current. Sending notifications is someone else's job;
// this only maintains the store.
type WebhookHandler struct {
	notifications repositories.NotificationStore
	logger        *slog.Logger
}

func NewWebhookHandler(notifications repositories.NotificationStore, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{notifications: notifications, logger: logger}
}

type webhookEvent struct {
	Event               string                      `json:"event"`
	Fid                 int64                       `json:"fid"`
	NotificationDetails *models.NotificationDetails `json:"notificationDetails"`
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}
	if event.Fid == 0 {
		writeError(w, h.logger, apperrors.InvalidArg("fid is required"))
		return
	}

	var err error
	switch event.Event {
	case "miniapp_added", "notifications_enabled":
		if event.NotificationDetails == nil {
			writeError(w, h.logger, apperrors.InvalidArg("notificationDetails is required"))
			return
		}
		err = h.notifications.Set(r.Context(), event.Fid, event.NotificationDetails)
	case "miniapp_removed", "notifications_disabled":
		err = h.notifications.Delete(r.Context(), event.Fid)
	default:
		writeError(w, h.logger, apperrors.InvalidArg("unknown event"))
		return
	}

	if err != nil {
		writeError(w, h.logger, apperrors.Wrap(apperrors.CodeInternal, "failed to update notification details", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
