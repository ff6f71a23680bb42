package handlers

import (
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/services"
)

type CronHandler struct {
	dispatch *services.DispatchService
	logger   *slog.Logger
}

func NewCronHandler(dispatch *services.DispatchService, logger *slog.Logger) *CronHandler {
	return &CronHandler{dispatch: dispatch, logger: logger}
}

// SendCasts runs one dispatch batch. Auth happens in middleware; a batch
// selection failure is the only whole-run failure.
func (h *CronHandler) SendCasts(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dispatch.Run(r.Context())
	if err != nil {
		h.logger.Error("dispatch run failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "cron job failed"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
