package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error           string `json:"error"`
	RequiresUpgrade bool   `json:"requiresUpgrade,omitempty"`
}

// writeError maps application error codes to HTTP statuses. Internal detail
// stays in the log; the client sees the coded message only.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.CodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	case apperrors.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case apperrors.CodePermissionDenied:
		status = http.StatusForbidden
	case apperrors.CodeFailedPrecondition:
		status = http.StatusConflict
	case apperrors.CodeUnavailable:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "code", code, "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}

	resp := errorResponse{Error: err.Error()}
	if errors.Is(err, services.ErrUpgradeRequired) {
		resp.RequiresUpgrade = true
	}
	writeJSON(w, status, resp)
}
