package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/repositories"
	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users  repositories.UserRepository
	logger *slog.Logger
}

func NewUserHandler(users repositories.UserRepository, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	fid, err := strconv.ParseInt(chi.URLParam(r, "fid"), 10, 64)
	if err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid fid"))
		return
	}

	user, err := h.users.GetByFid(r.Context(), fid)
	if errors.Is(err, repositories.ErrNotFound) {
		writeError(w, h.logger, apperrors.NotFound("user not found"))
		return
	}
	if err != nil {
		writeError(w, h.logger, apperrors.Wrap(apperrors.CodeInternal, "failed to get user", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}
