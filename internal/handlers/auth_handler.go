package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/services"
)

type AuthHandler struct {
	signers  *services.SignerService
	sessions *services.SessionService
	logger   *slog.Logger
}

func NewAuthHandler(signers *services.SignerService, sessions *services.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{signers: signers, sessions: sessions, logger: logger}
}

type createSignerBody struct {
	Fid            int64  `json:"fid"`
	Username       string `json:"username"`
	DisplayName    string `json:"display_name"`
	PfpURL         string `json:"pfp_url"`
	CustodyAddress string `json:"custody_address"`
}

func (h *AuthHandler) CreateSigner(w http.ResponseWriter, r *http.Request) {
	var body createSignerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}

	result, err := h.signers.CreateSigner(r.Context(), services.CreateSignerRequest{
		Fid:            body.Fid,
		Username:       body.Username,
		DisplayName:    body.DisplayName,
		PfpURL:         body.PfpURL,
		CustodyAddress: body.CustodyAddress,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) SignerStatus(w http.ResponseWriter, r *http.Request) {
	signerUUID := r.URL.Query().Get("signer_uuid")

	status, err := h.signers.Status(r.Context(), signerUUID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

type getFidBody struct {
	Address string `json:"address"`
}

func (h *AuthHandler) GetFid(w http.ResponseWriter, r *http.Request) {
	var body getFidBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}

	user, err := h.signers.ResolveFid(r.Context(), body.Address)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

type sessionBody struct {
	SignerUUID string `json:"signer_uuid"`
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body sessionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}

	session, err := h.sessions.IssueForSigner(r.Context(), body.SignerUUID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}
