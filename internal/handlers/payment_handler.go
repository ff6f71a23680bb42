package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/castqueue/castqueue/internal/apperrors"
	"github.com/castqueue/castqueue/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	logger   *slog.Logger
}

func NewPaymentHandler(payments *services.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, logger: logger}
}

type recordPaymentBody struct {
	Fid     int64  `json:"fid"`
	TxHash  string `json:"txHash"`
	Address string `json:"address"`
}

func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var body recordPaymentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, apperrors.InvalidArg("invalid request body"))
		return
	}

	if err := h.payments.Record(r.Context(), body.Fid, body.TxHash, body.Address); err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "payment verified and user upgraded to unlimited",
	})
}
