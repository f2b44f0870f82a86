package http

import (
	"encoding/json"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/service"
)

type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Post appends one ledger entry to an invoice and returns the rederived
// balance. Entries are append-only; corrections are posted as REFUND entries.
func (h *PaymentHandler) Post(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	invoiceID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Type        domain.PaymentType `json:"type"`
		AmountCents int64              `json:"amount_cents"`
		Method      string             `json:"method"`
		Notes       string             `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	balance, err := h.payments.PostPayment(r.Context(), tenant, invoiceID, body.Type, body.AmountCents, body.Method, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, balance)
}
