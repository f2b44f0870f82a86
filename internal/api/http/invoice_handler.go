package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/service"

	"github.com/gorilla/mux"
)

// InvoiceHandler exposes the invoice lifecycle over HTTP. Lifecycle events
// are dedicated POST endpoints; there is no way to write a status directly.
type InvoiceHandler struct {
	invoices service.InvoiceService
}

func NewInvoiceHandler(invoices service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var draft service.InvoiceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	inv, err := h.invoices.CreateInvoice(r.Context(), tenant, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var draft service.InvoiceDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	inv, err := h.invoices.UpdateInvoice(r.Context(), tenant, invoiceID, draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Deliver(w http.ResponseWriter, r *http.Request) {
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
		Notes string `json:"notes"`
	}
	decodeOptional(r, &body)

	inv, err := h.invoices.Deliver(r.Context(), tenant, invoiceID, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Return(w http.ResponseWriter, r *http.Request) {
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
		Condition domain.ReturnCondition `json:"condition"`
		Notes     string                 `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	result, err := h.invoices.ReturnItem(r.Context(), tenant, invoiceID, body.Condition, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}

func (h *InvoiceHandler) Close(w http.ResponseWriter, r *http.Request) {
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
		Notes string `json:"notes"`
	}
	decodeOptional(r, &body)

	inv, err := h.invoices.Close(r.Context(), tenant, invoiceID, body.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	inv, err := h.invoices.Cancel(r.Context(), tenant, invoiceID, body.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	detail, err := h.invoices.GetInvoice(r.Context(), tenant, invoiceID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, detail)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	filter := domain.InvoiceFilter{
		Status:        domain.InvoiceStatus(q.Get("status")),
		OperationType: domain.OperationType(q.Get("operation_type")),
		CustomerName:  q.Get("customer_name"),
		Page:          queryInt32(q.Get("page"), 1),
		PageSize:      queryInt32(q.Get("page_size"), 20),
	}

	invoices, total, err := h.invoices.ListInvoices(r.Context(), tenant, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"invoices":    invoices,
		"total_count": total,
		"page":        filter.Page,
		"page_size":   filter.PageSize,
	})
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id < 1 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return int32(id), nil
}

func queryInt32(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}

// decodeOptional reads a request body that is allowed to be empty.
func decodeOptional(r *http.Request, dst interface{}) {
	if r.Body == nil {
		return
	}
	_ = json.NewDecoder(r.Body).Decode(dst)
}
