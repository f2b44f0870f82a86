package http

import (
	"net/http"

	"atelier-backend/internal/service"
)

type AvailabilityHandler struct {
	availability service.AvailabilityService
}

func NewAvailabilityHandler(availability service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// Check answers whether an item is free for a half-open [collection, return)
// window. The answer is advisory: creation re-verifies under a row lock.
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	itemID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	excludeID := queryInt32(q.Get("exclude_invoice_id"), 0)

	result, err := h.availability.Check(r.Context(), tenant, itemID, q.Get("collection_date"), q.Get("return_date"), excludeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, result)
}
