package http

import (
	"encoding/json"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/service"
)

type ItemHandler struct {
	items service.ItemService
}

func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.items.AddItem(r.Context(), tenant, &item); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, item)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	item, err := h.items.GetItem(r.Context(), tenant, itemID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, item)
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	tenant, err := TenantFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 20)

	items, total, err := h.items.ListItems(r.Context(), tenant, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"items":       items,
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}
