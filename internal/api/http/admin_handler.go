package http

import (
	"encoding/json"
	"net/http"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/service"
)

// AdminHandler exposes the platform-operator surface: login, tenant
// provisioning and lifecycle, impersonation, and the audit trail.
type AdminHandler struct {
	tenants service.TenantService
}

func NewAdminHandler(tenants service.TenantService) *AdminHandler {
	return &AdminHandler{tenants: tenants}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	token, err := h.tenants.AdminLogin(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AdminHandler) Impersonate(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	token, handle, err := h.tenants.ResolveForImpersonation(r.Context(), claims, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"token":  token,
		"tenant": handle,
	})
}

func (h *AdminHandler) ProvisionTenant(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Name           string `json:"name"`
		Code           string `json:"code"`
		ActivationCode string `json:"activation_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	tenant, err := h.tenants.ProvisionTenant(r.Context(), claims, body.Name, body.Code, body.ActivationCode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, tenant)
}

func (h *AdminHandler) SetTenantStatus(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		Status domain.TenantStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.tenants.SetTenantStatus(r.Context(), claims, tenantID, body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"tenant_id": tenantID, "status": body.Status})
}

// SoftDeleteTenant marks a tenant DELETED. The caller must echo the tenant's
// exact name; deleting the wrong tenant by id typo is the failure this guards.
func (h *AdminHandler) SoftDeleteTenant(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ConfirmationName string `json:"confirmation_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.tenants.SoftDeleteTenant(r.Context(), claims, tenantID, body.ConfirmationName); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"tenant_id": tenantID, "status": domain.TenantStatusDeleted})
}

// HardDeleteTenant permanently removes a tenant and all its rows. It requires
// both the echoed name and an explicit drop_data flag in the body.
func (h *AdminHandler) HardDeleteTenant(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	tenantID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body struct {
		ConfirmationName string `json:"confirmation_name"`
		DropData         bool   `json:"drop_data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.NewValidationError("body", "malformed JSON"))
		return
	}

	if err := h.tenants.HardDeleteTenant(r.Context(), claims, tenantID, body.ConfirmationName, body.DropData); err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"tenant_id": tenantID, "deleted": true})
}

func (h *AdminHandler) ListTenants(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	tenants, err := h.tenants.ListTenants(r.Context(), claims)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{"tenants": tenants})
}

func (h *AdminHandler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	claims, err := ClaimsFromContext(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	page := queryInt32(q.Get("page"), 1)
	pageSize := queryInt32(q.Get("page_size"), 50)

	entries, total, err := h.tenants.ListAuditLog(r.Context(), claims, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]interface{}{
		"entries":     entries,
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}
