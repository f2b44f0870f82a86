package http

import (
	"net/http"

	"atelier-backend/internal/security"
	"atelier-backend/internal/service"

	"github.com/gorilla/mux"
)

// Services groups everything the router wires into handlers.
type Services struct {
	Tokens       security.TokenManager
	Tenants      service.TenantService
	Availability service.AvailabilityService
	Invoices     service.InvoiceService
	Payments     service.PaymentService
	Items        service.ItemService
}

// NewRouter builds the full HTTP surface. Tenant routes run behind the
// session middleware; platform routes behind the admin middleware; the admin
// login endpoint is the only unauthenticated route besides the health check.
func NewRouter(svc Services) *mux.Router {
	mw := NewMiddleware(svc.Tokens, svc.Tenants)

	invoiceHandler := NewInvoiceHandler(svc.Invoices)
	paymentHandler := NewPaymentHandler(svc.Payments)
	itemHandler := NewItemHandler(svc.Items)
	availabilityHandler := NewAvailabilityHandler(svc.Availability)
	adminHandler := NewAdminHandler(svc.Tenants)

	router := mux.NewRouter()
	router.Use(mw.Recover)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	// Tenant-scoped store operations.
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(mw.TenantSession)

	api.HandleFunc("/items", itemHandler.Create).Methods("POST")
	api.HandleFunc("/items", itemHandler.List).Methods("GET")
	api.HandleFunc("/items/{id:[0-9]+}", itemHandler.Get).Methods("GET")
	api.HandleFunc("/items/{id:[0-9]+}/availability", availabilityHandler.Check).Methods("GET")

	api.HandleFunc("/invoices", invoiceHandler.Create).Methods("POST")
	api.HandleFunc("/invoices", invoiceHandler.List).Methods("GET")
	api.HandleFunc("/invoices/{id:[0-9]+}", invoiceHandler.Get).Methods("GET")
	api.HandleFunc("/invoices/{id:[0-9]+}", invoiceHandler.Update).Methods("PUT")
	api.HandleFunc("/invoices/{id:[0-9]+}/deliver", invoiceHandler.Deliver).Methods("POST")
	api.HandleFunc("/invoices/{id:[0-9]+}/return", invoiceHandler.Return).Methods("POST")
	api.HandleFunc("/invoices/{id:[0-9]+}/close", invoiceHandler.Close).Methods("POST")
	api.HandleFunc("/invoices/{id:[0-9]+}/cancel", invoiceHandler.Cancel).Methods("POST")
	api.HandleFunc("/invoices/{id:[0-9]+}/payments", paymentHandler.Post).Methods("POST")

	// Platform-operator surface.
	router.HandleFunc("/platform/v1/login", adminHandler.Login).Methods("POST")

	platform := router.PathPrefix("/platform/v1").Subrouter()
	platform.Use(mw.PlatformAdmin)

	platform.HandleFunc("/tenants", adminHandler.ProvisionTenant).Methods("POST")
	platform.HandleFunc("/tenants", adminHandler.ListTenants).Methods("GET")
	platform.HandleFunc("/tenants/{id:[0-9]+}/status", adminHandler.SetTenantStatus).Methods("PUT")
	platform.HandleFunc("/tenants/{id:[0-9]+}", adminHandler.SoftDeleteTenant).Methods("DELETE")
	platform.HandleFunc("/tenants/{id:[0-9]+}/purge", adminHandler.HardDeleteTenant).Methods("POST")
	platform.HandleFunc("/tenants/{id:[0-9]+}/impersonate", adminHandler.Impersonate).Methods("POST")
	platform.HandleFunc("/audit-log", adminHandler.ListAuditLog).Methods("GET")

	return router
}
