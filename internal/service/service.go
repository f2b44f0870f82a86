package service

import (
	"context"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/security"
)

// InvoiceDraft is the caller-supplied body for creating or updating an
// invoice. Status is never part of it; only the state machine writes status.
type InvoiceDraft struct {
	ItemID         int32                `json:"item_id"`
	CustomerName   string               `json:"customer_name"`
	CustomerPhone  string               `json:"customer_phone"`
	OperationType  domain.OperationType `json:"operation_type"`
	TotalCents     int64                `json:"total_cents"`
	DepositCents   int64                `json:"deposit_cents"`
	CollectionDate *string              `json:"collection_date,omitempty"`
	ReturnDate     *string              `json:"return_date,omitempty"`
	Notes          string               `json:"notes"`
}

// AvailabilityResult enumerates every conflicting reservation so the caller
// can render a human-readable reason.
type AvailabilityResult struct {
	Available bool                 `json:"available"`
	Conflicts []domain.ConflictRef `json:"conflicts"`
}

// InvoiceDetail is the full read model for one invoice.
type InvoiceDetail struct {
	Invoice  *domain.Invoice             `json:"invoice"`
	Item     *domain.Item                `json:"item"`
	Payments []domain.PaymentEntry       `json:"payments"`
	History  []domain.StatusHistoryEntry `json:"status_history"`
}

// ReturnResult reports a completed return; PenaltyRecommended asks the
// operator to consider a penalty posting, it never charges automatically.
type ReturnResult struct {
	Invoice            *domain.Invoice `json:"invoice"`
	PenaltyRecommended bool            `json:"penalty_recommended"`
}

type TenantService interface {
	// Resolve maps validated session claims to an isolated tenant handle.
	// A missing tenant context is always an error, never a default store.
	Resolve(ctx context.Context, claims *security.SessionClaims) (*domain.TenantHandle, error)

	// AdminLogin authenticates a platform operator and returns a signed
	// admin session token.
	AdminLogin(ctx context.Context, email, password string) (string, error)

	// ResolveForImpersonation lets a platform admin obtain a session grant
	// for a target tenant, recording who impersonated which tenant and when.
	ResolveForImpersonation(ctx context.Context, claims *security.SessionClaims, tenantID int32) (string, *domain.TenantHandle, error)

	ProvisionTenant(ctx context.Context, claims *security.SessionClaims, name, code, activationCode string) (*domain.Tenant, error)
	SetTenantStatus(ctx context.Context, claims *security.SessionClaims, tenantID int32, status domain.TenantStatus) error
	SoftDeleteTenant(ctx context.Context, claims *security.SessionClaims, tenantID int32, confirmationName string) error
	HardDeleteTenant(ctx context.Context, claims *security.SessionClaims, tenantID int32, confirmationName string, explicitDrop bool) error
	ListTenants(ctx context.Context, claims *security.SessionClaims) ([]domain.Tenant, error)
	ListAuditLog(ctx context.Context, claims *security.SessionClaims, page, pageSize int32) ([]domain.PlatformAuditEntry, int32, error)
}

type AvailabilityService interface {
	// Check reports whether the window conflicts with any active reservation
	// of the item. Read-only; the orchestrator re-verifies at commit time.
	Check(ctx context.Context, tenant *domain.TenantHandle, itemID int32, collectionDate, returnDate string, excludeInvoiceID int32) (*AvailabilityResult, error)
}

type InvoiceService interface {
	CreateInvoice(ctx context.Context, tenant *domain.TenantHandle, draft InvoiceDraft) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, draft InvoiceDraft) (*domain.Invoice, error)
	Deliver(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, notes string) (*domain.Invoice, error)
	ReturnItem(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, condition domain.ReturnCondition, notes string) (*ReturnResult, error)
	Close(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, notes string) (*domain.Invoice, error)
	Cancel(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, reason string) (*domain.Invoice, error)
	GetInvoice(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32) (*InvoiceDetail, error)
	ListInvoices(ctx context.Context, tenant *domain.TenantHandle, filter domain.InvoiceFilter) ([]domain.Invoice, int32, error)
}

type PaymentService interface {
	PostPayment(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, paymentType domain.PaymentType, amountCents int64, method, notes string) (*domain.Balance, error)
}

type ItemService interface {
	AddItem(ctx context.Context, tenant *domain.TenantHandle, item *domain.Item) error
	GetItem(ctx context.Context, tenant *domain.TenantHandle, itemID int32) (*domain.Item, error)
	ListItems(ctx context.Context, tenant *domain.TenantHandle, page, pageSize int32) ([]domain.Item, int32, error)
}
