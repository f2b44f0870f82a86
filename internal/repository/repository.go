package repository

import (
	"context"

	"atelier-backend/internal/domain"
)

// Store bundles every repository with transactional execution. The postgres
// implementation backs it in production; services are written against this
// interface so unit tests can substitute fakes.
type Store interface {
	Tenants() TenantRepository
	Admins() PlatformAdminRepository
	ActivationCodes() ActivationCodeRepository
	Audit() AuditRepository
	Items() ItemRepository
	Invoices() InvoiceRepository
	Payments() PaymentRepository
	History() HistoryRepository

	// ExecTx runs fn against a Store bound to one transaction; the unit of
	// work commits only if fn returns nil. Nested calls are not allowed.
	ExecTx(ctx context.Context, fn func(Store) error) error
}

// Platform-schema repositories. These are shared across tenants and only
// reachable through platform-admin paths.

type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id int32) (*domain.Tenant, error)
	GetByCode(ctx context.Context, code string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	UpdateStatus(ctx context.Context, id int32, status domain.TenantStatus) error
	// HardDelete removes the tenant row; tenant-scoped rows go with it via
	// ON DELETE CASCADE. Only the explicit, confirmed admin path calls this.
	HardDelete(ctx context.Context, id int32) error
}

type PlatformAdminRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.PlatformAdmin, error)
	GetByEmail(ctx context.Context, email string) (*domain.PlatformAdmin, error)
}

type ActivationCodeRepository interface {
	Create(ctx context.Context, code *domain.ActivationCode) error
	GetUnused(ctx context.Context, code string) (*domain.ActivationCode, error)
	MarkUsed(ctx context.Context, id, tenantID int32) error
}

type AuditRepository interface {
	Append(ctx context.Context, entry *domain.PlatformAuditEntry) error
	List(ctx context.Context, page, pageSize int32) ([]domain.PlatformAuditEntry, int32, error)
}

// Tenant-scoped repositories. Every method takes the tenant id from a
// resolved handle; no query runs unscoped.

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, tenantID, id int32) (*domain.Item, error)
	List(ctx context.Context, tenantID, page, pageSize int32) ([]domain.Item, int32, error)
	// Lock takes a row lock on the item for the duration of the surrounding
	// transaction. The reservation orchestrator holds it across its
	// re-check-and-commit so two concurrent bookings serialize.
	Lock(ctx context.Context, tenantID, id int32) error
}

type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, tenantID, id int32) (*domain.Invoice, error)
	Update(ctx context.Context, inv *domain.Invoice) error
	List(ctx context.Context, tenantID int32, filter domain.InvoiceFilter) ([]domain.Invoice, int32, error)
	// FindActiveOverlaps returns every invoice of the item in an occupying
	// status whose window overlaps [collectionDate, returnDate), excluding
	// excludeID when non-zero. Half-open: touching endpoints do not overlap.
	FindActiveOverlaps(ctx context.Context, tenantID, itemID int32, collectionDate, returnDate string, excludeID int32) ([]domain.ConflictRef, error)
	// NextInvoiceNumber allocates the next human invoice number for the
	// tenant. Callers invoke it inside the reservation transaction.
	NextInvoiceNumber(ctx context.Context, tenantID int32) (string, error)
	// ListOverdue returns invoices still out with the customer past their
	// return date, across all tenants, for the nightly scan.
	ListOverdue(ctx context.Context, asOfDate string) ([]domain.Invoice, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, entry *domain.PaymentEntry) error
	ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.PaymentEntry, error)
}

type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.StatusHistoryEntry) error
	ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.StatusHistoryEntry, error)
}
