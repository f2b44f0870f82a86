package service

import (
	"context"
	"fmt"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

// fakeStore is an in-memory repository.Store used by the service tests. Its
// overlap query implements the same half-open rule as the SQL, so the
// availability tests exercise the real comparison semantics.
type fakeStore struct {
	tenants  map[int32]*domain.Tenant
	admins   map[int32]*domain.PlatformAdmin
	codes    map[string]*domain.ActivationCode
	audit    []domain.PlatformAuditEntry
	items    map[int32]*domain.Item
	invoices map[int32]*domain.Invoice
	payments []domain.PaymentEntry
	history  []domain.StatusHistoryEntry

	nextID int32
	seq    map[int32]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tenants:  make(map[int32]*domain.Tenant),
		admins:   make(map[int32]*domain.PlatformAdmin),
		codes:    make(map[string]*domain.ActivationCode),
		items:    make(map[int32]*domain.Item),
		invoices: make(map[int32]*domain.Invoice),
		seq:      make(map[int32]int64),
	}
}

func (f *fakeStore) id() int32 {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) Tenants() repository.TenantRepository                 { return fakeTenants{f} }
func (f *fakeStore) Admins() repository.PlatformAdminRepository           { return fakeAdmins{f} }
func (f *fakeStore) ActivationCodes() repository.ActivationCodeRepository { return fakeCodes{f} }
func (f *fakeStore) Audit() repository.AuditRepository                    { return fakeAudit{f} }
func (f *fakeStore) Items() repository.ItemRepository                     { return fakeItems{f} }
func (f *fakeStore) Invoices() repository.InvoiceRepository               { return fakeInvoices{f} }
func (f *fakeStore) Payments() repository.PaymentRepository               { return fakePayments{f} }
func (f *fakeStore) History() repository.HistoryRepository                { return fakeHistory{f} }

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(f)
}

type fakeTenants struct{ f *fakeStore }

func (r fakeTenants) Create(ctx context.Context, t *domain.Tenant) error {
	t.ID = r.f.id()
	r.f.tenants[t.ID] = t
	return nil
}

func (r fakeTenants) GetByID(ctx context.Context, id int32) (*domain.Tenant, error) {
	t, ok := r.f.tenants[id]
	if !ok {
		return nil, domain.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTenants) GetByCode(ctx context.Context, code string) (*domain.Tenant, error) {
	for _, t := range r.f.tenants {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrTenantNotFound
}

func (r fakeTenants) List(ctx context.Context) ([]domain.Tenant, error) {
	var out []domain.Tenant
	for _, t := range r.f.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (r fakeTenants) UpdateStatus(ctx context.Context, id int32, status domain.TenantStatus) error {
	t, ok := r.f.tenants[id]
	if !ok {
		return domain.ErrTenantNotFound
	}
	t.Status = status
	return nil
}

func (r fakeTenants) HardDelete(ctx context.Context, id int32) error {
	if _, ok := r.f.tenants[id]; !ok {
		return domain.ErrTenantNotFound
	}
	delete(r.f.tenants, id)
	for invID, inv := range r.f.invoices {
		if inv.TenantID == id {
			delete(r.f.invoices, invID)
		}
	}
	for itemID, item := range r.f.items {
		if item.TenantID == id {
			delete(r.f.items, itemID)
		}
	}
	return nil
}

type fakeAdmins struct{ f *fakeStore }

func (r fakeAdmins) GetByID(ctx context.Context, id int32) (*domain.PlatformAdmin, error) {
	a, ok := r.f.admins[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r fakeAdmins) GetByEmail(ctx context.Context, email string) (*domain.PlatformAdmin, error) {
	for _, a := range r.f.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type fakeCodes struct{ f *fakeStore }

func (r fakeCodes) Create(ctx context.Context, c *domain.ActivationCode) error {
	c.ID = r.f.id()
	r.f.codes[c.Code] = c
	return nil
}

func (r fakeCodes) GetUnused(ctx context.Context, code string) (*domain.ActivationCode, error) {
	c, ok := r.f.codes[code]
	if !ok || c.UsedBy != nil {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r fakeCodes) MarkUsed(ctx context.Context, id, tenantID int32) error {
	for _, c := range r.f.codes {
		if c.ID == id {
			if c.UsedBy != nil {
				return domain.ErrNotFound
			}
			c.UsedBy = &tenantID
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeAudit struct{ f *fakeStore }

func (r fakeAudit) Append(ctx context.Context, e *domain.PlatformAuditEntry) error {
	e.ID = r.f.id()
	r.f.audit = append(r.f.audit, *e)
	return nil
}

func (r fakeAudit) List(ctx context.Context, page, pageSize int32) ([]domain.PlatformAuditEntry, int32, error) {
	return r.f.audit, int32(len(r.f.audit)), nil
}

type fakeItems struct{ f *fakeStore }

func (r fakeItems) Create(ctx context.Context, item *domain.Item) error {
	item.ID = r.f.id()
	r.f.items[item.ID] = item
	return nil
}

func (r fakeItems) GetByID(ctx context.Context, tenantID, id int32) (*domain.Item, error) {
	item, ok := r.f.items[id]
	if !ok || item.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r fakeItems) List(ctx context.Context, tenantID, page, pageSize int32) ([]domain.Item, int32, error) {
	var out []domain.Item
	for _, item := range r.f.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, int32(len(out)), nil
}

func (r fakeItems) Lock(ctx context.Context, tenantID, id int32) error {
	if _, ok := r.f.items[id]; !ok {
		return domain.ErrNotFound
	}
	return nil
}

type fakeInvoices struct{ f *fakeStore }

func (r fakeInvoices) Create(ctx context.Context, inv *domain.Invoice) error {
	inv.ID = r.f.id()
	now := time.Now()
	inv.CreatedOn = now
	inv.UpdatedOn = now
	cp := *inv
	r.f.invoices[inv.ID] = &cp
	return nil
}

func (r fakeInvoices) GetByID(ctx context.Context, tenantID, id int32) (*domain.Invoice, error) {
	inv, ok := r.f.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, domain.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r fakeInvoices) Update(ctx context.Context, inv *domain.Invoice) error {
	stored, ok := r.f.invoices[inv.ID]
	if !ok || stored.TenantID != inv.TenantID {
		return domain.ErrNotFound
	}
	cp := *inv
	cp.UpdatedOn = time.Now()
	r.f.invoices[inv.ID] = &cp
	return nil
}

func (r fakeInvoices) List(ctx context.Context, tenantID int32, filter domain.InvoiceFilter) ([]domain.Invoice, int32, error) {
	var out []domain.Invoice
	for _, inv := range r.f.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		if filter.OperationType != "" && inv.OperationType != filter.OperationType {
			continue
		}
		out = append(out, *inv)
	}
	return out, int32(len(out)), nil
}

// FindActiveOverlaps mirrors the SQL half-open comparison: collection < r'
// and return > c'. ISO dates compare correctly as strings.
func (r fakeInvoices) FindActiveOverlaps(ctx context.Context, tenantID, itemID int32, collectionDate, returnDate string, excludeID int32) ([]domain.ConflictRef, error) {
	var out []domain.ConflictRef
	for _, inv := range r.f.invoices {
		if inv.TenantID != tenantID || inv.ItemID != itemID || inv.ID == excludeID {
			continue
		}
		if !inv.Status.Occupies() {
			continue
		}
		if inv.CollectionDate == nil || inv.ReturnDate == nil {
			continue
		}
		if *inv.CollectionDate < returnDate && *inv.ReturnDate > collectionDate {
			out = append(out, domain.ConflictRef{
				InvoiceID:      inv.ID,
				InvoiceNumber:  inv.InvoiceNumber,
				CustomerName:   inv.CustomerName,
				CollectionDate: *inv.CollectionDate,
				ReturnDate:     *inv.ReturnDate,
			})
		}
	}
	return out, nil
}

func (r fakeInvoices) NextInvoiceNumber(ctx context.Context, tenantID int32) (string, error) {
	r.f.seq[tenantID]++
	return fmt.Sprintf("INV-%06d", r.f.seq[tenantID]), nil
}

func (r fakeInvoices) ListOverdue(ctx context.Context, asOfDate string) ([]domain.Invoice, error) {
	var out []domain.Invoice
	for _, inv := range r.f.invoices {
		if inv.Status == domain.InvoiceStatusOutWithCustomer && inv.ReturnDate != nil && *inv.ReturnDate < asOfDate {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type fakePayments struct{ f *fakeStore }

func (r fakePayments) Create(ctx context.Context, e *domain.PaymentEntry) error {
	e.ID = r.f.id()
	e.CreatedOn = time.Now()
	r.f.payments = append(r.f.payments, *e)
	return nil
}

func (r fakePayments) ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.PaymentEntry, error) {
	var out []domain.PaymentEntry
	for _, e := range r.f.payments {
		if e.TenantID == tenantID && e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeHistory struct{ f *fakeStore }

func (r fakeHistory) Append(ctx context.Context, e *domain.StatusHistoryEntry) error {
	e.ID = r.f.id()
	e.CreatedOn = time.Now()
	r.f.history = append(r.f.history, *e)
	return nil
}

func (r fakeHistory) ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.StatusHistoryEntry, error) {
	var out []domain.StatusHistoryEntry
	for _, e := range r.f.history {
		if e.TenantID == tenantID && e.InvoiceID == invoiceID {
			out = append(out, e)
		}
	}
	return out, nil
}
