package postgres

import (
	"context"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

// Create appends one ledger entry. There is no update or delete path; the
// ledger is append-only by construction.
func (r *paymentRepository) Create(ctx context.Context, e *domain.PaymentEntry) error {
	query := `INSERT INTO payments (tenant_id, invoice_id, type, amount_cents, method, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, e.TenantID, e.InvoiceID, e.Type, e.AmountCents,
		e.Method, e.Notes, now).Scan(&e.ID)
	if err != nil {
		return err
	}
	e.CreatedOn = now
	return nil
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.PaymentEntry, error) {
	query := `SELECT id, tenant_id, invoice_id, type, amount_cents, method, COALESCE(notes, ''), created_on
	          FROM payments WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.PaymentEntry
	for rows.Next() {
		var e domain.PaymentEntry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.InvoiceID, &e.Type, &e.AmountCents,
			&e.Method, &e.Notes, &e.CreatedOn); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
