package postgres

import (
	"context"
	"database/sql"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type historyRepository struct {
	db DBTX
}

func NewHistoryRepository(db DBTX) repository.HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, e *domain.StatusHistoryEntry) error {
	query := `INSERT INTO status_history (tenant_id, invoice_id, from_status, to_status,
	          from_payment_status, to_payment_status, actor_id, notes, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, e.TenantID, e.InvoiceID,
		statusOrNil(e.FromStatus), statusOrNil(e.ToStatus),
		payStatusOrNil(e.FromPaymentStatus), payStatusOrNil(e.ToPaymentStatus),
		e.ActorID, e.Notes, now).Scan(&e.ID)
	if err != nil {
		return err
	}
	e.CreatedOn = now
	return nil
}

func (r *historyRepository) ListByInvoice(ctx context.Context, tenantID, invoiceID int32) ([]domain.StatusHistoryEntry, error) {
	query := `SELECT id, tenant_id, invoice_id, from_status, to_status,
	          from_payment_status, to_payment_status, actor_id, COALESCE(notes, ''), created_on
	          FROM status_history WHERE tenant_id = $1 AND invoice_id = $2 ORDER BY created_on, id`
	rows, err := r.db.QueryContext(ctx, query, tenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var e domain.StatusHistoryEntry
		var fromStatus, toStatus, fromPay, toPay sql.NullString
		if err := rows.Scan(&e.ID, &e.TenantID, &e.InvoiceID, &fromStatus, &toStatus,
			&fromPay, &toPay, &e.ActorID, &e.Notes, &e.CreatedOn); err != nil {
			return nil, err
		}
		if fromStatus.Valid {
			s := domain.InvoiceStatus(fromStatus.String)
			e.FromStatus = &s
		}
		if toStatus.Valid {
			s := domain.InvoiceStatus(toStatus.String)
			e.ToStatus = &s
		}
		if fromPay.Valid {
			p := domain.PaymentStatus(fromPay.String)
			e.FromPaymentStatus = &p
		}
		if toPay.Valid {
			p := domain.PaymentStatus(toPay.String)
			e.ToPaymentStatus = &p
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func statusOrNil(s *domain.InvoiceStatus) interface{} {
	if s == nil {
		return nil
	}
	return string(*s)
}

func payStatusOrNil(p *domain.PaymentStatus) interface{} {
	if p == nil {
		return nil
	}
	return string(*p)
}
