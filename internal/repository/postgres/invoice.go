package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type invoiceRepository struct {
	db DBTX
}

func NewInvoiceRepository(db DBTX) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, tenant_id, invoice_number, item_id, customer_name, customer_phone,
	operation_type, status, payment_status, total_cents, deposit_cents,
	collection_date, return_date, return_condition, COALESCE(notes, ''),
	delivered_at, returned_at, canceled_at, COALESCE(cancel_reason, ''), created_on, updated_on`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInvoice(row rowScanner) (*domain.Invoice, error) {
	inv := &domain.Invoice{}
	var collectionDate, returnDate sql.NullTime
	var returnCondition sql.NullString
	var deliveredAt, returnedAt, canceledAt sql.NullTime

	err := row.Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.ItemID, &inv.CustomerName,
		&inv.CustomerPhone, &inv.OperationType, &inv.Status, &inv.PaymentStatus,
		&inv.TotalCents, &inv.DepositCents, &collectionDate, &returnDate, &returnCondition,
		&inv.Notes, &deliveredAt, &returnedAt, &canceledAt, &inv.CancelReason,
		&inv.CreatedOn, &inv.UpdatedOn)
	if err != nil {
		return nil, err
	}

	if collectionDate.Valid {
		d := collectionDate.Time.Format("2006-01-02")
		inv.CollectionDate = &d
	}
	if returnDate.Valid {
		d := returnDate.Time.Format("2006-01-02")
		inv.ReturnDate = &d
	}
	if returnCondition.Valid {
		c := domain.ReturnCondition(returnCondition.String)
		inv.ReturnCondition = &c
	}
	if deliveredAt.Valid {
		inv.DeliveredAt = &deliveredAt.Time
	}
	if returnedAt.Valid {
		inv.ReturnedAt = &returnedAt.Time
	}
	if canceledAt.Valid {
		inv.CanceledAt = &canceledAt.Time
	}
	return inv, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	query := `INSERT INTO invoices (tenant_id, invoice_number, item_id, customer_name, customer_phone,
	          operation_type, status, payment_status, total_cents, deposit_cents,
	          collection_date, return_date, notes, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query, inv.TenantID, inv.InvoiceNumber, inv.ItemID,
		inv.CustomerName, inv.CustomerPhone, inv.OperationType, inv.Status, inv.PaymentStatus,
		inv.TotalCents, inv.DepositCents, inv.CollectionDate, inv.ReturnDate, inv.Notes,
		now, now).Scan(&inv.ID)
	if err != nil {
		return err
	}
	inv.CreatedOn = now
	inv.UpdatedOn = now
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, tenantID, id int32) (*domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1 AND id = $2`
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, tenantID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domain.Invoice) error {
	query := `UPDATE invoices SET item_id=$1, customer_name=$2, customer_phone=$3, operation_type=$4,
	          status=$5, payment_status=$6, total_cents=$7, deposit_cents=$8,
	          collection_date=$9, return_date=$10, return_condition=$11, notes=$12,
	          delivered_at=$13, returned_at=$14, canceled_at=$15, cancel_reason=$16, updated_on=$17
	          WHERE tenant_id=$18 AND id=$19`
	var cond interface{}
	if inv.ReturnCondition != nil {
		cond = string(*inv.ReturnCondition)
	}
	res, err := r.db.ExecContext(ctx, query, inv.ItemID, inv.CustomerName, inv.CustomerPhone,
		inv.OperationType, inv.Status, inv.PaymentStatus, inv.TotalCents, inv.DepositCents,
		inv.CollectionDate, inv.ReturnDate, cond, inv.Notes,
		inv.DeliveredAt, inv.ReturnedAt, inv.CanceledAt, inv.CancelReason, time.Now(),
		inv.TenantID, inv.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) List(ctx context.Context, tenantID int32, filter domain.InvoiceFilter) ([]domain.Invoice, int32, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.OperationType != "" {
		args = append(args, filter.OperationType)
		query += fmt.Sprintf(" AND operation_type = $%d", len(args))
	}
	if filter.CustomerName != "" {
		args = append(args, "%"+filter.CustomerName+"%")
		query += fmt.Sprintf(" AND customer_name ILIKE $%d", len(args))
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	args = append(args, pageSize, (page-1)*pageSize)
	query += fmt.Sprintf(" ORDER BY created_on DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, count, rows.Err()
}

// FindActiveOverlaps applies the half-open overlap rule c < r' AND r > c'
// against invoices currently occupying the item.
func (r *invoiceRepository) FindActiveOverlaps(ctx context.Context, tenantID, itemID int32, collectionDate, returnDate string, excludeID int32) ([]domain.ConflictRef, error) {
	query := `SELECT id, invoice_number, customer_name, collection_date, return_date
	          FROM invoices
	          WHERE tenant_id = $1 AND item_id = $2
	            AND status IN ('RESERVED', 'OUT_WITH_CUSTOMER')
	            AND id <> $3
	            AND collection_date < $4 AND return_date > $5
	          ORDER BY collection_date`
	rows, err := r.db.QueryContext(ctx, query, tenantID, itemID, excludeID, returnDate, collectionDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conflicts []domain.ConflictRef
	for rows.Next() {
		var c domain.ConflictRef
		var cd, rd time.Time
		if err := rows.Scan(&c.InvoiceID, &c.InvoiceNumber, &c.CustomerName, &cd, &rd); err != nil {
			return nil, err
		}
		c.CollectionDate = cd.Format("2006-01-02")
		c.ReturnDate = rd.Format("2006-01-02")
		conflicts = append(conflicts, c)
	}
	return conflicts, rows.Err()
}

// NextInvoiceNumber bumps the tenant's counter row atomically and formats the
// human invoice number. Called inside the reservation transaction.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID int32) (string, error) {
	var seq int64
	query := `INSERT INTO invoice_counters (tenant_id, next_seq) VALUES ($1, 1)
	          ON CONFLICT (tenant_id) DO UPDATE SET next_seq = invoice_counters.next_seq + 1
	          RETURNING next_seq`
	if err := r.db.QueryRowContext(ctx, query, tenantID).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%06d", seq), nil
}

func (r *invoiceRepository) ListOverdue(ctx context.Context, asOfDate string) ([]domain.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices
	          WHERE status = 'OUT_WITH_CUSTOMER' AND return_date < $1
	          ORDER BY tenant_id, return_date`
	rows, err := r.db.QueryContext(ctx, query, asOfDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}
