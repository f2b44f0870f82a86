package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type tenantRepository struct {
	db DBTX
}

func NewTenantRepository(db DBTX) repository.TenantRepository {
	return &tenantRepository{db: db}
}

func (r *tenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	query := `INSERT INTO tenants (name, code, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, t.Name, t.Code, t.Status, now, now).Scan(&t.ID)
}

func (r *tenantRepository) GetByID(ctx context.Context, id int32) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var createdOn, updatedOn time.Time
	query := `SELECT id, name, code, status, created_on, updated_on FROM tenants WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Name, &t.Code, &t.Status, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedOn = createdOn.Format("2006-01-02")
	t.UpdatedOn = updatedOn.Format("2006-01-02")
	return t, nil
}

func (r *tenantRepository) GetByCode(ctx context.Context, code string) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	var createdOn, updatedOn time.Time
	query := `SELECT id, name, code, status, created_on, updated_on FROM tenants WHERE code = $1`
	err := r.db.QueryRowContext(ctx, query, code).Scan(&t.ID, &t.Name, &t.Code, &t.Status, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	t.CreatedOn = createdOn.Format("2006-01-02")
	t.UpdatedOn = updatedOn.Format("2006-01-02")
	return t, nil
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	query := `SELECT id, name, code, status, created_on, updated_on FROM tenants ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenants []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&t.ID, &t.Name, &t.Code, &t.Status, &createdOn, &updatedOn); err != nil {
			return nil, err
		}
		t.CreatedOn = createdOn.Format("2006-01-02")
		t.UpdatedOn = updatedOn.Format("2006-01-02")
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

func (r *tenantRepository) UpdateStatus(ctx context.Context, id int32, status domain.TenantStatus) error {
	query := `UPDATE tenants SET status = $1, updated_on = $2 WHERE id = $3`
	res, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (r *tenantRepository) HardDelete(ctx context.Context, id int32) error {
	// Tenant-scoped rows cascade with the tenant row.
	res, err := r.db.ExecContext(ctx, `DELETE FROM tenants WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
