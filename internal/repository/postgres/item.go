package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type itemRepository struct {
	db DBTX
}

func NewItemRepository(db DBTX) repository.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `INSERT INTO items (tenant_id, code, name, category, for_sale, for_rent, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, item.TenantID, item.Code, item.Name, item.Category,
		item.ForSale, item.ForRent, now, now).Scan(&item.ID)
}

func (r *itemRepository) GetByID(ctx context.Context, tenantID, id int32) (*domain.Item, error) {
	item := &domain.Item{}
	var createdOn, updatedOn time.Time
	query := `SELECT id, tenant_id, code, name, category, for_sale, for_rent, created_on, updated_on
	          FROM items WHERE tenant_id = $1 AND id = $2`
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(&item.ID, &item.TenantID, &item.Code,
		&item.Name, &item.Category, &item.ForSale, &item.ForRent, &createdOn, &updatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	item.CreatedOn = createdOn.Format("2006-01-02")
	item.UpdatedOn = updatedOn.Format("2006-01-02")
	return item, nil
}

func (r *itemRepository) List(ctx context.Context, tenantID, page, pageSize int32) ([]domain.Item, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM items WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, tenant_id, code, name, category, for_sale, for_rent, created_on, updated_on
	          FROM items WHERE tenant_id = $1 ORDER BY code LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, tenantID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		var createdOn, updatedOn time.Time
		if err := rows.Scan(&item.ID, &item.TenantID, &item.Code, &item.Name, &item.Category,
			&item.ForSale, &item.ForRent, &createdOn, &updatedOn); err != nil {
			return nil, 0, err
		}
		item.CreatedOn = createdOn.Format("2006-01-02")
		item.UpdatedOn = updatedOn.Format("2006-01-02")
		items = append(items, item)
	}
	return items, count, rows.Err()
}

// Lock acquires a row lock on the item until the surrounding transaction
// ends. Reservation commits for the same (tenant, item) serialize behind it.
func (r *itemRepository) Lock(ctx context.Context, tenantID, id int32) error {
	var locked int32
	query := `SELECT id FROM items WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	err := r.db.QueryRowContext(ctx, query, tenantID, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}
