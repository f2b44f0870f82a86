package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type platformAdminRepository struct {
	db DBTX
}

func NewPlatformAdminRepository(db DBTX) repository.PlatformAdminRepository {
	return &platformAdminRepository{db: db}
}

func (r *platformAdminRepository) GetByID(ctx context.Context, id int32) (*domain.PlatformAdmin, error) {
	a := &domain.PlatformAdmin{}
	var createdOn time.Time
	query := `SELECT id, email, name, password_hash, created_on FROM platform_admins WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedOn = createdOn.Format("2006-01-02")
	return a, nil
}

func (r *platformAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.PlatformAdmin, error) {
	a := &domain.PlatformAdmin{}
	var createdOn time.Time
	query := `SELECT id, email, name, password_hash, created_on FROM platform_admins WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.CreatedOn = createdOn.Format("2006-01-02")
	return a, nil
}
