package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type activationCodeRepository struct {
	db DBTX
}

func NewActivationCodeRepository(db DBTX) repository.ActivationCodeRepository {
	return &activationCodeRepository{db: db}
}

func (r *activationCodeRepository) Create(ctx context.Context, c *domain.ActivationCode) error {
	query := `INSERT INTO activation_codes (code, created_on) VALUES ($1, $2) RETURNING id`
	return r.db.QueryRowContext(ctx, query, c.Code, time.Now()).Scan(&c.ID)
}

func (r *activationCodeRepository) GetUnused(ctx context.Context, code string) (*domain.ActivationCode, error) {
	c := &domain.ActivationCode{}
	var createdOn time.Time
	query := `SELECT id, code, created_on FROM activation_codes WHERE code = $1 AND used_by IS NULL`
	err := r.db.QueryRowContext(ctx, query, code).Scan(&c.ID, &c.Code, &createdOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.CreatedOn = createdOn.Format("2006-01-02")
	return c, nil
}

func (r *activationCodeRepository) MarkUsed(ctx context.Context, id, tenantID int32) error {
	query := `UPDATE activation_codes SET used_by = $1, used_on = $2 WHERE id = $3 AND used_by IS NULL`
	res, err := r.db.ExecContext(ctx, query, tenantID, time.Now(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
