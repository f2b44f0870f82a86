package postgres

import (
	"context"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type auditRepository struct {
	db DBTX
}

func NewAuditRepository(db DBTX) repository.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e *domain.PlatformAuditEntry) error {
	query := `INSERT INTO platform_audit_log (actor_id, action, tenant_id, details, created_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, e.ActorID, e.Action, e.TenantID, e.Details, time.Now()).Scan(&e.ID)
}

func (r *auditRepository) List(ctx context.Context, page, pageSize int32) ([]domain.PlatformAuditEntry, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM platform_audit_log`).Scan(&count); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := `SELECT id, actor_id, action, tenant_id, COALESCE(details, ''), created_on
	          FROM platform_audit_log ORDER BY created_on DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var entries []domain.PlatformAuditEntry
	for rows.Next() {
		var e domain.PlatformAuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Action, &e.TenantID, &e.Details, &e.CreatedOn); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, count, rows.Err()
}
