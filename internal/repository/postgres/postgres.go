package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"atelier-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is the querier shared by *sql.DB and *sql.Tx. Repositories are built
// on it so the same code runs standalone or inside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.TenantRepository
	repository.PlatformAdminRepository
	repository.ActivationCodeRepository
	repository.AuditRepository
	repository.ItemRepository
	repository.InvoiceRepository
	repository.PaymentRepository
	repository.HistoryRepository
}

func NewStore(db *sql.DB) *Store {
	s := newStore(db)
	s.db = db
	return s
}

func newStore(q DBTX) *Store {
	return &Store{
		TenantRepository:         NewTenantRepository(q),
		PlatformAdminRepository:  NewPlatformAdminRepository(q),
		ActivationCodeRepository: NewActivationCodeRepository(q),
		AuditRepository:          NewAuditRepository(q),
		ItemRepository:           NewItemRepository(q),
		InvoiceRepository:        NewInvoiceRepository(q),
		PaymentRepository:        NewPaymentRepository(q),
		HistoryRepository:        NewHistoryRepository(q),
	}
}

// ExecTx runs fn with a Store bound to a single transaction. A rollback is
// issued on any error or panic; commit only when fn returns nil. Stores
// produced inside fn must not call ExecTx again.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.db == nil {
		return fmt.Errorf("ExecTx called on a transaction-bound store")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(newStore(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rollback err: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}

func (s *Store) Tenants() repository.TenantRepository       { return s.TenantRepository }
func (s *Store) Admins() repository.PlatformAdminRepository { return s.PlatformAdminRepository }
func (s *Store) ActivationCodes() repository.ActivationCodeRepository {
	return s.ActivationCodeRepository
}
func (s *Store) Audit() repository.AuditRepository       { return s.AuditRepository }
func (s *Store) Items() repository.ItemRepository        { return s.ItemRepository }
func (s *Store) Invoices() repository.InvoiceRepository  { return s.InvoiceRepository }
func (s *Store) Payments() repository.PaymentRepository  { return s.PaymentRepository }
func (s *Store) History() repository.HistoryRepository   { return s.HistoryRepository }
