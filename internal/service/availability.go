package service

import (
	"context"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/repository"
)

type availabilityService struct {
	store repository.Store
}

func NewAvailabilityService(store repository.Store) AvailabilityService {
	return &availabilityService{store: store}
}

func (s *availabilityService) Check(ctx context.Context, tenant *domain.TenantHandle, itemID int32, collectionDate, returnDate string, excludeInvoiceID int32) (*AvailabilityResult, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}
	return checkAvailability(ctx, s.store, tenant, itemID, collectionDate, returnDate, excludeInvoiceID)
}

// checkAvailability is shared between the read-only endpoint and the
// reservation orchestrator, which calls it again on a transaction-bound
// store while holding the item lock.
func checkAvailability(ctx context.Context, store repository.Store, tenant *domain.TenantHandle, itemID int32, collectionDate, returnDate string, excludeInvoiceID int32) (*AvailabilityResult, error) {
	if err := validateWindow(collectionDate, returnDate); err != nil {
		return nil, err
	}

	if _, err := store.Items().GetByID(ctx, tenant.TenantID, itemID); err != nil {
		return nil, err
	}

	conflicts, err := store.Invoices().FindActiveOverlaps(ctx, tenant.TenantID, itemID, collectionDate, returnDate, excludeInvoiceID)
	if err != nil {
		return nil, err
	}

	return &AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}, nil
}

// validateWindow requires two parseable dates with collection strictly before
// return. Windows are half-open, so equal dates are an empty window.
func validateWindow(collectionDate, returnDate string) error {
	c, err := time.Parse("2006-01-02", collectionDate)
	if err != nil {
		return domain.NewValidationError("collection_date", "must be formatted YYYY-MM-DD")
	}
	r, err := time.Parse("2006-01-02", returnDate)
	if err != nil {
		return domain.NewValidationError("return_date", "must be formatted YYYY-MM-DD")
	}
	if !c.Before(r) {
		return domain.ErrInvalidWindow
	}
	return nil
}
