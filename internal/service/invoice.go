package service

import (
	"context"
	"time"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/logger"
	"atelier-backend/internal/repository"
)

type invoiceService struct {
	store repository.Store
}

func NewInvoiceService(store repository.Store) InvoiceService {
	return &invoiceService{store: store}
}

// CreateInvoice is the reservation orchestrator's entry point. For windowed
// operation types the availability re-check and the insert happen inside one
// transaction while the item row is locked, so two concurrent requests for
// the same item serialize and exactly one of them wins.
//
// Rental invoices with a confirmed window are created directly in RESERVED;
// sale and design invoices without a window start in DRAFT.
func (s *invoiceService) CreateInvoice(ctx context.Context, tenant *domain.TenantHandle, draft InvoiceDraft) (*domain.Invoice, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		TenantID:       tenant.TenantID,
		ItemID:         draft.ItemID,
		CustomerName:   draft.CustomerName,
		CustomerPhone:  draft.CustomerPhone,
		OperationType:  draft.OperationType,
		TotalCents:     draft.TotalCents,
		DepositCents:   draft.DepositCents,
		CollectionDate: draft.CollectionDate,
		ReturnDate:     draft.ReturnDate,
		Notes:          draft.Notes,
	}

	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		item, err := tx.Items().GetByID(ctx, tenant.TenantID, draft.ItemID)
		if err != nil {
			return err
		}
		if err := checkItemEligibility(item, draft.OperationType); err != nil {
			return err
		}

		inv.Status = domain.InvoiceStatusDraft
		if draft.OperationType.HasWindow() {
			if err := tx.Items().Lock(ctx, tenant.TenantID, draft.ItemID); err != nil {
				return err
			}
			result, err := checkAvailability(ctx, tx, tenant, draft.ItemID, *draft.CollectionDate, *draft.ReturnDate, 0)
			if err != nil {
				return err
			}
			if !result.Available {
				return &domain.ConflictError{Conflicts: result.Conflicts}
			}
			inv.Status = domain.InvoiceStatusReserved
		}

		number, err := tx.Invoices().NextInvoiceNumber(ctx, tenant.TenantID)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		balance := domain.ComputeBalance(inv.TotalCents, inv.DepositCents, nil)
		inv.PaymentStatus = balance.PaymentStatus
		inv.RemainingCents = balance.RemainingCents

		if err := tx.Invoices().Create(ctx, inv); err != nil {
			return err
		}

		initial := inv.Status
		return tx.History().Append(ctx, &domain.StatusHistoryEntry{
			TenantID:        tenant.TenantID,
			InvoiceID:       inv.ID,
			ToStatus:        &initial,
			ToPaymentStatus: &inv.PaymentStatus,
			ActorID:         tenant.ActorID,
			Notes:           "invoice created",
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Invoice created", "tenant_id", tenant.TenantID, "invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber, "status", inv.Status)
	return inv, nil
}

// UpdateInvoice edits the header of a non-terminal invoice. A payload
// identical to the stored row is a no-op: nothing is written and no history
// appears. Status never changes here; only transition events move it.
func (s *invoiceService) UpdateInvoice(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, draft InvoiceDraft) (*domain.Invoice, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	var updated *domain.Invoice
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		inv, err := tx.Invoices().GetByID(ctx, tenant.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status.IsTerminal() {
			return domain.ErrInvoiceTerminal
		}
		if draft.OperationType != inv.OperationType {
			return domain.NewValidationError("operation_type", "cannot change after creation")
		}

		entries, err := tx.Payments().ListByInvoice(ctx, tenant.TenantID, inv.ID)
		if err != nil {
			return err
		}

		if draftMatches(inv, draft) {
			balance := domain.ComputeBalance(inv.TotalCents, inv.DepositCents, entries)
			inv.RemainingCents = balance.RemainingCents
			updated = inv
			return nil
		}

		if draft.OperationType.HasWindow() && inv.Status.Occupies() {
			if err := tx.Items().Lock(ctx, tenant.TenantID, draft.ItemID); err != nil {
				return err
			}
			result, err := checkAvailability(ctx, tx, tenant, draft.ItemID, *draft.CollectionDate, *draft.ReturnDate, inv.ID)
			if err != nil {
				return err
			}
			if !result.Available {
				return &domain.ConflictError{Conflicts: result.Conflicts}
			}
		}

		inv.ItemID = draft.ItemID
		inv.CustomerName = draft.CustomerName
		inv.CustomerPhone = draft.CustomerPhone
		inv.TotalCents = draft.TotalCents
		inv.DepositCents = draft.DepositCents
		inv.CollectionDate = draft.CollectionDate
		inv.ReturnDate = draft.ReturnDate
		inv.Notes = draft.Notes

		balance := domain.ComputeBalance(inv.TotalCents, inv.DepositCents, entries)
		inv.PaymentStatus = balance.PaymentStatus
		inv.RemainingCents = balance.RemainingCents

		if err := tx.Invoices().Update(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *invoiceService) Deliver(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, notes string) (*domain.Invoice, error) {
	return s.transition(ctx, tenant, invoiceID, domain.EventDeliver, notes, func(inv *domain.Invoice) error {
		now := time.Now()
		inv.DeliveredAt = &now
		return nil
	})
}

func (s *invoiceService) ReturnItem(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, condition domain.ReturnCondition, notes string) (*ReturnResult, error) {
	if !condition.Valid() {
		return nil, domain.NewValidationError("return_condition", "must be one of EXCELLENT, GOOD, NEEDS_CLEANING, DAMAGED, MISSING_ITEMS")
	}

	inv, err := s.transition(ctx, tenant, invoiceID, domain.EventReturn, notes, func(inv *domain.Invoice) error {
		now := time.Now()
		inv.ReturnedAt = &now
		inv.ReturnCondition = &condition
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ReturnResult{
		Invoice:            inv,
		PenaltyRecommended: condition.RecommendsPenalty(),
	}, nil
}

func (s *invoiceService) Close(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, notes string) (*domain.Invoice, error) {
	return s.transition(ctx, tenant, invoiceID, domain.EventClose, notes, func(inv *domain.Invoice) error {
		return nil
	})
}

// Cancel moves the invoice to CANCELED, which drops it out of the occupying
// status set: the availability checker stops seeing it immediately.
func (s *invoiceService) Cancel(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, reason string) (*domain.Invoice, error) {
	if reason == "" {
		return nil, domain.NewValidationError("reason", "cancellation requires a reason")
	}
	return s.transition(ctx, tenant, invoiceID, domain.EventCancel, reason, func(inv *domain.Invoice) error {
		now := time.Now()
		inv.CanceledAt = &now
		inv.CancelReason = reason
		return nil
	})
}

// transition is the single path that writes invoice status. It validates the
// event against the transition table, applies the event's side effects, and
// persists the row together with its history entry in one transaction.
func (s *invoiceService) transition(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, event domain.InvoiceEvent, notes string, apply func(*domain.Invoice) error) (*domain.Invoice, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}

	var result *domain.Invoice
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		inv, err := tx.Invoices().GetByID(ctx, tenant.TenantID, invoiceID)
		if err != nil {
			return err
		}

		next, err := domain.NextStatus(inv.Status, event)
		if err != nil {
			return err
		}
		prev := inv.Status

		if err := apply(inv); err != nil {
			return err
		}
		inv.Status = next

		if err := tx.Invoices().Update(ctx, inv); err != nil {
			return err
		}
		if err := tx.History().Append(ctx, &domain.StatusHistoryEntry{
			TenantID:   tenant.TenantID,
			InvoiceID:  inv.ID,
			FromStatus: &prev,
			ToStatus:   &next,
			ActorID:    tenant.ActorID,
			Notes:      notes,
		}); err != nil {
			return err
		}

		entries, err := tx.Payments().ListByInvoice(ctx, tenant.TenantID, inv.ID)
		if err != nil {
			return err
		}
		inv.RemainingCents = domain.ComputeBalance(inv.TotalCents, inv.DepositCents, entries).RemainingCents
		result = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Invoice transition applied", "tenant_id", tenant.TenantID,
		"invoice_id", invoiceID, "event", event, "status", result.Status)
	return result, nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32) (*InvoiceDetail, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}

	inv, err := s.store.Invoices().GetByID(ctx, tenant.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	item, err := s.store.Items().GetByID(ctx, tenant.TenantID, inv.ItemID)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Payments().ListByInvoice(ctx, tenant.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	history, err := s.store.History().ListByInvoice(ctx, tenant.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}

	balance := domain.ComputeBalance(inv.TotalCents, inv.DepositCents, payments)
	inv.RemainingCents = balance.RemainingCents

	return &InvoiceDetail{
		Invoice:  inv,
		Item:     item,
		Payments: payments,
		History:  history,
	}, nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, tenant *domain.TenantHandle, filter domain.InvoiceFilter) ([]domain.Invoice, int32, error) {
	if tenant == nil {
		return nil, 0, domain.ErrUnauthenticated
	}
	invoices, total, err := s.store.Invoices().List(ctx, tenant.TenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	// remaining_cents is derived, not stored; rows come back with the ledger
	// balance applied so list and detail views agree.
	for i := range invoices {
		entries, err := s.store.Payments().ListByInvoice(ctx, tenant.TenantID, invoices[i].ID)
		if err != nil {
			return nil, 0, err
		}
		balance := domain.ComputeBalance(invoices[i].TotalCents, invoices[i].DepositCents, entries)
		invoices[i].RemainingCents = balance.RemainingCents
	}
	return invoices, total, nil
}

// validateDraft enforces the structural invariants of an invoice payload:
// windowed operation types carry both dates, sale variants carry none.
func validateDraft(draft InvoiceDraft) error {
	if !draft.OperationType.Valid() {
		return domain.NewValidationError("operation_type", "unknown operation type")
	}
	if draft.ItemID == 0 {
		return domain.NewValidationError("item_id", "must reference an item")
	}
	if draft.CustomerName == "" {
		return domain.NewValidationError("customer_name", "must not be empty")
	}
	if draft.TotalCents < 0 {
		return domain.NewValidationError("total_cents", "must not be negative")
	}
	if draft.DepositCents < 0 {
		return domain.NewValidationError("deposit_cents", "must not be negative")
	}

	if draft.OperationType.HasWindow() {
		if draft.CollectionDate == nil || draft.ReturnDate == nil {
			return domain.NewValidationError("collection_date", "rental operations require a reservation window")
		}
		return validateWindow(*draft.CollectionDate, *draft.ReturnDate)
	}

	if draft.CollectionDate != nil || draft.ReturnDate != nil {
		return domain.NewValidationError("return_date", "sale operations must not carry a reservation window")
	}
	return nil
}

func checkItemEligibility(item *domain.Item, op domain.OperationType) error {
	switch op {
	case domain.OperationTypeRent, domain.OperationTypeDesignRent:
		if !item.ForRent {
			return domain.NewValidationError("item_id", "item is not eligible for rent")
		}
	case domain.OperationTypeSale, domain.OperationTypeDesignSale:
		if !item.ForSale {
			return domain.NewValidationError("item_id", "item is not eligible for sale")
		}
	}
	return nil
}

// draftMatches reports whether the draft is byte-for-byte the stored header,
// making a repeated save a no-op.
func draftMatches(inv *domain.Invoice, draft InvoiceDraft) bool {
	return inv.ItemID == draft.ItemID &&
		inv.CustomerName == draft.CustomerName &&
		inv.CustomerPhone == draft.CustomerPhone &&
		inv.TotalCents == draft.TotalCents &&
		inv.DepositCents == draft.DepositCents &&
		inv.Notes == draft.Notes &&
		datesEqual(inv.CollectionDate, draft.CollectionDate) &&
		datesEqual(inv.ReturnDate, draft.ReturnDate)
}

func datesEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
