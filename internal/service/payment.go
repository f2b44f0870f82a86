package service

import (
	"context"
	"fmt"

	"atelier-backend/internal/domain"
	"atelier-backend/internal/logger"
	"atelier-backend/internal/repository"
)

type paymentService struct {
	store repository.Store
}

func NewPaymentService(store repository.Store) PaymentService {
	return &paymentService{store: store}
}

// PostPayment appends one ledger entry and rederives the invoice's balance
// and payment status, all in one transaction with the payment-event history
// record. The creation-time deposit is part of the balance formula, so it is
// never re-posted as an explicit entry.
func (s *paymentService) PostPayment(ctx context.Context, tenant *domain.TenantHandle, invoiceID int32, paymentType domain.PaymentType, amountCents int64, method, notes string) (*domain.Balance, error) {
	if tenant == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !paymentType.Valid() {
		return nil, domain.NewValidationError("type", "must be PAYMENT, REFUND or PENALTY")
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount_cents", "must be greater than zero")
	}
	if method == "" {
		return nil, domain.NewValidationError("method", "must not be empty")
	}

	var balance domain.Balance
	err := s.store.ExecTx(ctx, func(tx repository.Store) error {
		inv, err := tx.Invoices().GetByID(ctx, tenant.TenantID, invoiceID)
		if err != nil {
			return err
		}
		if inv.Status.IsTerminal() {
			return domain.ErrInvoiceTerminal
		}

		entry := &domain.PaymentEntry{
			TenantID:    tenant.TenantID,
			InvoiceID:   invoiceID,
			Type:        paymentType,
			AmountCents: amountCents,
			Method:      method,
			Notes:       notes,
		}
		if err := tx.Payments().Create(ctx, entry); err != nil {
			return err
		}

		entries, err := tx.Payments().ListByInvoice(ctx, tenant.TenantID, invoiceID)
		if err != nil {
			return err
		}
		balance = domain.ComputeBalance(inv.TotalCents, inv.DepositCents, entries)

		prevPay := inv.PaymentStatus
		inv.PaymentStatus = balance.PaymentStatus
		if err := tx.Invoices().Update(ctx, inv); err != nil {
			return err
		}

		newPay := balance.PaymentStatus
		return tx.History().Append(ctx, &domain.StatusHistoryEntry{
			TenantID:          tenant.TenantID,
			InvoiceID:         invoiceID,
			FromPaymentStatus: &prevPay,
			ToPaymentStatus:   &newPay,
			ActorID:           tenant.ActorID,
			Notes:             fmt.Sprintf("%s of %d cents via %s", paymentType, amountCents, method),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Payment posted", "tenant_id", tenant.TenantID, "invoice_id", invoiceID,
		"type", paymentType, "amount_cents", amountCents, "remaining_cents", balance.RemainingCents)
	return &balance, nil
}
