package domain

import "time"

type PaymentType string

const (
	PaymentTypePayment PaymentType = "PAYMENT"
	PaymentTypeRefund  PaymentType = "REFUND"
	PaymentTypePenalty PaymentType = "PENALTY"
)

// Valid reports whether t is a known payment entry type.
func (t PaymentType) Valid() bool {
	switch t {
	case PaymentTypePayment, PaymentTypeRefund, PaymentTypePenalty:
		return true
	}
	return false
}

// PaymentEntry is one append-only money movement against an invoice. Entries
// are never edited or deleted after creation.
type PaymentEntry struct {
	ID          int32       `json:"id"`
	TenantID    int32       `json:"tenant_id"`
	InvoiceID   int32       `json:"invoice_id"`
	Type        PaymentType `json:"type"`
	AmountCents int64       `json:"amount_cents"` // always > 0; the type carries the sign
	Method      string      `json:"method"`
	Notes       string      `json:"notes,omitempty"`
	CreatedOn   time.Time   `json:"created_on"`
}

// Balance is the derived paid/owed position of an invoice after a posting.
type Balance struct {
	RemainingCents int64         `json:"remaining_cents"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	// PenaltyRecommended is set on return events for damaged or incomplete
	// items; the operator decides whether to post the penalty.
	PenaltyRecommended bool `json:"penalty_recommended,omitempty"`
}

// ComputeBalance derives the remaining balance and payment status from the
// invoice totals and its ledger entries. The creation-time deposit counts as
// an implicit first payment and is never duplicated by an explicit entry.
// Penalties increase what is owed; refunds hand money back.
func ComputeBalance(totalCents, depositCents int64, entries []PaymentEntry) Balance {
	var paid, refunded, penalties int64
	for _, e := range entries {
		switch e.Type {
		case PaymentTypePayment:
			paid += e.AmountCents
		case PaymentTypeRefund:
			refunded += e.AmountCents
		case PaymentTypePenalty:
			penalties += e.AmountCents
		}
	}

	remaining := totalCents + penalties - depositCents - paid + refunded
	received := depositCents + paid - refunded

	status := PaymentStatusPartial
	switch {
	case remaining <= 0:
		status = PaymentStatusPaid
	case received <= 0:
		status = PaymentStatusUnpaid
	}

	return Balance{RemainingCents: remaining, PaymentStatus: status}
}
