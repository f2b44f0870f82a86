package domain

import "time"

// StatusHistoryEntry is one append-only audit record per transition or
// payment event. For a pure payment event the status pair is nil; for a pure
// transition the payment-status pair may be nil.
type StatusHistoryEntry struct {
	ID                int32          `json:"id"`
	TenantID          int32          `json:"tenant_id"`
	InvoiceID         int32          `json:"invoice_id"`
	FromStatus        *InvoiceStatus `json:"from_status,omitempty"`
	ToStatus          *InvoiceStatus `json:"to_status,omitempty"`
	FromPaymentStatus *PaymentStatus `json:"from_payment_status,omitempty"`
	ToPaymentStatus   *PaymentStatus `json:"to_payment_status,omitempty"`
	ActorID           int32          `json:"actor_id"`
	Notes             string         `json:"notes,omitempty"`
	CreatedOn         time.Time      `json:"created_on"`
}
