package domain

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft           InvoiceStatus = "DRAFT"
	InvoiceStatusReserved        InvoiceStatus = "RESERVED"
	InvoiceStatusOutWithCustomer InvoiceStatus = "OUT_WITH_CUSTOMER"
	InvoiceStatusReturned        InvoiceStatus = "RETURNED"
	InvoiceStatusClosed          InvoiceStatus = "CLOSED"
	InvoiceStatusCanceled        InvoiceStatus = "CANCELED"
)

// IsTerminal reports whether no further transitions or payments are allowed.
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusClosed || s == InvoiceStatusCanceled
}

// Occupies reports whether an invoice in this status holds its item's
// reservation window against other bookings.
func (s InvoiceStatus) Occupies() bool {
	return s == InvoiceStatusReserved || s == InvoiceStatusOutWithCustomer
}

type OperationType string

const (
	OperationTypeSale       OperationType = "SALE"
	OperationTypeRent       OperationType = "RENT"
	OperationTypeDesign     OperationType = "DESIGN"
	OperationTypeDesignSale OperationType = "DESIGN_SALE"
	OperationTypeDesignRent OperationType = "DESIGN_RENT"
)

// HasWindow reports whether invoices of this type carry a reservation window.
// Sale variants never do.
func (t OperationType) HasWindow() bool {
	switch t {
	case OperationTypeRent, OperationTypeDesignRent:
		return true
	}
	return false
}

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OperationTypeSale, OperationTypeRent, OperationTypeDesign,
		OperationTypeDesignSale, OperationTypeDesignRent:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
)

type ReturnCondition string

const (
	ReturnConditionExcellent     ReturnCondition = "EXCELLENT"
	ReturnConditionGood          ReturnCondition = "GOOD"
	ReturnConditionNeedsCleaning ReturnCondition = "NEEDS_CLEANING"
	ReturnConditionDamaged       ReturnCondition = "DAMAGED"
	ReturnConditionMissingItems  ReturnCondition = "MISSING_ITEMS"
)

// Valid reports whether c is a known return condition.
func (c ReturnCondition) Valid() bool {
	switch c {
	case ReturnConditionExcellent, ReturnConditionGood, ReturnConditionNeedsCleaning,
		ReturnConditionDamaged, ReturnConditionMissingItems:
		return true
	}
	return false
}

// RecommendsPenalty reports whether a return in this condition should surface
// a penalty recommendation to the operator. It never charges automatically.
func (c ReturnCondition) RecommendsPenalty() bool {
	return c == ReturnConditionDamaged || c == ReturnConditionMissingItems
}

// Invoice is the transaction header for a sale or rental. Status is written
// only through the transition table; payment_status and remaining balance are
// derived from the payment ledger plus the creation-time deposit.
type Invoice struct {
	ID              int32            `json:"id"`
	TenantID        int32            `json:"tenant_id"`
	InvoiceNumber   string           `json:"invoice_number"`
	ItemID          int32            `json:"item_id"`
	CustomerName    string           `json:"customer_name"`
	CustomerPhone   string           `json:"customer_phone"`
	OperationType   OperationType    `json:"operation_type"`
	Status          InvoiceStatus    `json:"status"`
	PaymentStatus   PaymentStatus    `json:"payment_status"`
	TotalCents      int64            `json:"total_cents"`
	DepositCents    int64            `json:"deposit_cents"`
	RemainingCents  int64            `json:"remaining_cents"`
	CollectionDate  *string          `json:"collection_date,omitempty"` // YYYY-MM-DD, nil for sale variants
	ReturnDate      *string          `json:"return_date,omitempty"`     // YYYY-MM-DD, nil for sale variants
	ReturnCondition *ReturnCondition `json:"return_condition,omitempty"`
	Notes           string           `json:"notes"`
	DeliveredAt     *time.Time       `json:"delivered_at,omitempty"`
	ReturnedAt      *time.Time       `json:"returned_at,omitempty"`
	CanceledAt      *time.Time       `json:"canceled_at,omitempty"`
	CancelReason    string           `json:"cancel_reason,omitempty"`
	CreatedOn       time.Time        `json:"created_on"`
	UpdatedOn       time.Time        `json:"updated_on"`
}

// ConflictRef identifies one invoice whose active reservation window overlaps
// a candidate window.
type ConflictRef struct {
	InvoiceID      int32  `json:"invoice_id"`
	InvoiceNumber  string `json:"invoice_number"`
	CustomerName   string `json:"customer_name"`
	CollectionDate string `json:"collection_date"`
	ReturnDate     string `json:"return_date"`
}

// InvoiceFilter narrows ListInvoices results.
type InvoiceFilter struct {
	Status        InvoiceStatus
	OperationType OperationType
	CustomerName  string
	Page          int32
	PageSize      int32
}
