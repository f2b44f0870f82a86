package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the expected failure modes of the core. Handlers map
// these to envelope responses; anything else is treated as internal.
var (
	ErrUnauthenticated = errors.New("no authenticated tenant context")
	ErrForbidden       = errors.New("caller lacks the required role")
	ErrTenantNotFound  = errors.New("tenant not found")
	ErrTenantSuspended = errors.New("tenant is suspended or deleted")
	ErrNotFound        = errors.New("record not found")
	ErrInvoiceTerminal = errors.New("invoice is closed or canceled")
	ErrInvalidWindow   = errors.New("collection date must be before return date")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError is returned when a requested reservation window overlaps an
// active reservation of the same item. It carries every conflicting invoice
// so callers can render a human-readable reason.
type ConflictError struct {
	Conflicts []ConflictRef
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("item already reserved by %d invoice(s)", len(e.Conflicts))
}

// IllegalTransitionError is returned when an invoice event is requested from
// a state that does not allow it. The invoice is left unchanged.
type IllegalTransitionError struct {
	From  InvoiceStatus
	Event InvoiceEvent
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("event %s is not allowed from status %s", e.Event, e.From)
}
