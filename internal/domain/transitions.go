package domain

type InvoiceEvent string

const (
	EventDeliver InvoiceEvent = "DELIVER"
	EventReturn  InvoiceEvent = "RETURN"
	EventClose   InvoiceEvent = "CLOSE"
	EventCancel  InvoiceEvent = "CANCEL"
)

// transitionRule is one row of the state table: the set of statuses an event
// may fire from, and the status it lands in.
type transitionRule struct {
	from map[InvoiceStatus]bool
	to   InvoiceStatus
}

// transitions is the single authority on legal invoice status changes. Every
// status write in the system goes through NextStatus; callers never compare
// and assign statuses themselves.
var transitions = map[InvoiceEvent]transitionRule{
	EventDeliver: {
		from: map[InvoiceStatus]bool{InvoiceStatusReserved: true},
		to:   InvoiceStatusOutWithCustomer,
	},
	EventReturn: {
		from: map[InvoiceStatus]bool{InvoiceStatusOutWithCustomer: true},
		to:   InvoiceStatusReturned,
	},
	EventClose: {
		from: map[InvoiceStatus]bool{InvoiceStatusReturned: true},
		to:   InvoiceStatusClosed,
	},
	EventCancel: {
		from: map[InvoiceStatus]bool{
			InvoiceStatusDraft:           true,
			InvoiceStatusReserved:        true,
			InvoiceStatusOutWithCustomer: true,
			InvoiceStatusReturned:        true,
		},
		to: InvoiceStatusCanceled,
	},
}

// NextStatus validates event against the current status and returns the
// status it transitions to. On a guard failure the returned error is an
// *IllegalTransitionError and current is unchanged.
func NextStatus(current InvoiceStatus, event InvoiceEvent) (InvoiceStatus, error) {
	rule, ok := transitions[event]
	if !ok || !rule.from[current] {
		return current, &IllegalTransitionError{From: current, Event: event}
	}
	return rule.to, nil
}
