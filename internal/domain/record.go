// Package domain defines the domain models for the payment reconciliation core.
package domain

import (
	"time"
)

// PaymentState represents the reconciliation state of a payment record.
// The numeric values match the processor's wire representation and the
// values persisted in the state column, so they must not be reordered.
type PaymentState int

const (
	StatePending   PaymentState = 0
	StatePaid      PaymentState = 1
	StateCancelled PaymentState = 2
	StateInvalid   PaymentState = -1
)

func (s PaymentState) String() string {
	switch s {
	case StatePending:
		return "PENDING"
	case StatePaid:
		return "PAID"
	case StateCancelled:
		return "CANCELLED"
	case StateInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is permitted from s.
// PENDING is the only non-terminal state.
func (s PaymentState) Terminal() bool {
	return s != StatePending
}

// Method identifies the payment method a record was created through.
// It determines which store table and which processor request shape apply.
type Method string

const (
	MethodMultibanco Method = "MULTIBANCO"
	MethodCreditCard Method = "CC"
	MethodMBWay      Method = "MBWAY"
)

// PaymentRecord is the durable mapping from a processor transaction to an
// order's payment lifecycle. One record exists per (order, method) attempt
// and is never deleted once created; it doubles as the audit trail.
type PaymentRecord struct {
	OrderID       string
	TransactionID int64
	Method        Method
	AmountCents   int64
	State         PaymentState

	// NoteID is a weak back-reference to the customer-visible order note.
	// It is superseded (deleted and replaced) on every transition that
	// produces a new note.
	NoteID *int64

	// Multibanco reference fields.
	Reference string
	ATMEntity string
	ExpiresAt *time.Time

	// Card / MB WAY redirect fields.
	Token       string
	RedirectURL string

	CreatedAt time.Time
	PaidAt    *time.Time
}

// PendingCheck is the slim projection used by the polling reconciler when
// gathering outstanding transactions.
type PendingCheck struct {
	TransactionID int64
	OrderID       string
	Method        Method
}
