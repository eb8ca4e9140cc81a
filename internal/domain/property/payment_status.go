package property

import "github.com/shopspring/decimal"

// PaymentStatus is the payment label of an estate entry or an invoice snapshot
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPending PaymentStatus = "Pending"
	PaymentStatusOverdue PaymentStatus = "Overdue"
)

// MoneyPlaces is the number of decimal places stored for every amount
const MoneyPlaces = 2

// FitsMoneyPlaces reports whether d can be stored without rounding
func FitsMoneyPlaces(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyPlaces))
}

// AllPaymentStatuses returns every status in display order
func AllPaymentStatuses() []PaymentStatus {
	return []PaymentStatus{
		PaymentStatusPaid,
		PaymentStatusPartial,
		PaymentStatusPending,
		PaymentStatusOverdue,
	}
}

// IsValid checks if the status is a known value
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPaid, PaymentStatusPartial, PaymentStatusPending, PaymentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation
func (s PaymentStatus) String() string {
	return string(s)
}

// IsSettled reports whether nothing remains to be paid
func (s PaymentStatus) IsSettled() bool {
	return s == PaymentStatusPaid
}

// CanBecomeOverdue reports whether the overdue sweep may relabel the status
func (s PaymentStatus) CanBecomeOverdue() bool {
	return s == PaymentStatusPending || s == PaymentStatusPartial
}

// DeriveStatus maps amounts to a status. It never returns Overdue: that
// label depends on the due date and is only set by the overdue sweep.
func DeriveStatus(amount, amountPaid decimal.Decimal) PaymentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(amount):
		return PaymentStatusPaid
	case amountPaid.IsPositive():
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// ReconcileStatus is DeriveStatus for an entry that already has a status.
// Nothing paid keeps an Overdue entry Overdue instead of resetting it to
// Pending.
func ReconcileStatus(previous PaymentStatus, amount, amountPaid decimal.Decimal) PaymentStatus {
	derived := DeriveStatus(amount, amountPaid)
	if derived == PaymentStatusPending && previous == PaymentStatusOverdue {
		return previous
	}
	return derived
}
