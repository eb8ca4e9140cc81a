package property

import (
	"strings"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PlotSeparator joins plot numbers for display and invoice lines
const PlotSeparator = ", "

// EstateEntry is a plot-ownership record inside an estate.
// Invariant: 0 <= AmountPaid <= Amount.
type EstateEntry struct {
	shared.BaseAggregateRoot
	EstateID      uuid.UUID
	ClientID      *uuid.UUID
	ClientName    string
	Amount        decimal.Decimal
	AmountPaid    decimal.Decimal
	PaymentStatus PaymentStatus
	PlotNumbers   []string
	NextDueDate   *time.Time
	Notes         string
}

// EntryDetails carries the editable fields of an estate entry.
// An empty Status means "derive it from the amounts".
type EntryDetails struct {
	ClientID    *uuid.UUID
	ClientName  string
	Amount      decimal.Decimal
	AmountPaid  decimal.Decimal
	Status      PaymentStatus
	PlotNumbers []string
	NextDueDate *time.Time
	Notes       string
}

// PaymentApplication describes the effect of one payment on an entry
type PaymentApplication struct {
	Requested      decimal.Decimal
	Applied        decimal.Decimal
	PreviousPaid   decimal.Decimal
	NewPaid        decimal.Decimal
	PreviousStatus PaymentStatus
	NewStatus      PaymentStatus
}

// Excess is the part of the requested payment that was discarded
func (p PaymentApplication) Excess() decimal.Decimal {
	return p.Requested.Sub(p.Applied)
}

// WasClamped reports whether the request exceeded the outstanding balance
func (p PaymentApplication) WasClamped() bool {
	return p.Excess().IsPositive()
}

// NewEstateEntry creates a new entry owned by the given estate
func NewEstateEntry(estateID uuid.UUID, details EntryDetails) (*EstateEntry, error) {
	if estateID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ESTATE", "Estate ID cannot be empty")
	}
	e := &EstateEntry{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EstateID:          estateID,
	}
	if err := e.apply(details); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the editable fields, re-deriving the status.
// An Overdue entry keeps its label unless the edit settles it.
func (e *EstateEntry) Update(details EntryDetails) error {
	if details.Status == "" {
		details.Status = e.PaymentStatus
	}
	if err := e.apply(details); err != nil {
		return err
	}
	e.Touch()
	return nil
}

func (e *EstateEntry) apply(d EntryDetails) error {
	if d.Amount.IsNegative() {
		return shared.NewDomainError(CodeInvalidAmount, "Amount cannot be negative")
	}
	if d.AmountPaid.IsNegative() {
		return shared.NewDomainError(CodeInvalidAmount, "Amount paid cannot be negative")
	}
	if !FitsMoneyPlaces(d.Amount) || !FitsMoneyPlaces(d.AmountPaid) {
		return ErrAmountPrecision
	}
	if d.AmountPaid.GreaterThan(d.Amount) {
		return shared.NewDomainError(CodeInvalidAmount, "Amount paid cannot exceed the amount owed")
	}
	if d.Status != "" && !d.Status.IsValid() {
		return shared.NewDomainError(CodeInvalidStatus, "Invalid payment status: "+string(d.Status))
	}
	if d.ClientID != nil && *d.ClientID == uuid.Nil {
		d.ClientID = nil
	}

	e.ClientID = d.ClientID
	e.ClientName = strings.TrimSpace(d.ClientName)
	e.Amount = d.Amount
	e.AmountPaid = d.AmountPaid
	e.PaymentStatus = resolveStatus(d.Status, d.Amount, d.AmountPaid)
	e.PlotNumbers = NormalizePlotNumbers(d.PlotNumbers)
	e.NextDueDate = d.NextDueDate
	e.Notes = d.Notes
	return nil
}

// resolveStatus honours an explicit Overdue label while something is still
// owed; every other status comes from the amounts.
func resolveStatus(requested PaymentStatus, amount, paid decimal.Decimal) PaymentStatus {
	derived := DeriveStatus(amount, paid)
	if requested == PaymentStatusOverdue && derived != PaymentStatusPaid {
		return PaymentStatusOverdue
	}
	return derived
}

// Outstanding returns the unpaid remainder
func (e *EstateEntry) Outstanding() decimal.Decimal {
	return e.Amount.Sub(e.AmountPaid)
}

// HasClient reports whether the entry is linked to a client record
func (e *EstateEntry) HasClient() bool {
	return e.ClientID != nil
}

// PlotDetails joins the plot numbers for display
func (e *EstateEntry) PlotDetails() string {
	return strings.Join(e.PlotNumbers, PlotSeparator)
}

// ApplyPayment applies a payment, clamping it to the outstanding balance.
// The entry is mutated in place; the caller persists it.
func (e *EstateEntry) ApplyPayment(amount decimal.Decimal) (PaymentApplication, error) {
	if !amount.IsPositive() {
		return PaymentApplication{}, ErrNonPositivePayment
	}
	if !FitsMoneyPlaces(amount) {
		return PaymentApplication{}, ErrAmountPrecision
	}
	outstanding := e.Outstanding()
	if !outstanding.IsPositive() {
		return PaymentApplication{}, ErrNothingToPay
	}

	applied := decimal.Min(amount, outstanding)
	result := PaymentApplication{
		Requested:      amount,
		Applied:        applied,
		PreviousPaid:   e.AmountPaid,
		NewPaid:        e.AmountPaid.Add(applied),
		PreviousStatus: e.PaymentStatus,
	}
	result.NewStatus = ReconcileStatus(e.PaymentStatus, e.Amount, result.NewPaid)

	e.AmountPaid = result.NewPaid
	e.PaymentStatus = result.NewStatus
	e.Touch()
	return result, nil
}

// IsOverdueAt reports whether the due date has passed with money still owed
func (e *EstateEntry) IsOverdueAt(asOf time.Time) bool {
	if e.NextDueDate == nil || !e.PaymentStatus.CanBecomeOverdue() {
		return false
	}
	return e.NextDueDate.Before(asOf) && e.Outstanding().IsPositive()
}

// MarkOverdue relabels the entry as Overdue when its due date has passed.
// It returns false when nothing changed.
func (e *EstateEntry) MarkOverdue(asOf time.Time) bool {
	if !e.IsOverdueAt(asOf) {
		return false
	}
	e.PaymentStatus = PaymentStatusOverdue
	e.Touch()
	return true
}

// NormalizePlotNumbers trims plot identifiers and drops blanks, keeping order
func NormalizePlotNumbers(plots []string) []string {
	out := make([]string, 0, len(plots))
	for _, p := range plots {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParsePlotNumbers splits a free-text plot list on commas and semicolons
func ParsePlotNumbers(raw string) []string {
	return NormalizePlotNumbers(strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';'
	}))
}
