package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/property"
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is an immutable record of one financial event against a client.
// Amount is the property total at issuance; AmountPaid is what this
// invoice records, not the running total.
type Invoice struct {
	shared.BaseAggregateRoot
	Number     string
	ClientID   *uuid.UUID
	EstateID   *uuid.UUID
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	Status     property.PaymentStatus
	IssuedDate time.Time
	DueDate    *time.Time
	Notes      string
	IssuedBy   *uuid.UUID
	Items      []InvoiceItem
	// EntrySnapshot captures the entry right after the payment, only on
	// receipts
	EntrySnapshot *EntrySnapshot
}

// EntrySnapshot is the state of an estate entry at the moment a receipt
// was issued
type EntrySnapshot struct {
	EntryID     uuid.UUID              `json:"entry_id"`
	ClientName  string                 `json:"client_name,omitempty"`
	Amount      decimal.Decimal        `json:"amount"`
	AmountPaid  decimal.Decimal        `json:"amount_paid"`
	Status      property.PaymentStatus `json:"status"`
	PlotNumbers []string               `json:"plot_numbers"`
}

// Balance is what was still owed after the receipt
func (s EntrySnapshot) Balance() decimal.Decimal {
	return s.Amount.Sub(s.AmountPaid)
}

// InvoiceItem is one line of an invoice
type InvoiceItem struct {
	ID            uuid.UUID
	Description   string
	Amount        decimal.Decimal
	EstateEntryID *uuid.UUID
	PlotDetails   string
}

// InvoiceDetails is the input of a manually created invoice
type InvoiceDetails struct {
	ClientID   *uuid.UUID
	EstateID   *uuid.UUID
	Amount     decimal.Decimal
	AmountPaid decimal.Decimal
	IssuedDate time.Time
	DueDate    *time.Time
	Notes      string
	IssuedBy   *uuid.UUID
	Items      []InvoiceItem
}

// ReceiptDescription summarises the plots a receipt pays for
func ReceiptDescription(plots []string) string {
	if len(plots) == 0 {
		return "Payment for estate entry"
	}
	return "Payment for plot(s) " + strings.Join(plots, property.PlotSeparator)
}

// NewReceipt builds the invoice recording one applied payment. The entry
// must already reflect the payment. Identity, number and timestamps are
// assigned by the store.
func NewReceipt(entry *property.EstateEntry, payment property.PaymentApplication, notes string, issuedAt time.Time) *Invoice {
	entryID := entry.ID
	estateID := entry.EstateID

	inv := &Invoice{
		ClientID:   entry.ClientID,
		EstateID:   &estateID,
		Amount:     entry.Amount,
		AmountPaid: payment.Applied,
		Status:     payment.NewStatus,
		IssuedDate: issuedAt,
		Notes:      strings.TrimSpace(notes),
		Items: []InvoiceItem{{
			Description:   ReceiptDescription(entry.PlotNumbers),
			Amount:        payment.Applied,
			EstateEntryID: &entryID,
			PlotDetails:   entry.PlotDetails(),
		}},
		EntrySnapshot: &EntrySnapshot{
			EntryID:     entryID,
			ClientName:  entry.ClientName,
			Amount:      entry.Amount,
			AmountPaid:  entry.AmountPaid,
			Status:      entry.PaymentStatus,
			PlotNumbers: append([]string(nil), entry.PlotNumbers...),
		},
	}
	if payment.NewStatus != property.PaymentStatusPaid && entry.NextDueDate != nil {
		due := *entry.NextDueDate
		inv.DueDate = &due
	}
	return inv
}

// NewInvoice validates and builds a manually entered invoice
func NewInvoice(d InvoiceDetails) (*Invoice, error) {
	if !d.Amount.IsPositive() {
		return nil, shared.NewDomainError(property.CodeInvalidAmount, "Invoice amount must be positive")
	}
	if d.AmountPaid.IsNegative() || d.AmountPaid.GreaterThan(d.Amount) {
		return nil, shared.NewDomainError(property.CodeInvalidAmount, "Amount paid must be between zero and the invoice amount")
	}
	if !property.FitsMoneyPlaces(d.Amount) || !property.FitsMoneyPlaces(d.AmountPaid) {
		return nil, property.ErrAmountPrecision
	}
	if len(d.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_ITEMS", "Invoice must have at least one item")
	}

	itemTotal := decimal.Zero
	items := make([]InvoiceItem, 0, len(d.Items))
	for i, item := range d.Items {
		desc := strings.TrimSpace(item.Description)
		if desc == "" {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d needs a description", i+1))
		}
		if item.Amount.IsNegative() || !property.FitsMoneyPlaces(item.Amount) {
			return nil, shared.NewDomainError("INVALID_ITEMS", fmt.Sprintf("Item %d amount must be non-negative with at most 2 decimal places", i+1))
		}
		item.Description = desc
		itemTotal = itemTotal.Add(item.Amount)
		items = append(items, item)
	}
	if !itemTotal.Equal(d.AmountPaid) {
		return nil, shared.NewDomainError("INVALID_ITEMS",
			fmt.Sprintf("Item amounts (%s) must add up to the amount paid (%s)", itemTotal.String(), d.AmountPaid.String()))
	}

	issued := d.IssuedDate
	if issued.IsZero() {
		issued = time.Now()
	}
	return &Invoice{
		ClientID:   d.ClientID,
		EstateID:   d.EstateID,
		Amount:     d.Amount,
		AmountPaid: d.AmountPaid,
		Status:     property.DeriveStatus(d.Amount, d.AmountPaid),
		IssuedDate: issued,
		DueDate:    d.DueDate,
		Notes:      strings.TrimSpace(d.Notes),
		IssuedBy:   d.IssuedBy,
		Items:      items,
	}, nil
}

// UpdateDetails edits the mutable part of an invoice. Amounts and items
// are fixed at issuance.
func (i *Invoice) UpdateDetails(notes string, dueDate *time.Time) {
	i.Notes = strings.TrimSpace(notes)
	i.DueDate = dueDate
	i.Touch()
}

// SetIssuedBy records the user who issued the invoice
func (i *Invoice) SetIssuedBy(userID uuid.UUID) {
	if userID == uuid.Nil {
		return
	}
	i.IssuedBy = &userID
}

// ItemsTotal sums the line amounts
func (i *Invoice) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range i.Items {
		total = total.Add(item.Amount)
	}
	return total
}

// PlotDetails joins the plot details of all lines
func (i *Invoice) PlotDetails() string {
	parts := make([]string, 0, len(i.Items))
	for _, item := range i.Items {
		if item.PlotDetails != "" {
			parts = append(parts, item.PlotDetails)
		}
	}
	return strings.Join(parts, property.PlotSeparator)
}
