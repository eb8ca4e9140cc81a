package invoicing

import (
	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	AggregateTypeInvoice = "Invoice"

	EventTypeReceiptIssued = "ReceiptIssued"
)

// ReceiptIssuedEvent is raised once a receipt invoice has been stored
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID        uuid.UUID       `json:"invoice_id"`
	InvoiceNumber    string          `json:"invoice_number"`
	EstateID         uuid.UUID       `json:"estate_id"`
	EntryID          uuid.UUID       `json:"entry_id"`
	ClientID         *uuid.UUID      `json:"client_id,omitempty"`
	RequestedPayment decimal.Decimal `json:"requested_payment"`
	ActualPayment    decimal.Decimal `json:"actual_payment"`
	Status           string          `json:"status"`
}

// NewReceiptIssuedEvent creates the event for a stored receipt
func NewReceiptIssuedEvent(inv *Invoice, estateID, entryID uuid.UUID, requested decimal.Decimal) *ReceiptIssuedEvent {
	return &ReceiptIssuedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeReceiptIssued, AggregateTypeInvoice, inv.ID),
		InvoiceID:        inv.ID,
		InvoiceNumber:    inv.Number,
		EstateID:         estateID,
		EntryID:          entryID,
		ClientID:         inv.ClientID,
		RequestedPayment: requested,
		ActualPayment:    inv.AmountPaid,
		Status:           inv.Status.String(),
	}
}

// RecordIssued raises ReceiptIssued for a stored receipt of entryID.
// Call it after the invoice number has been assigned.
func (inv *Invoice) RecordIssued(estateID, entryID uuid.UUID, requested decimal.Decimal) {
	inv.AddDomainEvent(NewReceiptIssuedEvent(inv, estateID, entryID, requested))
}
