package invoicing

import (
	"fmt"

	"github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error codes raised by the invoicing services
const (
	CodePDFDisabled     = "PDF_DISABLED"
	CodeArchiveDisabled = "ARCHIVE_DISABLED"
	CodeInvalidClient   = "INVALID_CLIENT"
	CodeInvalidEstate   = "INVALID_ESTATE"
)

// PartialCompletionError reports a receipt whose entry update was stored
// but whose invoice was not. The entry already carries the payment; the
// caller has to reconcile the missing invoice by hand.
type PartialCompletionError struct {
	EstateID      uuid.UUID
	EntryID       uuid.UUID
	AppliedAmount decimal.Decimal
	Err           error
}

func (e *PartialCompletionError) Error() string {
	return fmt.Sprintf("payment of %s applied to entry %s but the invoice was not stored: %v",
		e.AppliedAmount.String(), e.EntryID, e.Err)
}

func (e *PartialCompletionError) Unwrap() error {
	return e.Err
}

// DomainError returns the error as a PARTIAL_COMPLETION domain error
// carrying the entry and the applied amount
func (e *PartialCompletionError) DomainError() *shared.DomainError {
	return &shared.DomainError{
		Code:    shared.CodePartialCompletion,
		Message: "Payment was applied to the entry but the invoice could not be stored",
		Details: map[string]any{
			"estate_id":      e.EstateID.String(),
			"entry_id":       e.EntryID.String(),
			"applied_amount": e.AppliedAmount.String(),
		},
	}
}
