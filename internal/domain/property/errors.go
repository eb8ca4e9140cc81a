package property

import "github.com/Tiedr/property-flow-organizer-sub000/internal/domain/shared"

// Error codes raised by the property context
const (
	CodeInvalidAmount    = "INVALID_AMOUNT"
	CodeNothingToPay     = "NOTHING_TO_PAY"
	CodeInvalidStatus    = "INVALID_STATUS"
	CodeEstateNameExists = "ESTATE_NAME_EXISTS"
	CodeEstateNotEmpty   = "ESTATE_NOT_EMPTY"
	CodeClientInUse      = "CLIENT_IN_USE"
	CodeEntryChanged     = "ENTRY_CHANGED"
)

var (
	ErrNonPositivePayment = shared.NewValidationError(CodeInvalidAmount, "Payment amount must be positive")
	ErrAmountPrecision    = shared.NewValidationError(CodeInvalidAmount, "Amounts carry at most 2 decimal places")
	ErrNothingToPay       = shared.NewValidationError(CodeNothingToPay, "Nothing to pay: the entry is already fully paid")
	ErrEntryChanged       = shared.NewDomainError(CodeEntryChanged, "Entry changed before the update was applied")
)
