package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeNotImplemented is used when a feature is switched off
	ErrCodeNotImplemented = "ERR_NOT_IMPLEMENTED"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
)

// Input error codes
const (
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Request handling error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
	// ErrCodeIdempotencyConflict is returned when a request with the same
	// Idempotency-Key is still in flight or was already processed
	ErrCodeIdempotencyConflict = "ERR_IDEMPOTENCY_CONFLICT"
)

// ErrorCodeContextKey is the gin context key holding the error code of the
// response written by a handler
const ErrorCodeContextKey = "error_code"

// Domain error codes are passed through unchanged so clients can branch on
// them. They are listed here only to attach a status code.
const (
	CodeInvalidAmount     = "INVALID_AMOUNT"
	CodeNothingToPay      = "NOTHING_TO_PAY"
	CodeInvalidStatus     = "INVALID_STATUS"
	CodeEstateNameExists  = "ESTATE_NAME_EXISTS"
	CodeEstateNotEmpty    = "ESTATE_NOT_EMPTY"
	CodeClientInUse       = "CLIENT_IN_USE"
	CodePartialCompletion = "PARTIAL_COMPLETION"
	CodePDFDisabled       = "PDF_DISABLED"
	CodeArchiveDisabled   = "ARCHIVE_DISABLED"
	CodeInvalidClient     = "INVALID_CLIENT"
	CodeInvalidEstate     = "INVALID_ESTATE"
	CodeInvalidImportFile = "INVALID_IMPORT_FILE"
	CodeMissingColumn     = "MISSING_COLUMN"
	CodeInvalidImportType = "INVALID_IMPORT_FORMAT"
	CodeInvalidName       = "INVALID_NAME"
	CodeInvalidItems      = "INVALID_ITEMS"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:        http.StatusInternalServerError,
	ErrCodeInternal:       http.StatusInternalServerError,
	ErrCodeNotImplemented: http.StatusNotImplemented,

	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeRateLimited:         http.StatusTooManyRequests,
	ErrCodeIdempotencyConflict: http.StatusConflict,

	CodeInvalidAmount:     http.StatusBadRequest,
	CodeInvalidStatus:     http.StatusBadRequest,
	CodeNothingToPay:      http.StatusUnprocessableEntity,
	CodeEstateNameExists:  http.StatusConflict,
	CodeEstateNotEmpty:    http.StatusConflict,
	CodeClientInUse:       http.StatusConflict,
	CodePartialCompletion: http.StatusInternalServerError,
	CodePDFDisabled:       http.StatusNotImplemented,
	CodeArchiveDisabled:   http.StatusNotImplemented,
	CodeInvalidClient:     http.StatusUnprocessableEntity,
	CodeInvalidEstate:     http.StatusUnprocessableEntity,
	CodeInvalidImportFile: http.StatusBadRequest,
	CodeMissingColumn:     http.StatusBadRequest,
	CodeInvalidImportType: http.StatusUnsupportedMediaType,
	CodeInvalidName:       http.StatusBadRequest,
	CodeInvalidItems:      http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps the generic domain codes to the ERR_ format
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"ALREADY_EXISTS":   ErrCodeAlreadyExists,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"INVALID_STATE":    ErrCodeInvalidState,
	"UNAUTHORIZED":     ErrCodeUnauthorized,
	"FORBIDDEN":        ErrCodeForbidden,
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a legacy error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
