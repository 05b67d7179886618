package apperrors

// ErrorCode identifies a class of failure in API responses.
type ErrorCode string

// Cross-cutting codes. Domain-specific codes live in domain.go next to
// their factories.
const (
	// System failures
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Generic business failures
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"
	CodeInvalidOperation ErrorCode = "INVALID_OPERATION"

	// Authentication / authorization
	CodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"

	// Bid lifecycle
	CodeInvalidAmount ErrorCode = "INVALID_AMOUNT"
	CodeDuplicateBid  ErrorCode = "DUPLICATE_BID"
	CodeTenderClosed  ErrorCode = "TENDER_CLOSED"
	CodeBidLocked     ErrorCode = "BID_LOCKED"
)
