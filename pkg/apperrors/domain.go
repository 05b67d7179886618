package apperrors

import (
	"net/http"
)

// Factories and predefined errors for the procurement domain.
//
// The bid lifecycle deliberately distinguishes its validation failures
// (tender closed vs duplicate bid vs bad amount) so bidders can tell why an
// action was rejected instead of getting a generic 400.

// ErrNotFound converts a repository miss (gorm.ErrRecordNotFound) into a 404.
// The same error answers requests for resources the actor may not see, so a
// guessed id never reveals whether the row exists.
func ErrNotFound(err error, domain string) *AppError {
	return Wrap(err, CodeNotFound, domain, "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error, domain string) *AppError {
	return Wrap(err, CodeAlreadyExists, domain, "Resource already exists", http.StatusConflict)
}

// ErrInvalidOperation flags a request that is well-formed but not allowed in
// the current state.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus flags an unknown or disallowed status value.
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Bids ---

// ErrTenderClosed: the referenced tender is not open, or its closing date
// has passed.
var ErrTenderClosed = New(
	CodeTenderClosed,
	"bids",
	"Tender is closed for bidding",
	http.StatusConflict,
)

// ErrDuplicateBid: the bidder already has a bid on this tender.
var ErrDuplicateBid = New(
	CodeDuplicateBid,
	"bids",
	"A bid for this tender already exists",
	http.StatusConflict,
)

// ErrInvalidAmount: bid amount must be a positive number.
var ErrInvalidAmount = New(
	CodeInvalidAmount,
	"bids",
	"Bid amount must be positive",
	http.StatusBadRequest,
)

// ErrBidLocked: the bid left draft (or reached a terminal decision) and the
// requested mutation is no longer permitted.
var ErrBidLocked = New(
	CodeBidLocked,
	"bids",
	"Bid is locked in its current status",
	http.StatusConflict,
)

// ErrScoreOutOfRange: technical/financial scores live in [0,100].
var ErrScoreOutOfRange = New(
	CodeValidationFailed,
	"bids",
	"Scores must be between 0 and 100",
	http.StatusBadRequest,
)

// --- Auth / users ---

// ErrInvalidUserRole: the acting role is not valid for the operation.
var ErrInvalidUserRole = New(
	CodeInvalidOperation,
	"users",
	"Invalid user role for this operation",
	http.StatusBadRequest,
)

// ErrInsufficientPermissions: resolved actor lacks rights for this action.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrEmailTaken: registration with an email that already has an account.
var ErrEmailTaken = New(
	CodeAlreadyExists,
	"users",
	"An account with this email already exists",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)
