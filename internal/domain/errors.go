package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrUserAlreadyExists   = errors.New("user_already_exists")
	ErrUserNotFound        = errors.New("user_not_found")
	ErrOrderNotFound       = errors.New("order_not_found")
	ErrOrderNotCancellable = errors.New("order_not_cancellable")
	ErrInsufficientFunds   = errors.New("insufficient_funds")
	ErrInsufficientShares  = errors.New("insufficient_shares")
	ErrSymbolNotFound      = errors.New("symbol_not_found")
	ErrInvalidCredentials  = errors.New("invalid_credentials")
)

// ValidationError represents a request validation failure. Orders that
// fail validation are rejected before they reach the book.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
