package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientBalance is returned when a debit (create or update)
	// would drive the user's balance below zero.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrTransactionNotFound is returned when the referenced transaction
	// does not exist or is not visible to the caller.
	ErrTransactionNotFound = errors.New("ledger: transaction not found")

	// ErrBalanceNotFound is returned by stores when no balance record
	// exists for a user. The engine heals it by creating a zero balance.
	ErrBalanceNotFound = errors.New("ledger: balance not found")

	// ErrImportRejected is returned when a bulk import simulation would
	// drive the balance negative, or the upload could not be fully read.
	// Nothing is persisted.
	ErrImportRejected = errors.New("ledger: import rejected")

	// ErrEmptyImport is returned when a bulk import contains no
	// structurally valid rows. Nothing is persisted.
	ErrEmptyImport = errors.New("ledger: import contains no valid rows")
)

// ValidationError reports a malformed input field. It is the caller's fault
// and never leaves any state change behind.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ledger: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation checks if the given error is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound checks if the given error indicates a missing transaction or balance.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) || errors.Is(err, ErrBalanceNotFound)
}
