package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Error kinds. Every error returned by the ledger core wraps exactly one of
// these so callers can branch with errors.Is.
var (
	// ErrValidation marks a malformed entry or request; nothing was mutated
	ErrValidation = errors.New("validation error")
	// ErrReference marks an entry naming a player that is not in the roster
	ErrReference = errors.New("reference error")
	// ErrState marks an operation that is illegal in the game's current state
	ErrState = errors.New("state error")
	// ErrReconciliation marks an archival blocked by pot != cash-out total
	ErrReconciliation = errors.New("reconciliation error")
	// ErrPersistence marks a failed load or save in the storage layer
	ErrPersistence = errors.New("persistence error")
)

// Lookup errors returned by storage implementations
var (
	ErrGameNotFound = errors.New("game not found")
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// Profile errors
var (
	ErrInvalidPIN = errors.New("pin must be between 3 and 10 characters")
	ErrWrongPIN   = errors.New("incorrect pin")
)

// ReconciliationError reports the totals that prevented archival
type ReconciliationError struct {
	Pot     decimal.Decimal
	CashOut decimal.Decimal
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s: buy-in %s not equal to cash-out %s",
		ErrReconciliation, FormatAmount(e.Pot), FormatAmount(e.CashOut))
}

// Unwrap lets errors.Is match ErrReconciliation
func (e *ReconciliationError) Unwrap() error {
	return ErrReconciliation
}

// Validationf wraps ErrValidation with a formatted message
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Referencef wraps ErrReference with a formatted message
func Referencef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrReference, fmt.Sprintf(format, args...))
}

// Statef wraps ErrState with a formatted message
func Statef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrState, fmt.Sprintf(format, args...))
}

// Persistence wraps a storage failure. Not-found errors pass through
// unchanged so callers can still distinguish them.
func Persistence(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrGameNotFound) || errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrUserExists) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
