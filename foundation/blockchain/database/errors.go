package database

import (
	"errors"
	"fmt"
	"strings"
)

// Set of error variables for ledger validation.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidChain = errors.New("invalid chain")
)

// ValidationError is returned when a constructor is given malformed input.
// Every problem found is listed so one error reports all of them.
type ValidationError struct {
	Op      string
	Reasons []string
}

// newValidationError constructs a validation error for the operation.
func newValidationError(op string, reasons ...string) *ValidationError {
	return &ValidationError{
		Op:      op,
		Reasons: reasons,
	}
}

// Error implements the error interface.
func (ve *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, ve.Op, strings.Join(ve.Reasons, "; "))
}

// Unwrap allows errors.Is to match ErrValidation.
func (ve *ValidationError) Unwrap() error {
	return ErrValidation
}

// =============================================================================

// ChainError reports the first block found to break the integrity of a chain.
type ChainError struct {
	Index  uint64
	Reason string
}

// Error implements the error interface.
func (ce *ChainError) Error() string {
	return fmt.Sprintf("%s: block[%d]: %s", ErrInvalidChain, ce.Index, ce.Reason)
}

// Unwrap allows errors.Is to match ErrInvalidChain.
func (ce *ChainError) Unwrap() error {
	return ErrInvalidChain
}

// IsChainError checks if an error of type ChainError exists.
func IsChainError(err error) bool {
	var ce *ChainError
	return errors.As(err, &ce)
}

// GetChainError returns a copy of the ChainError pointer.
func GetChainError(err error) *ChainError {
	var ce *ChainError
	if !errors.As(err, &ce) {
		return nil
	}
	return ce
}
