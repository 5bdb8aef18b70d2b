package club

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by club repositories and services
var (
	ErrNotFound           = errors.New("club: record not found")
	ErrTierNotFound       = errors.New("club: tier not found")
	ErrEnrollmentNotFound = errors.New("club: enrollment not found")
	ErrCustomerNotFound   = errors.New("club: customer not found")
	ErrTierRetired        = errors.New("club: tier is retired and frozen")
)

// ValidationError indicates malformed or incomplete input. It is always
// surfaced before any remote call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "club: " + e.Message
	}
	return fmt.Sprintf("club: %s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DraftIncompleteError indicates enrollment completion was attempted before
// all wizard gates were satisfied. No remote call is made when returned.
type DraftIncompleteError struct {
	// MissingGates names the unsatisfied gates, e.g. "customer", "payment"
	MissingGates []string
}

// Error implements the error interface
func (e *DraftIncompleteError) Error() string {
	return "club: enrollment draft incomplete, missing: " + strings.Join(e.MissingGates, ", ")
}

// FatalSetupError aborts the remaining steps of a club setup operation.
// Unlike promotion sync failures it is not downgraded to a warning.
type FatalSetupError struct {
	// Step names the operation that failed, e.g. "loyalty-rule", "club-program"
	Step string
	// Cause is the underlying failure
	Cause error
}

// Error implements the error interface
func (e *FatalSetupError) Error() string {
	return fmt.Sprintf("club: fatal setup failure at %s: %v", e.Step, e.Cause)
}

// Unwrap exposes the cause for errors.Is/As
func (e *FatalSetupError) Unwrap() error {
	return e.Cause
}

// NewFatalSetupError wraps a failure that must abort setup
func NewFatalSetupError(step string, cause error) *FatalSetupError {
	return &FatalSetupError{Step: step, Cause: cause}
}
