package token

import (
	"errors"
	"fmt"

	"github.com/xraph/token/event"
	"github.com/xraph/token/id"
)

// Sentinel errors for common failure scenarios.
var (
	// Authorization errors
	ErrUnauthorized = errors.New("token: unauthorized")

	// Pause errors
	ErrAlreadyPaused   = errors.New("token: already paused")
	ErrNotPaused       = errors.New("token: not paused")
	ErrTransfersPaused = errors.New("token: transfers paused")

	// Balance and allowance errors
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
	ErrSupplyOverflow        = errors.New("token: supply overflow")
	ErrAllowanceOverflow     = errors.New("token: allowance overflow")
	ErrAllowanceBelowZero    = errors.New("token: decreased allowance below zero")
	ErrInvalidAccount        = errors.New("token: invalid account")

	// Lifecycle errors
	ErrAlreadyStarted = errors.New("token: already started")
	ErrNotStarted     = errors.New("token: not started")
	ErrStopped        = errors.New("token: ledger stopped; create a new ledger to start again")

	// Store errors
	ErrNotFound       = errors.New("token: not found")
	ErrStoreNotReady  = errors.New("token: store not ready")
	ErrStoreClosed    = errors.New("token: store is closed")
	ErrFlushFailed    = errors.New("token: journal flush failed")
	ErrJournalCorrupt = event.ErrChainBroken
)

// Operation names reported in OperationError and to plugins.
const (
	OpMint                  = "mint"
	OpPause                 = "pause"
	OpUnpause               = "unpause"
	OpTransferAdministrator = "transfer_administrator"
	OpTransfer              = "transfer"
	OpTransferFrom          = "transfer_from"
	OpApprove               = "approve"
	OpIncreaseAllowance     = "increase_allowance"
	OpDecreaseAllowance     = "decrease_allowance"
)

// OperationError is returned by every failed ledger mutation. It unwraps to
// one of the sentinel errors above.
type OperationError struct {
	Op     string
	Caller id.AccountID
	Err    error
}

func (e *OperationError) Error() string {
	if e.Caller.IsNil() {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s by %s: %v", e.Op, e.Caller, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("token: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "token: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("token: %d errors occurred", len(e.Errors))
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e MultiError) Unwrap() []error { return e.Errors }

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ErrOrNil returns e if it holds any errors, otherwise nil.
func (e MultiError) ErrOrNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAuthError returns true if the caller lacked the administrator role.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsPauseError returns true if the error is related to the pause gate.
func IsPauseError(err error) bool {
	return errors.Is(err, ErrTransfersPaused) ||
		errors.Is(err, ErrAlreadyPaused) ||
		errors.Is(err, ErrNotPaused)
}

// IsFundsError returns true if the error is related to balances, allowances
// or supply limits.
func IsFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance) ||
		errors.Is(err, ErrSupplyOverflow) ||
		errors.Is(err, ErrAllowanceOverflow) ||
		errors.Is(err, ErrAllowanceBelowZero)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrFlushFailed)
}
