package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeAlreadyTerminal = "ALREADY_TERMINAL"
	ErrCodeAmountMismatch  = "AMOUNT_MISMATCH"
	ErrCodeInvalidAction   = "INVALID_ACTION"
	ErrCodeInvalidAmount   = "INVALID_AMOUNT"
	ErrCodeProcessorError  = "PROCESSOR_ERROR"
)

func NewNotFoundError(transactionID int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("no payment record for transaction %d", transactionID),
	}
}

func NewAmountMismatchError(transactionID, orderAmount, reportedAmount int64) *DomainError {
	return &DomainError{
		Code: ErrCodeAmountMismatch,
		Message: fmt.Sprintf("payment amount differs from order: transaction %d reported %d, order total %d",
			transactionID, reportedAmount, orderAmount),
	}
}

func NewInvalidActionError(action string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAction,
		Message: fmt.Sprintf("invalid webhook action %q", action),
	}
}

func NewInvalidAmountError(raw string) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("amount %q is not a non-negative two-decimal value", raw),
	}
}

func NewProcessorError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeProcessorError,
		Message: "processor request failed",
		Err:     err,
	}
}

// IsErrorCode reports whether err is a DomainError carrying the given code.
func IsErrorCode(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
