package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInternal             = "INTERNAL_ERROR"
	ErrCodeInvalidInput         = "INVALID_INPUT"
	ErrCodeProcessorUnreachable = "PROCESSOR_UNREACHABLE"
	ErrCodeBadCredentials       = "BAD_CREDENTIALS"
)

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidInputError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidInput,
		Message:    "Invalid input",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

// NewProcessorUnreachableError wraps a failed processor call. The message is
// operator-visible; webhook-facing callers answer with a failure status so
// the processor's own redelivery can re-attempt.
func NewProcessorUnreachableError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeProcessorUnreachable,
		Message:    "Could not reach the payment processor",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewBadCredentialsError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeBadCredentials,
		Message:    "Your credentials are not correct. Please, insert the correct credentials and try again.",
		HTTPStatus: http.StatusUnauthorized,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
