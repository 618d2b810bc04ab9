package processor

import (
	"errors"
	"fmt"
)

type ProcessorError struct {
	Code       string
	Message    string
	StatusCode int
}

type processorErrorResponse struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error [%s]: %s (status: %d)", e.Code, e.Message, e.StatusCode)
}

func IsProcessorError(err error) (*ProcessorError, bool) {
	var procErr *ProcessorError
	ok := errors.As(err, &procErr)
	return procErr, ok
}
