package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lusopay/paypay-gateway/internal/application"
	"github.com/lusopay/paypay-gateway/internal/domain"
)

type ErrorResponse struct {
	Success bool        `json:"success"`
	Error   ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError maps application and domain errors to HTTP responses.
func WriteError(w http.ResponseWriter, err error) {
	statusCode := toHTTPStatus(err)
	errorCode := toErrorCode(err)

	response := ErrorResponse{
		Success: false,
		Error: ErrorDetail{
			Code:    errorCode,
			Message: err.Error(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func toHTTPStatus(err error) int {
	if svcErr, ok := application.IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case domain.IsErrorCode(err, domain.ErrCodeNotFound):
		return http.StatusNotFound
	case domain.IsErrorCode(err, domain.ErrCodeAmountMismatch),
		domain.IsErrorCode(err, domain.ErrCodeInvalidAmount),
		domain.IsErrorCode(err, domain.ErrCodeInvalidAction),
		domain.IsErrorCode(err, domain.ErrCodeAlreadyTerminal):
		return http.StatusBadRequest
	case domain.IsErrorCode(err, domain.ErrCodeProcessorError):
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

func toErrorCode(err error) string {
	if svcErr, ok := application.IsServiceError(err); ok {
		return svcErr.Code
	}

	var de *domain.DomainError
	if errors.As(err, &de) {
		return de.Code
	}

	return application.ErrCodeInternal
}
