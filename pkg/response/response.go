package response

import (
	"errors"
	"net/http"

	"backend/pkg/apperror"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// FromError maps a service error to its HTTP status code and error envelope.
func FromError(err error) (int, Response) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperror.ErrInvalidCredentials),
		errors.Is(err, apperror.ErrInvalidToken),
		errors.Is(err, apperror.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, apperror.ErrDuplicateAccount):
		status = http.StatusConflict
	}
	return status, Error(status, err.Error())
}
