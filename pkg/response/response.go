package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AppError is a structured application error carrying the HTTP status it
// should be reported with.
type AppError struct {
	HTTPStatus int
	Message    string
}

func (e *AppError) Error() string {
	return e.Message
}

// BadRequest signals malformed or empty input (400).
func BadRequest(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg}
}

// NotFound signals an unknown resource id (404).
func NotFound(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusNotFound, Message: msg}
}

// NotConfigured signals missing required external-service configuration.
// Reported as 400 so the admin UI can prompt for the missing setting.
func NotConfigured(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusBadRequest, Message: msg}
}

// Upstream signals a provider or network failure. status is the upstream
// HTTP status when one was received, or 502 for transport-level failures.
func Upstream(status int, msg string) *AppError {
	if status < 400 {
		status = http.StatusBadGateway
	}
	return &AppError{HTTPStatus: status, Message: msg}
}

// ServerError signals an unexpected internal failure (500).
func ServerError(msg string) *AppError {
	return &AppError{HTTPStatus: http.StatusInternalServerError, Message: msg}
}

// Error writes err as a JSON error envelope. *AppError values keep their
// status; anything else becomes a 500.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, gin.H{"error": appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
