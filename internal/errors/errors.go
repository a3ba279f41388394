// Package errors renders the API error envelope. Every error response has the
// shape {"code": ..., "error": ..., "details": ...}, details being optional.
package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeForbidden          = "FORBIDDEN"

	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeMissingField = "MISSING_FIELD"
	ErrCodeUnknownField = "UNKNOWN_FIELD"
	ErrCodeInvalidToken = "INVALID_TOKEN"

	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError is the body of every error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// FieldDetails names the request field an error refers to.
type FieldDetails struct {
	Field   string   `json:"field"`
	Allowed []string `json:"allowed,omitempty"`
}

// abort writes the error and stops the handler chain. An empty message falls
// back to fallback.
func abort(c *gin.Context, status int, code, message, fallback string, details any) {
	if message == "" {
		message = fallback
	}
	c.AbortWithStatusJSON(status, &APIError{Code: code, Message: message, Details: details})
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, "Authentication required", nil)
}

// InvalidCredentials sends a 401 response for a failed login
func InvalidCredentials(c *gin.Context, message string) {
	abort(c, http.StatusUnauthorized, ErrCodeInvalidCredentials, message, "Invalid credentials", nil)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	abort(c, http.StatusForbidden, ErrCodeForbidden, message, "Access denied", nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	abort(c, http.StatusNotFound, ErrCodeNotFound, message, "Resource not found", nil)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request", nil)
}

// InvalidToken sends a 400 response for an unusable reset or verification token
func InvalidToken(c *gin.Context, message string) {
	abort(c, http.StatusBadRequest, ErrCodeInvalidToken, message, "Invalid or expired token", nil)
}

// InvalidField sends a 400 response naming the offending field
func InvalidField(c *gin.Context, field, message string) {
	var details any
	if field != "" {
		details = &FieldDetails{Field: field}
	}
	abort(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request", details)
}

// MissingField sends a 400 response for an absent required field
func MissingField(c *gin.Context, field, message string) {
	abort(c, http.StatusBadRequest, ErrCodeMissingField, message, "Missing required field: "+field, &FieldDetails{Field: field})
}

// UnknownField sends a 400 response for a field outside the allow-list
func UnknownField(c *gin.Context, field string, allowed []string, message string) {
	abort(c, http.StatusBadRequest, ErrCodeUnknownField, message, "Unknown field: "+field, &FieldDetails{Field: field, Allowed: allowed})
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	abort(c, http.StatusConflict, ErrCodeConflict, message, "Resource conflict", nil)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	abort(c, http.StatusInternalServerError, ErrCodeInternalError, message, "Internal server error", nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	abort(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message, "Service temporarily unavailable", nil)
}
