package errors

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/learnflow-api/internal/logger"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "SESSION_EXPIRED"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeWeakPassword = "WEAK_PASSWORD"

	// Resource errors
	ErrCodeNotFound = "NOT_FOUND"
	ErrCodeConflict = "CONFLICT"

	// Service errors
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// APIError represents a standardized API error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewAPIErrorWithDetails creates a new APIError with details
func NewAPIErrorWithDetails(code, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// Kind classifies domain failures so transports can map them uniformly.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindNotFound
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// DomainError is returned by services for failures the caller can act on.
// Package-level DomainError values act as sentinels and are matched with errors.Is.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string
	Details interface{}

	parent error
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.parent
}

// WithDetails returns a copy of e that carries details and still matches e with errors.Is.
func (e *DomainError) WithDetails(details interface{}) *DomainError {
	return &DomainError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		parent:  e,
	}
}

func newDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{Kind: kind, Code: code, Message: message}
}

// Validation creates a DomainError for missing or malformed input.
func Validation(message string) *DomainError {
	return newDomainError(KindValidation, ErrCodeInvalidInput, message)
}

// Conflict creates a DomainError for duplicate records.
func Conflict(message string) *DomainError {
	return newDomainError(KindConflict, ErrCodeConflict, message)
}

// Auth creates a DomainError for bad credentials or invalid sessions.
func Auth(code, message string) *DomainError {
	if code == "" {
		code = ErrCodeUnauthorized
	}
	return newDomainError(KindAuth, code, message)
}

// NotFoundError creates a DomainError for records that do not exist or are not visible to the caller.
func NotFoundError(message string) *DomainError {
	return newDomainError(KindNotFound, ErrCodeNotFound, message)
}

// Unavailable creates a DomainError for optional integrations that are not configured.
func Unavailable(message string) *DomainError {
	return newDomainError(KindUnavailable, ErrCodeServiceUnavailable, message)
}

// KindOf returns the Kind of the first DomainError in err's chain.
func KindOf(err error) Kind {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.JSON(statusCode, err)
}

// Respond maps err onto an HTTP response. Errors that are not DomainErrors
// are logged and reported as 500 without leaking their text.
func Respond(c *gin.Context, err error) {
	var de *DomainError
	if !stderrors.As(err, &de) {
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		InternalError(c, "")
		return
	}

	apiErr := NewAPIErrorWithDetails(de.Code, de.Message, de.Details)
	switch de.Kind {
	case KindValidation:
		RespondWithError(c, http.StatusBadRequest, apiErr)
	case KindConflict:
		RespondWithError(c, http.StatusConflict, apiErr)
	case KindAuth:
		RespondWithError(c, http.StatusUnauthorized, apiErr)
	case KindNotFound:
		RespondWithError(c, http.StatusNotFound, apiErr)
	case KindUnavailable:
		RespondWithError(c, http.StatusServiceUnavailable, apiErr)
	default:
		logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		InternalError(c, "")
	}
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, NewAPIError(ErrCodeInternalError, message))
}
