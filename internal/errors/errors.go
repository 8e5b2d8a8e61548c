package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError represents a domain-specific error with a code and message
type DomainError struct {
	Code    string
	Message string
	Err     error // underlying error for wrapping
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is and errors.As
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches two domain errors by code so wrapped instances still compare
// equal to their predefined kind
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with domain error context
func WrapError(domainErr *DomainError, err error) *DomainError {
	return &DomainError{
		Code:    domainErr.Code,
		Message: domainErr.Message,
		Err:     err,
	}
}

// Predefined domain errors.
//
// ErrInvalidCredentials is deliberately shared by the unknown-email and
// wrong-password paths: the login response must not reveal whether an email
// is registered. ErrInvalidResetToken is likewise shared by the missing,
// used, and expired reset-token paths.
var (
	// User errors
	ErrUserNotFound       = NewDomainError("USER_NOT_FOUND", "user not found")
	ErrEmailExists        = NewDomainError("EMAIL_EXISTS", "email already registered")
	ErrInvalidCredentials = NewDomainError("INVALID_CREDENTIALS", "invalid email or password")

	// Token errors
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "unauthorized")
	ErrInvalidToken        = NewDomainError("INVALID_TOKEN", "invalid token")
	ErrTokenExpired        = NewDomainError("TOKEN_EXPIRED", "token has expired")
	ErrInvalidRefreshToken = NewDomainError("INVALID_REFRESH_TOKEN", "invalid refresh token")
	ErrInvalidResetToken   = NewDomainError("INVALID_RESET_TOKEN", "invalid or expired reset token")

	// Validation errors
	ErrInvalidInput      = NewDomainError("INVALID_INPUT", "invalid input")
	ErrWeakPassword      = NewDomainError("WEAK_PASSWORD", "password does not meet strength requirements")
	ErrIncorrectPassword = NewDomainError("INCORRECT_PASSWORD", "current password is incorrect")

	// Organization errors
	ErrOrganizationNotFound = NewDomainError("ORGANIZATION_NOT_FOUND", "organization not found")
	ErrSlugExists           = NewDomainError("SLUG_EXISTS", "organization slug already taken")
	ErrSlugImmutable        = NewDomainError("SLUG_IMMUTABLE", "organization slug cannot be changed")
	ErrNotMember            = NewDomainError("NOT_A_MEMBER", "you are not an active member of this organization")
	ErrInsufficientRole     = NewDomainError("INSUFFICIENT_ROLE", "your role does not permit this action")

	// System errors
	ErrTooManyRequests    = NewDomainError("TOO_MANY_REQUESTS", "too many requests")
	ErrInternal           = NewDomainError("INTERNAL_ERROR", "internal server error")
	ErrServiceUnavailable = NewDomainError("SERVICE_UNAVAILABLE", "service unavailable")
)

// IsDomainError checks if an error is a domain error
func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// GetDomainError extracts the domain error from an error
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// ToHTTPStatus maps domain errors to HTTP status codes.
// This should only be used in the handler/presentation layer.
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErrorToHTTPStatus(domainErr)
	}

	return http.StatusInternalServerError
}

func domainErrorToHTTPStatus(err *DomainError) int {
	switch err.Code {
	// 400 Bad Request
	case "INVALID_INPUT", "WEAK_PASSWORD", "INVALID_RESET_TOKEN", "SLUG_IMMUTABLE":
		return http.StatusBadRequest

	// 401 Unauthorized
	case "UNAUTHORIZED", "INVALID_CREDENTIALS", "INVALID_TOKEN",
		"TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "INCORRECT_PASSWORD":
		return http.StatusUnauthorized

	// 403 Forbidden
	case "NOT_A_MEMBER", "INSUFFICIENT_ROLE":
		return http.StatusForbidden

	// 404 Not Found
	case "USER_NOT_FOUND", "ORGANIZATION_NOT_FOUND":
		return http.StatusNotFound

	// 409 Conflict
	case "EMAIL_EXISTS", "SLUG_EXISTS":
		return http.StatusConflict

	// 429 Too Many Requests
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests

	// 503 Service Unavailable
	case "SERVICE_UNAVAILABLE":
		return http.StatusServiceUnavailable

	// 500 Internal Server Error (default)
	default:
		return http.StatusInternalServerError
	}
}

// GetErrorMessage safely extracts a user-facing error message. Internal
// errors never leak their underlying cause across the boundary.
func GetErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	return ErrInternal.Message
}
