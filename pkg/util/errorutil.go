package util

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnauthenticated signals a missing or invalid session.
func NewUnauthenticated(message string) error {
	return NewDomainError("UNAUTHENTICATED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

// NewInvalid signals a value mismatch or malformed input.
func NewInvalid(message string) error {
	return NewDomainError("INVALID", message, http.StatusBadRequest, nil)
}

// NewExpired signals a token past its expiry. The stale row is deleted as
// a side effect of the failed validation, so a retry yields NOT_FOUND.
func NewExpired(message string) error {
	return NewDomainError("EXPIRED", message, http.StatusGone, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

// NewRateLimited signals the caller exceeded its request budget.
func NewRateLimited(message string) error {
	return NewDomainError("RATE_LIMITED", message, http.StatusTooManyRequests, nil)
}

// NewTokenExchangeFailed signals a failed OAuth authorization-code exchange.
func NewTokenExchangeFailed(err error) error {
	return &DomainError{
		Code:       "TOKEN_EXCHANGE_FAILED",
		Message:    "oauth code exchange failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewProfileFetchFailed signals a failed OAuth profile fetch.
func NewProfileFetchFailed(err error) error {
	return &DomainError{
		Code:       "PROFILE_FETCH_FAILED",
		Message:    "oauth profile fetch failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewSessionSaveFailed signals that the session could not be persisted.
// The triggering request must be aborted; the caller is not logged in.
func NewSessionSaveFailed(err error) error {
	return &DomainError{
		Code:       "SESSION_SAVE_FAILED",
		Message:    "session could not be saved",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		if de, ok := NewNotFound("resource", nil).(*DomainError); ok {
			return de
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}
