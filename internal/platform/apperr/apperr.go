// Copyright (c) 2026 Madhouse. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package apperr defines the client-facing error type of the admin API.

Services return an [*AppError] for every failure a caller may see; anything
else reaching [respond.Error] becomes an opaque 500.

Codes used by this API:

	NOT_FOUND         404  missing account, event or contact
	UNAUTHORIZED      401  bad credentials, missing or invalid token
	FORBIDDEN         403  account not verified
	CONFLICT          409  duplicate email, recovery already in progress
	BAD_REQUEST       400  well-formed request refused in the current state
	VALIDATION_ERROR  400  malformed input, with per-field details
	RATE_LIMITED      429  per-IP budget exhausted
	INTERNAL_ERROR    500  everything else; the cause is logged, never sent
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the admin API.
//
// Cause is for server-side logging only and is never serialized.
type AppError struct {
	Code       string       `json:"code"`
	Message    string       `json:"error"`
	HTTPStatus int          `json:"-"`
	Cause      error        `json:"-"`
	Details    []FieldError `json:"details,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

func newError(code string, status int, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
//	apperr.NotFound("Event") // "Event not found"
func NotFound(resource string) *AppError {
	return newError("NOT_FOUND", http.StatusNotFound, resource+" not found")
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return newError("UNAUTHORIZED", http.StatusUnauthorized, msg)
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return newError("FORBIDDEN", http.StatusForbidden, msg)
}

// Conflict creates a 409 [AppError] for duplicates and contended resources.
func Conflict(msg string) *AppError {
	return newError("CONFLICT", http.StatusConflict, msg)
}

// BadRequest creates a 400 [AppError] for requests that are well-formed but
// cannot be honoured in the current state (e.g. an expired one-time code).
func BadRequest(msg string) *AppError {
	return newError("BAD_REQUEST", http.StatusBadRequest, msg)
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	err := newError("VALIDATION_ERROR", http.StatusBadRequest, msg)
	err.Details = details
	return err
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return newError("RATE_LIMITED", http.StatusTooManyRequests,
		fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds))
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
func Internal(cause error) *AppError {
	err := newError("INTERNAL_ERROR", http.StatusInternalServerError, "An unexpected error occurred")
	err.Cause = cause
	return err
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// StatusOf returns the HTTP status err would be answered with: the
// [AppError] status when present, 500 otherwise, 0 for nil.
func StatusOf(err error) int {
	if err == nil {
		return 0
	}
	if ae := As(err); ae != nil {
		return ae.HTTPStatus
	}
	return http.StatusInternalServerError
}
