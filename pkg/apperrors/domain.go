package apperrors

import (
	"net/http"
)

/*
Factories and predefined variables for domain errors of the
notification core.
*/

// ErrNotFound converts a repository not-found (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// --- Notification core ---

// ErrEmptyMessage - dispatch with an empty broadcast message.
var ErrEmptyMessage = New(
	CodeValidationFailed,
	"notification",
	"Notification message must not be empty",
	http.StatusBadRequest,
)

// ErrInvalidTarget - target outside all|users|companies|custom.
var ErrInvalidTarget = New(
	CodeValidationFailed,
	"notification",
	"Invalid notification target",
	http.StatusBadRequest,
)

// ErrTargetEmailRequired - custom target without a target email.
var ErrTargetEmailRequired = New(
	CodeValidationFailed,
	"notification",
	"target_email is required for a custom target",
	http.StatusBadRequest,
)

// ErrNoSuchRecipient - custom target email resolves to no recipient
// in either directory. Fan-out does not proceed.
var ErrNoSuchRecipient = New(
	CodeNoSuchRecipient,
	"notification",
	"No recipient with the given email exists in any directory",
	http.StatusBadRequest,
)

// ErrDirectoryUnavailable - every directory needed by the target was
// unreachable, so fan-out could not resolve a single recipient.
func ErrDirectoryUnavailable(err error) *AppError {
	return Wrap(err, CodeDirectoryUnavailable, "directory",
		"Recipient directory unavailable", http.StatusServiceUnavailable)
}

// ErrInvalidRecipientKind - recipient kind outside individual|company.
var ErrInvalidRecipientKind = New(
	CodeValidationFailed,
	"notification",
	"Invalid recipient kind",
	http.StatusBadRequest,
)

// ErrInsufficientPermissions - a non-admin attempted an admin action.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)
