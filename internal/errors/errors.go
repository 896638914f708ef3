// Package errors provides categorized error types for the name service.
// Each error carries a category, an HTTP status code, and a stable machine-readable
// code so handlers can map service failures to responses without string matching.
package errors

import (
	"fmt"
	"net/http"

	"github.com/cashback-id/internal/types"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents malformed request input (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategoryValidation represents validation errors
	CategoryValidation ErrorCategory = "validation"
	// CategoryConflict represents allocation conflicts
	CategoryConflict ErrorCategory = "conflict"
	// CategoryNotFound represents not found errors
	CategoryNotFound ErrorCategory = "not_found"
	// CategoryCollaborator represents failures of an external collaborator
	CategoryCollaborator ErrorCategory = "collaborator"
	// CategorySystem represents internal errors (5xx)
	CategorySystem ErrorCategory = "system"
)

// Stable error codes surfaced to API clients.
const (
	CodeInvalidOwnerKey    = "INVALID_OWNER_KEY"
	CodeInvalidLabel       = "INVALID_LABEL"
	CodeInvalidParameter   = "INVALID_PARAMETER"
	CodeLabelTaken         = "LABEL_TAKEN"
	CodeNotClaimed         = "NOT_CLAIMED"
	CodeNotFound           = "NOT_FOUND"
	CodeNoPreferences      = "NO_PREFERENCES"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// ToServiceError converts to a ServiceError
func (e *CategorizedError) ToServiceError() *types.ServiceError {
	return &types.ServiceError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// User Input Errors (4xx)

// NewInvalidOwnerKeyError creates an invalid owner key error
func NewInvalidOwnerKeyError(reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidOwnerKey,
		Message:    reason,
	}
}

// NewInvalidLabelError creates an invalid label error
func NewInvalidLabelError(reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidLabel,
		Message:    reason,
	}
}

// NewInvalidParameterError creates an invalid parameter error
func NewInvalidParameterError(param string, reason string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryValidation,
		StatusCode: http.StatusBadRequest,
		Code:       CodeInvalidParameter,
		Message:    fmt.Sprintf("invalid parameter '%s': %s", param, reason),
		Details: map[string]interface{}{
			"parameter": param,
			"reason":    reason,
		},
	}
}

// Allocation conflicts

// NewLabelTakenError signals the caller should retry with a different label,
// not that the request shape was wrong.
func NewLabelTakenError(label string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       CodeLabelTaken,
		Message:    "label not available (taken or invalid), try another",
		Details: map[string]interface{}{
			"label":  label,
			"reason": "taken",
		},
	}
}

// NewLabelTooShortError keeps the conflict status and code but tells the
// caller the label failed the minimum length rather than being held by
// someone else.
func NewLabelTooShortError(label string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       CodeLabelTaken,
		Message:    "label must be at least 3 characters after normalization",
		Details: map[string]interface{}{
			"label":  label,
			"reason": "too_short",
		},
	}
}

// Not found

// NewNotClaimedError creates an error for operations on an unclaimed name
func NewNotClaimedError(target string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       CodeNotClaimed,
		Message:    fmt.Sprintf("no subdomain claimed for %s", target),
		Details: map[string]interface{}{
			"target": target,
		},
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(resource string, id string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found: %s", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewNoPreferencesError distinguishes "allocated but never configured" from
// "does not exist"; clients must be able to tell the two apart.
func NewNoPreferencesError(fullName string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryNotFound,
		StatusCode: http.StatusNotFound,
		Code:       CodeNoPreferences,
		Message:    fmt.Sprintf("no preferences set for %s", fullName),
		Details: map[string]interface{}{
			"fullName": fullName,
		},
	}
}

// Collaborator failures

// NewRegistrationFailedError wraps an on-chain registration failure. The
// allocation it accompanied is still valid; callers retry registration later.
func NewRegistrationFailedError(fullName string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryCollaborator,
		StatusCode: http.StatusBadGateway,
		Code:       CodeRegistrationFailed,
		Message:    "on-chain registration failed",
		Cause:      cause,
		Details: map[string]interface{}{
			"fullName": fullName,
		},
	}
}

// System Errors (5xx)

// NewInternalError creates an internal server error
func NewInternalError(message string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategorySystem,
		StatusCode: http.StatusInternalServerError,
		Code:       CodeInternalError,
		Message:    message,
		Cause:      cause,
	}
}
