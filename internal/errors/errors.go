package errors

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Kind classifies an application error for transport mapping.
type Kind string

const (
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindValidation      Kind = "VALIDATION_ERROR"
	KindConflict        Kind = "CONFLICT"
	KindUpstreamFailure Kind = "UPSTREAM_FAILURE"
	KindInternal        Kind = "INTERNAL_ERROR"
)

var (
	// ErrUnauthorized is returned when the caller has no valid session.
	ErrUnauthorized = New(KindUnauthorized, "unauthorized")
	// ErrForbidden is returned when the session lacks the required role.
	ErrForbidden = New(KindForbidden, "forbidden")
	// ErrCannotDeleteSelf is returned when a user tries to delete their own account.
	ErrCannotDeleteSelf = New(KindForbidden, "cannot delete own account")
	// ErrCannotChangeOwnRole is returned when self role changes are disabled.
	ErrCannotChangeOwnRole = New(KindForbidden, "cannot change own role")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = New(KindUnauthorized, "invalid username or password")
	// ErrRecipeNotFound is returned when a recipe id does not exist.
	ErrRecipeNotFound = New(KindNotFound, "recipe not found")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = New(KindNotFound, "user not found")
	// ErrCategoryNotFound is returned when a category id does not exist.
	ErrCategoryNotFound = New(KindNotFound, "category not found")
	// ErrPendingRecipeNotFound is returned when a moderation entry does not exist.
	ErrPendingRecipeNotFound = New(KindNotFound, "pending recipe not found")
	// ErrInvalidAction is returned for a moderation action other than approve/reject.
	ErrInvalidAction = New(KindValidation, "invalid action")
	// ErrAlreadyDecided is returned when a moderation entry is no longer PENDING.
	ErrAlreadyDecided = New(KindConflict, "pending recipe has already been decided")
	// ErrAIKeyMissing is returned when no AI provider credential is configured.
	ErrAIKeyMissing = New(KindValidation, "AI provider key not configured, add it in the admin dashboard")
)

// AppError is an error carrying a Kind and an optional diagnostic payload.
type AppError struct {
	Kind    Kind
	Message string
	// Details is surfaced to the client, e.g. raw upstream text.
	Details string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by kind and message so wrapped sentinels compare equal.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// New creates an AppError of the given kind.
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Validation creates a validation error.
func Validation(message string) *AppError {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *AppError {
	return New(KindConflict, message)
}

// NotFound creates a not-found error.
func NotFound(message string) *AppError {
	return New(KindNotFound, message)
}

// Upstream wraps a failure of an external provider. details is shown to the caller.
func Upstream(message, details string, err error) *AppError {
	return &AppError{Kind: KindUpstreamFailure, Message: message, Details: details, Err: err}
}

// Internal wraps an unexpected persistence or runtime failure.
func Internal(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// KindOf reports the kind of err, translating gorm errors. Unknown errors are internal.
func KindOf(err error) Kind {
	var appErr *AppError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &appErr):
		return appErr.Kind
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindConflict
	default:
		return KindInternal
	}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

var statusByKind = map[Kind]int{
	KindUnauthorized:    http.StatusUnauthorized,
	KindForbidden:       http.StatusForbidden,
	KindNotFound:        http.StatusNotFound,
	KindValidation:      http.StatusBadRequest,
	KindConflict:        http.StatusConflict,
	KindUpstreamFailure: http.StatusBadGateway,
	KindInternal:        http.StatusInternalServerError,
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		httpErr := NewHTTPError(statusByKind[appErr.Kind], appErr.Message, string(appErr.Kind))
		httpErr.Details = appErr.Details
		return httpErr
	}

	switch KindOf(err) {
	case KindNotFound:
		return NewHTTPError(http.StatusNotFound, "record not found", string(KindNotFound))
	case KindConflict:
		return NewHTTPError(http.StatusConflict, "record already exists", string(KindConflict))
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", string(KindInternal))
	}
}
