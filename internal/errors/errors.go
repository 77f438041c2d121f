package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrExpired is returned when a share's expiry has passed.
	ErrExpired = errors.New("invite link has expired")
	// ErrLimitReached is returned when a share has no clones left.
	ErrLimitReached = errors.New("maximum number of clones reached")
	// ErrSelfClone is returned when the owner tries to clone their own share.
	ErrSelfClone = errors.New("cannot clone your own share")
	// ErrEmptyContent is returned when there is nothing to share.
	ErrEmptyContent = errors.New("no templates or resources to share")
	// ErrCannotDeleteDefault is returned when deleting the default version.
	ErrCannotDeleteDefault = errors.New("cannot delete the default version")
	// ErrUnauthorized is returned when the caller may not act on a resource.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrUserAlreadyExists is returned when registering an email twice.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports an absent share, user, version or item.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// ExistingData summarizes what a clone target already owns.
type ExistingData struct {
	Templates     bool  `json:"templates"`
	JTBD          bool  `json:"jtbd"`
	TemplateCount int64 `json:"templateCount"`
	CategoryCount int64 `json:"categoryCount"`
}

// RequiresConfirmationError is a deferred decision, not a failure: the
// target already has content and the caller did not confirm the clone.
type RequiresConfirmationError struct {
	Existing ExistingData
}

func (e *RequiresConfirmationError) Error() string {
	return "You already have existing templates and resource data. Cloning will add the shared content to your existing data."
}

// StoreError wraps an unexpected persistence failure.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Store wraps err as a StoreError for op. A nil err stays nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// ConfirmationResponse is returned with HTTP 200 when a clone needs confirmation.
type ConfirmationResponse struct {
	Success              bool         `json:"success"`
	RequiresConfirmation bool         `json:"requiresConfirmation"`
	Message              string       `json:"message"`
	ExistingData         ExistingData `json:"existingData"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
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

// ToResponse converts an HTTPError to the failure envelope.
func (e *HTTPError) ToResponse() Response {
	return Response{
		Success: false,
		Error:   e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		validationErr *ValidationError
		notFoundErr   *NotFoundError
	)

	switch {
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.As(err, &notFoundErr):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrExpired):
		return NewHTTPError(http.StatusGone, err.Error(), "EXPIRED")
	case errors.Is(err, ErrLimitReached):
		return NewHTTPError(http.StatusGone, err.Error(), "LIMIT_REACHED")
	case errors.Is(err, ErrSelfClone):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "SELF_CLONE")
	case errors.Is(err, ErrEmptyContent):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMPTY_CONTENT")
	case errors.Is(err, ErrCannotDeleteDefault):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "CANNOT_DELETE_DEFAULT")
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "UNAUTHORIZED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
