package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrUnauthorized indicates a missing or invalid session.
var ErrUnauthorized = errors.New("unauthorized")

// Authentication taxonomy. Every error returned by the auth orchestrator matches
// exactly one of these through errors.Is.
var (
	// ErrInvalidIdentity means the identity carried no usable email. It is a caller bug.
	ErrInvalidIdentity = errors.New("identity has no email")
	// ErrUserNotFound means no user exists for the presented email.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoPasswordSet means the user exists but was created without a password.
	ErrNoPasswordSet = errors.New("user has no password set")
	// ErrInvalidPassword means the presented password does not match.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrDuplicateEmail is returned by the credential store when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrUseManualSignIn means passwordless sign-in could not verify an existing user.
	ErrUseManualSignIn = errors.New("passwordless sign-in unavailable for this account")
	// ErrLoginFailedAfterRegistration is terminal after the bounded retry gives up.
	ErrLoginFailedAfterRegistration = errors.New("login failed after registration")
	// ErrInvalidLoginLink means a one-time login link is unknown, used or expired.
	ErrInvalidLoginLink = errors.New("login link is invalid or expired")
	// ErrProviderNotConfigured means the requested sign-in provider is not enabled.
	ErrProviderNotConfigured = errors.New("sign-in provider not configured")
	// ErrAuthUnavailable wraps storage and network failures.
	ErrAuthUnavailable = errors.New("authentication temporarily unavailable")
)

// Unavailable wraps err so that it matches both ErrAuthUnavailable and the cause.
func Unavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrAuthUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
}

// AppError is the error payload returned to HTTP clients.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
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

// NewAppError creates an AppError with the given status code.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, nil)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, nil)
}

func NewNotFoundError(message string) *AppError {
	return NewAppError(http.StatusNotFound, message, nil)
}

func NewConflictError(message string) *AppError {
	return NewAppError(http.StatusConflict, message, nil)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

func NewServiceUnavailableError(message string) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, nil)
}

func NewGatewayTimeoutError(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, nil)
}

// ToAppError maps err to the short, client-safe message for its taxonomy entry.
// Unknown errors become a generic 500 so raw storage details never leak.
func ToAppError(err error) *AppError {
	var appErr *AppError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidIdentity):
		return NewAppError(http.StatusBadRequest, "A valid email address is required.", err)
	case errors.Is(err, ErrValidation):
		return NewAppError(http.StatusBadRequest, "Invalid request.", err)
	case errors.Is(err, ErrUserNotFound):
		return NewAppError(http.StatusUnauthorized, "No account found for this email.", err)
	case errors.Is(err, ErrNoPasswordSet):
		return NewAppError(http.StatusUnauthorized, "This account signs in with a social provider or login link.", err)
	case errors.Is(err, ErrInvalidPassword):
		return NewAppError(http.StatusUnauthorized, "Invalid email or password.", err)
	case errors.Is(err, ErrDuplicateEmail):
		return NewAppError(http.StatusConflict, "An account with this email already exists.", err)
	case errors.Is(err, ErrUseManualSignIn):
		return NewAppError(http.StatusUnauthorized, "Please use Sign In to enter your password.", err)
	case errors.Is(err, ErrInvalidLoginLink):
		return NewAppError(http.StatusUnauthorized, "This login link is invalid or has expired.", err)
	case errors.Is(err, ErrLoginFailedAfterRegistration):
		return NewAppError(http.StatusServiceUnavailable, "Your account was created but sign-in failed. Please sign in manually.", err)
	case errors.Is(err, ErrProviderNotConfigured):
		return NewAppError(http.StatusNotFound, "This sign-in provider is not available.", err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, "Resource not found.", err)
	case errors.Is(err, ErrAuthUnavailable):
		return NewAppError(http.StatusServiceUnavailable, "Authentication is temporarily unavailable. Please try again.", err)
	case errors.As(err, &appErr):
		return appErr
	default:
		return NewAppError(http.StatusInternalServerError, "Something went wrong. Please try again.", err)
	}
}
