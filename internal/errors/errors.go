package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrAlreadyRegistered is returned when the email already has an account.
	ErrAlreadyRegistered = errors.New("email already registered")
	// ErrUserNotFound is returned when no account exists for the email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidOTP is returned when the submitted code is wrong, expired or already used.
	ErrInvalidOTP = errors.New("invalid OTP")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotVerified is returned when credentials match but the email was never verified.
	ErrNotVerified = errors.New("please verify your email first")
	// ErrSchemeNotFound is returned when the upstream API has no scheme for the code.
	ErrSchemeNotFound = errors.New("mutual fund not found")
	// ErrInvalidUnits is returned when the requested unit count is not positive.
	ErrInvalidUnits = errors.New("units must be a positive integer")
	// ErrQuotaExceeded is returned when the upstream API reports a rate limit.
	ErrQuotaExceeded = errors.New("monthly API quota exceeded")
	// ErrUpstreamUnavailable covers every other upstream API failure.
	ErrUpstreamUnavailable = errors.New("error occurred while fetching data")
)

// ErrorResponse is the body for every error crossing the HTTP boundary.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Code:    e.StatusCode,
		Message: e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unknown is
// reported as a generic 500 so internals never leak to the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrAlreadyRegistered),
		errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrNotVerified),
		errors.Is(err, ErrInvalidUnits):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSchemeNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrQuotaExceeded):
		return NewHTTPError(http.StatusTooManyRequests, ErrQuotaExceeded.Error())
	case errors.Is(err, ErrUpstreamUnavailable):
		return NewHTTPError(http.StatusInternalServerError, ErrUpstreamUnavailable.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
