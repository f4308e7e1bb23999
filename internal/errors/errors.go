package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrPatientNotFound is returned when no patient record has the requested id.
	ErrPatientNotFound = errors.New("patient not found")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserAlreadyExists is returned when registering a username that is taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrTransport is returned when an SMS or mail transport fails to connect, authenticate or send.
	ErrTransport = errors.New("notification transport error")
	// ErrRender is returned when a report document cannot be generated.
	ErrRender = errors.New("report rendering failed")
	// ErrPersistence is returned when the store is unavailable.
	ErrPersistence = errors.New("persistence error")
)

// MsgStorageUnavailable replaces store error details in responses.
const MsgStorageUnavailable = "storage unavailable"

// ErrorResponse is the body of every failed API response.
type ErrorResponse struct {
	Error string `json:"error"`
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
	return ErrorResponse{Error: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Transport and render
// messages keep the wrapped detail; store errors are reduced to a fixed message.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrPatientNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrPersistence):
		return NewHTTPError(http.StatusInternalServerError, MsgStorageUnavailable)
	case errors.Is(err, ErrTransport), errors.Is(err, ErrRender):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
