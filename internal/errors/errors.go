package errors

import (
	"errors"
	"net/http"

	"taskmanager/internal/access"
	"taskmanager/internal/auth"
	"taskmanager/internal/model"
	"taskmanager/internal/upload"
)

var (
	// ErrNotFound is returned when a task, user or document does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthenticated is returned when a request carries no usable identity.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserAlreadyExists is returned when registering a taken email.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrInvalidRefreshToken is returned when a refresh token is unknown or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
	// ErrValidation is returned for malformed request input.
	ErrValidation = errors.New("invalid request")
)

// Codes carried in ErrorResponse.Code.
const (
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeForbidden           = "FORBIDDEN"
	CodeSelfDemotion        = "SELF_DEMOTION_FORBIDDEN"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidRole         = "INVALID_ROLE"
	CodeInvalidUpload       = "INVALID_UPLOAD"
	CodeCeilingReached      = "CEILING_REACHED"
	CodeNotFound            = "NOT_FOUND"
	CodeUserAlreadyExists   = "USER_ALREADY_EXISTS"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
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

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything unrecognised
// becomes an opaque 500.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, ErrUnauthenticated.Error(), CodeUnauthenticated)
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), CodeInvalidCredentials)
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidRefreshToken.Error(), CodeInvalidRefreshToken)
	case errors.Is(err, access.ErrSelfDemotion):
		return NewHTTPError(http.StatusForbidden, access.ErrSelfDemotion.Error(), CodeSelfDemotion)
	case errors.Is(err, access.ErrForbidden):
		return NewHTTPError(http.StatusForbidden, access.ErrForbidden.Error(), CodeForbidden)
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, ErrNotFound.Error(), CodeNotFound)
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), CodeUserAlreadyExists)
	case errors.Is(err, model.ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, model.ErrInvalidRole.Error(), CodeInvalidRole)
	case errors.Is(err, upload.ErrCeilingReached):
		return NewHTTPError(http.StatusBadRequest, err.Error(), CodeCeilingReached)
	case isUploadError(err):
		return NewHTTPError(http.StatusBadRequest, err.Error(), CodeInvalidUpload)
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), CodeValidation)
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", CodeInternal)
	}
}

func isUploadError(err error) bool {
	for _, target := range []error{
		upload.ErrEmptyBatch,
		upload.ErrBatchTooLarge,
		upload.ErrNotPDF,
		upload.ErrEmptyFile,
		upload.ErrInvalidFileName,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
