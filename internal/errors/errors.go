package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrLanguageNotFound is returned when a language is not found.
	ErrLanguageNotFound = errors.New("language not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email address already in use")
	// ErrSlugTaken is returned when a requested slug is already in use.
	ErrSlugTaken = errors.New("slug already in use")
	// ErrIdentityConflict is returned when slug resolution keeps colliding
	// after the retry ceiling.
	ErrIdentityConflict = errors.New("could not allocate a unique slug")
	// ErrLanguageRoleExists is returned when the (user, language, role)
	// association already exists.
	ErrLanguageRoleExists = errors.New("language association already exists")
	// ErrInvalidRole is returned when a role is neither learner nor teacher.
	ErrInvalidRole = errors.New("invalid language role")
	// ErrInvalidName is returned when a display name normalizes to an empty slug.
	ErrInvalidName = errors.New("name does not contain any usable characters")
	// ErrInvalidSlug is returned when a requested slug is malformed.
	ErrInvalidSlug = errors.New("malformed slug")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or revoked.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrForbidden is returned when the caller is not the owner nor an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrUnsupportedMediaType is returned for uploads with an unknown content type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrMissingUpload is returned when no staged upload file exists.
	ErrMissingUpload = errors.New("upload file is missing")
	// ErrSessionPersistence is returned when the refresh token could not be
	// durably stored; the login fails as a whole.
	ErrSessionPersistence = errors.New("could not persist session")
	// ErrStorageIO is returned on filesystem failures during an avatar commit.
	ErrStorageIO = errors.New("storage failure")
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

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrLanguageNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "LANGUAGE_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrSlugTaken):
		return NewHTTPError(http.StatusConflict, err.Error(), "SLUG_TAKEN")
	case errors.Is(err, ErrIdentityConflict):
		return NewHTTPError(http.StatusConflict, err.Error(), "IDENTITY_CONFLICT")
	case errors.Is(err, ErrLanguageRoleExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "LANGUAGE_ROLE_EXISTS")
	case errors.Is(err, ErrInvalidRole):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_ROLE")
	case errors.Is(err, ErrInvalidName):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_NAME")
	case errors.Is(err, ErrInvalidSlug):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_SLUG")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrInvalidRefreshToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_REFRESH_TOKEN")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrUnsupportedMediaType):
		return NewHTTPError(http.StatusUnsupportedMediaType, err.Error(), "UNSUPPORTED_MEDIA_TYPE")
	case errors.Is(err, ErrMissingUpload):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_UPLOAD")
	case errors.Is(err, ErrSessionPersistence):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "SESSION_PERSISTENCE_FAILED")
	case errors.Is(err, ErrStorageIO):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "STORAGE_IO_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
