package shared

import (
	"errors"
	"net/http"
)

// Storage failures shared by every blob driver.
var (
	ErrStorageUnavailable = errors.New("content storage unavailable")
	ErrQuotaExceeded      = errors.New("content storage quota exceeded")
	ErrWriteFailure       = errors.New("content storage write failed")
)

var (
	ErrMalformedBackup = errors.New("malformed backup file")

	ErrCourseNotFound = errors.New("course not found")
	ErrModuleNotFound = errors.New("module not found")
	ErrLessonNotFound = errors.New("lesson not found")

	ErrHandleNotFound = errors.New("content handle not found")
	ErrHandleReleased = errors.New("content handle already released")
)

// AppError carries the HTTP status and message a failure should be rendered with.
type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newAppError(statusCode int, err error, message string) *AppError {
	return &AppError{StatusCode: statusCode, Message: message, Err: err}
}

func NewBadRequestError(err error, message string) *AppError {
	return newAppError(http.StatusBadRequest, err, message)
}

func NewNotFoundError(err error, message string) *AppError {
	return newAppError(http.StatusNotFound, err, message)
}

func NewForbiddenError(err error, message string) *AppError {
	return newAppError(http.StatusForbidden, err, message)
}

func NewGoneError(err error, message string) *AppError {
	return newAppError(http.StatusGone, err, message)
}

func NewServiceUnavailableError(err error, message string) *AppError {
	return newAppError(http.StatusServiceUnavailable, err, message)
}

func NewInsufficientStorageError(err error, message string) *AppError {
	return newAppError(http.StatusInsufficientStorage, err, message)
}

// NewValidationError wraps validator output so the field errors reach the client.
func NewValidationError(err error, data interface{}) *AppError {
	appErr := newAppError(http.StatusBadRequest, err, "Validation failed")
	appErr.Data = data
	return appErr
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
