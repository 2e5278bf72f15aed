package services

import "github.com/lac-hong-legacy/learnhub/shared"

var (
	ErrStorageUnavailable = shared.ErrStorageUnavailable
	ErrQuotaExceeded      = shared.ErrQuotaExceeded
	ErrWriteFailure       = shared.ErrWriteFailure
	ErrMalformedBackup    = shared.ErrMalformedBackup

	ErrCourseNotFound = shared.ErrCourseNotFound
	ErrModuleNotFound = shared.ErrModuleNotFound
	ErrLessonNotFound = shared.ErrLessonNotFound

	ErrHandleNotFound = shared.ErrHandleNotFound
	ErrHandleReleased = shared.ErrHandleReleased
)
