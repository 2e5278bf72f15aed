package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/shared"
	log "github.com/sirupsen/logrus"
)

// ErrorHandler renders handler errors. Domain errors map onto HTTP statuses; anything
// unrecognised is logged and reported as a 500.
func ErrorHandler(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			logError(c, err)
		}
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	if appErr := domainError(err); appErr != nil {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	logError(c, err)
	return shared.ResponseInternalError(c, err)
}

func domainError(err error) *shared.AppError {
	var appErr *shared.AppError
	switch {
	case errors.Is(err, shared.ErrCourseNotFound),
		errors.Is(err, shared.ErrModuleNotFound),
		errors.Is(err, shared.ErrLessonNotFound),
		errors.Is(err, shared.ErrHandleNotFound):
		appErr = shared.NewNotFoundError(err, err.Error())
	case errors.Is(err, shared.ErrHandleReleased):
		appErr = shared.NewGoneError(err, err.Error())
	case errors.Is(err, shared.ErrMalformedBackup):
		appErr = shared.NewBadRequestError(err, "Invalid backup file")
		appErr.Data = err.Error()
	case errors.Is(err, shared.ErrQuotaExceeded):
		appErr = shared.NewInsufficientStorageError(err, "Storage might be full")
		appErr.Data = err.Error()
	case errors.Is(err, shared.ErrStorageUnavailable):
		appErr = shared.NewServiceUnavailableError(err, "Local content storage unavailable")
	}
	return appErr
}

func logError(c *fiber.Ctx, err error) {
	log.WithFields(log.Fields{
		"method": c.Method(),
		"path":   c.Path(),
		"error":  err.Error(),
	}).Error("Request failed")
}

// parseBody decodes and validates a JSON request body.
func parseBody(c *fiber.Ctx, req dto.Validator) error {
	if err := c.BodyParser(req); err != nil {
		return shared.NewBadRequestError(err, "Invalid request")
	}
	if err := req.Validate(); err != nil {
		return shared.NewValidationError(err, dto.FormatValidationErrors(err))
	}
	return nil
}
