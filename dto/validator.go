package dto

import (
	"github.com/go-playground/validator/v10"
	"github.com/lac-hong-legacy/learnhub/model"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("lesson_type", validateLessonType)
	validate.RegisterValidation("lesson_default", validateLessonDefault)
}

func GetValidator() *validator.Validate {
	return validate
}

func validateLessonType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.LessonTypeVideo, model.LessonTypePDF:
		return true
	}
	return false
}

func validateLessonDefault(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case model.LessonDefaultStatic, model.LessonDefaultDynamic:
		return true
	}
	return false
}

func FormatValidationErrors(err error) []ValidationError {
	var errors []ValidationError

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			var message string

			switch fieldError.Tag() {
			case "required":
				message = fieldError.Field() + " is required"
			case "min":
				message = fieldError.Field() + " must be at least " + fieldError.Param() + " characters"
			case "max":
				message = fieldError.Field() + " must be at most " + fieldError.Param() + " characters"
			case "len":
				message = fieldError.Field() + " must be exactly " + fieldError.Param() + " characters"
			case "gte":
				message = fieldError.Field() + " must be at least " + fieldError.Param()
			case "lesson_type":
				message = fieldError.Field() + " must be video or pdf"
			case "lesson_default":
				message = fieldError.Field() + " must be static or dynamic"
			case "url":
				message = fieldError.Field() + " must be a valid URL"
			case "oneof":
				message = fieldError.Field() + " must be one of: " + fieldError.Param()
			case "dive":
				message = fieldError.Field() + " contains invalid items"
			default:
				message = fieldError.Field() + " is invalid"
			}

			errors = append(errors, ValidationError{
				Field:   fieldError.Field(),
				Message: message,
			})
		}
	}

	return errors
}

type ValidationError struct {
	Field   string `json:"field" example:"type"`
	Message string `json:"message" example:"type must be video or pdf"`
}

type Validator interface {
	Validate() error
}
