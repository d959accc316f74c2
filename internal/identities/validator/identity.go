package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"akoben/pkg/logger"
	"akoben/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type IdentityValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewIdentityValidator(log *logger.Logger) *IdentityValidator {
	v := validator.New()

	log.Info("Identity validator initialized successfully")

	return &IdentityValidator{
		validate: v,
		logger:   log,
	}
}

func (v *IdentityValidator) Validate(input *model.IdentityInput) error {
	var validationErrors ValidationErrors

	if err := v.validate.Struct(input); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		validationErrors = v.translateValidationErrors(validationErrs)
	}

	if input.DateOfBirth != nil && input.DateOfBirth.After(time.Now()) {
		validationErrors = append(validationErrors, ValidationError{
			Field:   "dob",
			Message: "date of birth cannot be in the future",
		})
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}
	return nil
}

func (v *IdentityValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
