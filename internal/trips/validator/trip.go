package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"akoben/pkg/logger"
	"akoben/pkg/model"

	"github.com/go-playground/validator/v10"
)

var reImageURL = regexp.MustCompile(`(?i)^https?://.+\.(?:png|jpg|jpeg|gif|webp)$`)

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

type TripValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTripValidator(log *logger.Logger) *TripValidator {
	v := validator.New()

	if err := v.RegisterValidation("image_url", validateImageURL); err != nil {
		log.Fatal("Failed to register 'image_url' validator", "error", err)
	}

	log.Info("Trip validator initialized successfully")

	return &TripValidator{
		validate: v,
		logger:   log,
	}
}

func validateImageURL(fl validator.FieldLevel) bool {
	return reImageURL.MatchString(strings.TrimSpace(fl.Field().String()))
}

func (v *TripValidator) Validate(trip *model.Trip) error {
	if err := v.check(trip); err != nil {
		return err
	}

	var errs ValidationErrors
	seen := make(map[string]struct{}, len(trip.Schedule.Occurrences))
	for _, occ := range trip.Schedule.Occurrences {
		if _, dup := seen[occ.ID]; dup {
			errs = append(errs, ValidationError{Field: "dates", Message: fmt.Sprintf("duplicate occurrence id %s", occ.ID)})
		}
		seen[occ.ID] = struct{}{}
		if occ.Capacity < 1 {
			errs = append(errs, ValidationError{Field: "capacity", Message: "capacity must be at least 1"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *TripValidator) ValidateUpdate(update *model.TripUpdate) error {
	return v.check(update)
}

func (v *TripValidator) ValidateOccurrence(input *model.OccurrenceInput) error {
	return v.check(input)
}

func (v *TripValidator) ValidateDateRequest(input *model.DateRequestInput) error {
	if err := v.check(input); err != nil {
		return err
	}
	switch {
	case input.StartDate.IsZero():
		return ValidationErrors{{Field: "StartDate", Message: "StartDate is required"}}
	case input.EndDate.IsZero():
		return ValidationErrors{{Field: "EndDate", Message: "EndDate is required"}}
	case input.EndDate.Before(input.StartDate.Time):
		return ValidationErrors{{Field: "EndDate", Message: "EndDate must not be before StartDate"}}
	}
	return nil
}

func (v *TripValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *TripValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param())
		case "gtfield":
			message = fmt.Sprintf("%s must be after %s", err.Field(), err.Param())
		case "gtefield":
			message = fmt.Sprintf("%s must not be less than %s", err.Field(), err.Param())
		case "image_url":
			message = fmt.Sprintf("%s is not a valid image URL (png, jpg, jpeg, gif or webp)", err.Value())
		case "url":
			message = fmt.Sprintf("%s must be a valid URL", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
