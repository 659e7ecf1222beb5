package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/gym-dashboard/internal/models"
	appErrors "github.com/noah-isme/gym-dashboard/pkg/errors"
)

// NewValidator returns a validator reporting JSON field names and carrying the
// cross-field rules of the dashboard's records.
func NewValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterStructValidation(validateGymHours, models.GymHours{})
	return validate
}

// validateGymHours requires both clock times and closing after opening unless the day is closed.
func validateGymHours(sl validator.StructLevel) {
	hours := sl.Current().Interface().(models.GymHours)
	if hours.Closed {
		return
	}
	opens, closes, err := hours.OpenWindow()
	if err != nil {
		if hours.OpensAt == "" {
			sl.ReportError(hours.OpensAt, "opens_at", "OpensAt", "required", "")
		}
		if hours.ClosesAt == "" {
			sl.ReportError(hours.ClosesAt, "closes_at", "ClosesAt", "required", "")
		}
		if hours.OpensAt != "" && hours.ClosesAt != "" {
			sl.ReportError(hours.OpensAt, "opens_at", "OpensAt", "clock", "")
		}
		return
	}
	if !closes.After(opens) {
		sl.ReportError(hours.ClosesAt, "closes_at", "ClosesAt", "gtfield", "opens_at")
	}
}

// validationError runs the struct rules and converts failures into field errors.
func validationError(validate *validator.Validate, record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Kind, appErrors.ErrValidation.Status, "invalid payload")
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	out := appErrors.WithFields(fields)
	out.Err = err
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gtfield":
		return fmt.Sprintf("must be after %s", jsonName(fe.Param()))
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "clock":
		return "must use the HH:MM format"
	default:
		return "is invalid"
	}
}

// jsonName maps a Go field name used as a validator param to its JSON spelling.
func jsonName(goName string) string {
	switch goName {
	case "StartsAt":
		return "starts_at"
	case "OpensAt":
		return "opens_at"
	}
	return goName
}
