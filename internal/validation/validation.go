// Package validation holds the request validator shared by the HTTP layers.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// New returns a validator that reports fields by their json names.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Details flattens validation errors into one human readable line.
func Details(err error) string {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	var details strings.Builder
	for _, e := range errs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch e.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", e.Field()))
		case "len":
			if e.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be %s characters", e.Field(), e.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must have exactly %s entries", e.Field(), e.Param()))
			}
		case "min":
			if e.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at least %s", e.Field(), e.Param()))
			}
		case "max":
			if e.Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be at most %s", e.Field(), e.Param()))
			}
		case "unique":
			details.WriteString(fmt.Sprintf("%s must not repeat values", e.Field()))
		case "email":
			details.WriteString(fmt.Sprintf("%s must be a valid email", e.Field()))
		case "color":
			details.WriteString(fmt.Sprintf("%s: %q is not a palette color", e.Field(), e.Value()))
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", e.Field(), e.Tag()))
		}
	}
	return details.String()
}
