// AngelaMos | 2026
// validation.go

package core

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewValidator returns a validator that reports fields by their JSON name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func ValidationViolations(err error) []FieldViolation {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldViolation{{Field: "", Message: err.Error()}}
	}

	out := make([]FieldViolation, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldViolation{
			Field:   fe.Field(),
			Message: violationMessage(fe),
		})
	}
	return out
}

func FormatValidationError(err error) string {
	violations := ValidationViolations(err)
	parts := make([]string, 0, len(violations))
	for _, v := range violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+" "+v.Message)
	}
	return strings.Join(parts, "; ")
}

// ValidationFailed writes a 400 carrying one entry per violated field.
func ValidationFailed(w http.ResponseWriter, err error) {
	JSONError(w, ValidationError(
		"invalid request data",
		ValidationViolations(err),
	))
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be a valid URL"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
