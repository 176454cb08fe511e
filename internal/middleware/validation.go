package middleware

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Report fields by their wire name so messages match the form labels
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateStruct validates a form payload against its validation tags
func ValidateStruct(v interface{}) error {
	return validate.Struct(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts validator errors to a readable format
func FormatValidationErrors(err error) []ValidationError {
	var formatted []ValidationError

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			formatted = append(formatted, ValidationError{
				Field:   e.Field(),
				Message: getErrorMessage(e),
			})
		}
	}

	return formatted
}

// FirstValidationMessage returns the message of the first failing field,
// which is what a form page shows as its error toast.
func FirstValidationMessage(err error) string {
	if errs := FormatValidationErrors(err); len(errs) > 0 {
		return errs[0].Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func getErrorMessage(e validator.FieldError) string {
	label := humanize(e.Field())

	switch e.Tag() {
	case "required":
		return "Please enter " + strings.ToLower(label)
	case "email":
		return "Please enter a valid email address"
	case "numeric":
		return label + " must contain digits only"
	case "len":
		return label + " must be exactly " + e.Param() + " digits"
	case "min":
		return label + " must be at least " + e.Param() + " characters"
	case "max":
		return label + " must be at most " + e.Param() + " characters"
	case "gte":
		return label + " must be greater than or equal to " + e.Param()
	case "lte":
		return label + " must be less than or equal to " + e.Param()
	case "gt":
		return label + " must be greater than " + e.Param()
	case "oneof":
		return label + " must be one of: " + e.Param()
	default:
		return label + " is invalid"
	}
}

// humanize turns a wire name like "newPassword" into "New password".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteRune(' ')
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
