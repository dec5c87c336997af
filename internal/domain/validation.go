package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = NewValidator()

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// NewValidator returns a validator that reports JSON field names and knows
// the claim_status and iso8601 rules.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("claim_status", func(fl validator.FieldLevel) bool {
		return ClaimStatus(fl.Field().String()).Known()
	})
	_ = v.RegisterValidation("iso8601", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, layout := range isoLayouts {
			if _, err := time.Parse(layout, s); err == nil {
				return true
			}
		}
		return false
	})
	return v
}

// Validate checks an inbound event and returns a *ValidationError listing
// every violation, or nil.
func Validate(e Event) error {
	if e == nil {
		return &ValidationError{Violations: []Violation{{Field: "event", Rule: "required", Message: "event is required"}}}
	}
	return ViolationsFrom(validate.Struct(e))
}

// ViolationsFrom converts validator and JSON decoding errors into a *ValidationError.
// Other errors are returned unchanged.
func ViolationsFrom(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		out := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
		for _, fe := range fieldErrs {
			out.Violations = append(out.Violations, Violation{
				Field:   fieldPath(fe.Namespace()),
				Rule:    fe.Tag(),
				Message: describe(fe),
			})
		}
		return out
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "payload"
		}
		return &ValidationError{Violations: []Violation{{
			Field:   field,
			Rule:    "type",
			Message: fmt.Sprintf("%s has the wrong type (%s)", field, typeErr.Value),
		}}}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &ValidationError{Violations: []Violation{{
			Field:   "payload",
			Rule:    "json",
			Message: syntaxErr.Error(),
		}}}
	}
	return err
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// fieldPath drops the top-level struct name: "StatusUpdate.sbi" -> "sbi".
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	field := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "uuid4":
		return field + " must be a version 4 UUID"
	case "numeric":
		return field + " must contain only digits"
	case "claim_status":
		return fmt.Sprintf("%s %q is not a recognised claim status", field, fe.Value())
	case "iso8601":
		return field + " must be an ISO-8601 date-time"
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
