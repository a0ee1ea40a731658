package validator

import (
	"reflect"
	"strings"

	ierr "github.com/flexprice/lifecycle/internal/errors"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// NewValidator builds the process wide validator. Field errors are reported
// under the json name of the field, the name a producer of the payload knows.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	validate = v
	return validate
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}

// ValidateRequest checks a decoded payload (a usage batch envelope, a config
// section) against its struct tags. Failures are marked ErrValidation and carry
// one reportable detail per offending field, keyed by its namespace
// (records[2].message_id).
func ValidateRequest(req interface{}) error {
	if validate == nil {
		return ierr.NewError("validator not initialized").
			WithHint("Validator must be initialized before using it").
			Mark(ierr.ErrSystem)
	}

	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	details := make(map[string]any)
	var fieldErrs validator.ValidationErrors
	if ierr.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details[fieldPath(fe)] = fe.Tag()
		}
	}
	return ierr.WithError(err).
		WithHintf("Payload failed validation on %d field(s)", len(details)).
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}

// fieldPath drops the root struct name from the namespace
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}
