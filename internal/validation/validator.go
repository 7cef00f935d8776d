package validation

import (
	"fmt"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator shared by the handlers.
func New() *validatorv10.Validate {
	return validatorv10.New(validatorv10.WithRequiredStructEnabled())
}

// Describe flattens validator errors into a field->reason map suitable
// for an error response body.
func Describe(err error) map[string]string {
	fieldErrs, ok := err.(validatorv10.ValidationErrors)
	if !ok {
		return map[string]string{"request": err.Error()}
	}

	out := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			out[name] = "is required"
		case "min":
			out[name] = fmt.Sprintf("must contain at least %s entries", fe.Param())
		case "gte":
			out[name] = fmt.Sprintf("must be >= %s", fe.Param())
		default:
			out[name] = fmt.Sprintf("failed %s validation", fe.Tag())
		}
	}
	return out
}
