package models

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/notesapi/internal/apperr"
)

type input interface {
	Validate() error
	fieldOrder() []string
}

// Check runs the rules of a request body. Failures come back as
// *apperr.ValidationError with fields in rule order.
func Check(in input) error {
	return apperr.FromValidation(in.Validate(), in.fieldOrder()...)
}

// notBlank rejects strings made only of whitespace. Empty strings are left
// to validation.Required.
func notBlank(msg string) validation.Rule {
	return validation.NewStringRuleWithError(
		func(s string) bool { return strings.TrimSpace(s) != "" },
		validation.NewError("validation_not_blank", msg),
	)
}
