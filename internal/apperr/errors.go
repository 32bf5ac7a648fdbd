// Package apperr defines the error kinds that cross the orchestration boundary.
// Anything that is neither ErrNotFound nor a *ValidationError is unexpected.
package apperr

import (
	"errors"
	"slices"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var ErrNotFound = errors.New("not found")

// FieldError is one failed rule.
type FieldError struct {
	Field   string `json:"name"`
	Message string `json:"description"`
}

// ValidationError reports malformed input. Fields keep rule order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Invalid returns a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// FromValidation converts ozzo validation errors into a *ValidationError.
// Fields listed in order come first in that order; any others follow sorted
// by name. Errors that are not validation.Errors pass through unchanged.
func FromValidation(err error, order ...string) error {
	if err == nil {
		return nil
	}

	var errs validation.Errors
	if !errors.As(err, &errs) {
		return err
	}
	if errs.Filter() == nil {
		return nil
	}

	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := slices.Index(order, names[i]), slices.Index(order, names[j])
		switch {
		case pi >= 0 && pj >= 0:
			return pi < pj
		case pi >= 0:
			return true
		case pj >= 0:
			return false
		}
		return names[i] < names[j]
	})

	out := &ValidationError{Fields: make([]FieldError, 0, len(names))}
	for _, name := range names {
		if errs[name] == nil {
			continue
		}
		out.Fields = append(out.Fields, FieldError{Field: name, Message: errs[name].Error()})
	}
	return out
}
