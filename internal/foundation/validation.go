// Package foundation holds the validator chain used by config loading.
package foundation

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// Validator checks one aspect of a value.
type Validator[T any] func(T) ValidationResult

// ValidationResult collects field failures. The zero value is not valid; use Valid().
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// FieldError is one failed check on a dotted config field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (fe FieldError) Error() string {
	if fe.Field == "" {
		return fe.Message
	}
	return fmt.Sprintf("field '%s': %s", fe.Field, fe.Message)
}

// Valid is a passing result.
func Valid() ValidationResult { return ValidationResult{Valid: true} }

// Invalid is a failing result carrying errs.
func Invalid(errs ...FieldError) ValidationResult {
	return ValidationResult{Errors: errs}
}

// NewValidationError builds a FieldError.
func NewValidationError(field, code, message string) FieldError {
	return FieldError{Field: field, Code: code, Message: message}
}

// Combine keeps the failures of both results in order.
func (vr ValidationResult) Combine(other ValidationResult) ValidationResult {
	if vr.Valid && other.Valid {
		return vr
	}
	return Invalid(append(append([]FieldError(nil), vr.Errors...), other.Errors...)...)
}

// ToError returns nil for a passing result, otherwise a validation error
// listing every failure. The failing field names are attached as context.
func (vr ValidationResult) ToError() error {
	if vr.Valid {
		return nil
	}
	msgs := make([]string, len(vr.Errors))
	fields := make([]string, 0, len(vr.Errors))
	for i, fe := range vr.Errors {
		msgs[i] = fe.Error()
		if fe.Field != "" {
			fields = append(fields, fe.Field)
		}
	}
	return errors.ValidationError(strings.Join(msgs, "; ")).
		WithContext("fields", fields).
		Build()
}

// ValidatorChain runs validators in order and reports every failure.
type ValidatorChain[T any] struct {
	validators []Validator[T]
}

// NewValidatorChain creates a chain.
func NewValidatorChain[T any](validators ...Validator[T]) *ValidatorChain[T] {
	return &ValidatorChain[T]{validators: validators}
}

// Validate runs the chain against value.
func (vc *ValidatorChain[T]) Validate(value T) ValidationResult {
	res := Valid()
	for _, v := range vc.validators {
		res = res.Combine(v(value))
	}
	return res
}

// OneOf accepts only the listed values.
func OneOf[T comparable](field string, allowed []T) Validator[T] {
	return func(value T) ValidationResult {
		for _, a := range allowed {
			if a == value {
				return Valid()
			}
		}
		return Invalid(NewValidationError(field, "one_of", fmt.Sprintf("must be one of %v, got %v", allowed, value)))
	}
}
