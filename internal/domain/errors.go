package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrQuery      = errors.New("query error")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// QueryError reports a malformed structured query. Exactly one of Field or
// Selector names the offending part.
type QueryError struct {
	Field    string
	Selector string
	Message  string
}

func (e *QueryError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("query: field %q: %s", e.Field, e.Message)
	case e.Selector != "":
		return fmt.Sprintf("query: selector %q: %s", e.Selector, e.Message)
	default:
		return "query: " + e.Message
	}
}

func (e *QueryError) Unwrap() error { return ErrQuery }

// NewUnknownFieldError reports a requested field that is not part of the record schema.
func NewUnknownFieldError(field string) *QueryError {
	return &QueryError{Field: field, Message: "unknown field"}
}

// NewUnknownSelectorError reports a record selector the resolver does not support.
func NewUnknownSelectorError(selector string) *QueryError {
	return &QueryError{Selector: selector, Message: "unknown selector"}
}
