package errors

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidSemesterFile the semester data is not a valid lecture list.
var ErrInvalidSemesterFile = errors.New("invalid semester file")

// ErrValidation an entity failed field validation.
var ErrValidation = errors.New("validation failed")

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects the field errors of one entity.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

// NewValidationError sorts fields by name so messages are stable.
func NewValidationError(entity string, fields ...FieldError) *ValidationError {
	sort.Slice(fields, func(i, j int) bool { return fields[i].Field < fields[j].Field })
	return &ValidationError{Entity: entity, Fields: fields}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "invalid " + e.Entity + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
