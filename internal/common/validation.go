package common

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"
)

// ValidationError represents validation failures
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field '%s' with value '%v': %s", e.Field, e.Value, e.Message)
}

// Validator collects field errors across several checks.
type Validator struct {
	errors []ValidationError
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		errors: make([]ValidationError, 0),
	}
}

// Field validates a field and collects errors
func (v *Validator) Field(fieldName string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(fieldName, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

// HasErrors returns true if there are validation errors
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns all validation errors
func (v *Validator) Errors() []ValidationError {
	return v.errors
}

// Err returns the collected errors as an ErrInvalidInput AppError, or nil.
func (v *Validator) Err() error {
	if !v.HasErrors() {
		return nil
	}
	return NewAppError(CodeInput, v.ErrorMessage(), ErrInvalidInput)
}

// ErrorMessage returns a combined error message as string
func (v *Validator) ErrorMessage() string {
	if !v.HasErrors() {
		return ""
	}

	messages := make([]string, 0, len(v.errors))
	for _, err := range v.errors {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

// ValidationRule represents a single validation rule
type ValidationRule func(fieldName string, value any) *ValidationError

// Required rejects nil and blank strings.
func Required(fieldName string, value any) *ValidationError {
	if value == nil {
		return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
	}

	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return &ValidationError{Field: fieldName, Value: value, Message: "is required"}
		}
	case []byte:
		if len(v) == 0 {
			return &ValidationError{Field: fieldName, Value: "<empty>", Message: "is required"}
		}
	}
	return nil
}

// MaxLength limits a string's rune count.
func MaxLength(max int) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		str, ok := value.(string)
		if !ok {
			return nil
		}
		if utf8.RuneCountInString(str) > max {
			return &ValidationError{
				Field:   fieldName,
				Value:   truncateValue(str),
				Message: fmt.Sprintf("must be at most %d characters", max),
			}
		}
		return nil
	}
}

// OneOf restricts a string to a fixed set.
func OneOf(allowed ...string) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		str, _ := value.(string)
		if slices.Contains(allowed, str) {
			return nil
		}
		return &ValidationError{
			Field:   fieldName,
			Value:   value,
			Message: "must be one of " + strings.Join(allowed, ", "),
		}
	}
}

// Between bounds a numeric value, inclusive.
func Between(lo, hi float64) ValidationRule {
	return func(fieldName string, value any) *ValidationError {
		f, ok := value.(float64)
		if !ok {
			return &ValidationError{Field: fieldName, Value: value, Message: "must be a number"}
		}
		if f < lo || f > hi {
			return &ValidationError{
				Field:   fieldName,
				Value:   value,
				Message: fmt.Sprintf("must be between %g and %g", lo, hi),
			}
		}
		return nil
	}
}

func truncateValue(s string) string {
	if len(s) <= 32 {
		return s
	}
	return s[:31] + "…"
}
