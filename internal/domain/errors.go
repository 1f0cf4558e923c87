package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy shared by every layer. Handlers translate these with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("vehicle unavailable, choose another")
	ErrInvalidState       = errors.New("invalid state")
	ErrValidation         = errors.New("validation failed")
	ErrTransactionFailure = errors.New("transaction failed, please retry")
)

var (
	ErrVehicleNotFound    = fmt.Errorf("vehicle %w", ErrNotFound)
	ErrPlanNotFound       = fmt.Errorf("plan %w", ErrNotFound)
	ErrRiderNotFound      = fmt.Errorf("rider %w", ErrNotFound)
	ErrRentalNotFound     = fmt.Errorf("rental %w", ErrNotFound)
	ErrPaymentNotFound    = fmt.Errorf("payment %w", ErrNotFound)
	ErrInspectionNotFound = fmt.Errorf("return inspection %w", ErrNotFound)
	ErrStaffNotFound      = fmt.Errorf("staff %w", ErrNotFound)
	ErrItemNotFound       = fmt.Errorf("inventory item %w", ErrNotFound)
)

// FieldError names one offending input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError enumerates every offending field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a field failure.
func (e *ValidationError) Add(field, reason string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Reason: reason})
}

// OrNil returns nil when no field failed so callers can `return v.OrNil()`.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError is a shortcut for a single-field failure.
func NewValidationError(field, reason string) error {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

// StateError reports an operation that the current rental or inspection state forbids.
type StateError struct {
	Op     string
	Status string
	Hint   string
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("cannot %s", e.Op)
	if e.Status != "" {
		msg += fmt.Sprintf(" while status is %s", e.Status)
	}
	if e.Hint != "" {
		msg += ": " + e.Hint
	}
	return msg
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
