package model

import "fmt"

// ValidationError represents malformed invoice input. Not retriable; the
// caller must fix the data.
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// ReconciliationError represents a structurally unprocessable invoice, such
// as one with no line items.
type ReconciliationError struct {
	InvoiceID string
	Message   string
}

func (e *ReconciliationError) Error() string {
	if e.InvoiceID != "" {
		return fmt.Sprintf("reconciliation failed for invoice %s: %s", e.InvoiceID, e.Message)
	}
	return fmt.Sprintf("reconciliation failed: %s", e.Message)
}

// NewReconciliationError creates a new reconciliation error
func NewReconciliationError(invoiceID, message string) *ReconciliationError {
	return &ReconciliationError{InvoiceID: invoiceID, Message: message}
}

// EncodingError represents a missing required field at encode time
type EncodingError struct {
	Field   string
	Message string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding failed on %s: %s", e.Field, e.Message)
}

// NewEncodingError creates a new encoding error
func NewEncodingError(field, message string) *EncodingError {
	return &EncodingError{Field: field, Message: message}
}

// IOError represents a failure to run the archival converter or to open or
// persist the container. Retriable once the underlying cause is addressed.
type IOError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *IOError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("io failure [%s]: %s (%v)", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("io failure [%s]: %s", e.Stage, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// NewIOError creates a new I/O error
func NewIOError(stage, message string, cause error) *IOError {
	return &IOError{Stage: stage, Message: message, Cause: cause}
}
