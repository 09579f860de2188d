package engine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes run errors.
type ErrorCode string

const (
	// ErrCodeMalformedInput indicates a raw field that is present but not a
	// finite number.
	ErrCodeMalformedInput ErrorCode = "MALFORMED_INPUT"

	// ErrCodeUnknownExperiment indicates an experiment type with no iterator.
	ErrCodeUnknownExperiment ErrorCode = "UNKNOWN_EXPERIMENT"

	// ErrCodeMissingReference indicates a comparative experiment without a
	// reference sample.
	ErrCodeMissingReference ErrorCode = "MISSING_REFERENCE"

	// ErrCodeGraph indicates an arena or flattening contract breach.
	ErrCodeGraph ErrorCode = "GRAPH"
)

// InputError reports input or configuration that cannot be converted.
//
// InputError is never turned into a not-computable outcome: a malformed
// value aborts the run with enough context to find it in the source file.
type InputError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Record is the raw record identifier (well ID), if any.
	Record string

	// Field is the raw field name, if any.
	Field string

	// Value is the offending raw value, if any.
	Value string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *InputError) Error() string {
	if e.Record != "" && e.Field != "" {
		return fmt.Sprintf("%s: %s (record=%s, field=%s, value=%q)", e.Code, e.Message, e.Record, e.Field, e.Value)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying parse error.
func (e *InputError) Unwrap() error {
	return e.Err
}

// GraphError wraps a graph package sentinel (ErrNoProvenance, ErrCycle, ...)
// with the builder that hit it.
type GraphError struct {
	Builder string
	Err     error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCodeGraph, e.Builder, e.Err)
}

// Unwrap returns the graph sentinel.
func (e *GraphError) Unwrap() error {
	return e.Err
}

// NewMalformedInput creates an InputError for an unparseable raw field.
func NewMalformedInput(record, field, value string, err error) *InputError {
	return &InputError{
		Code:    ErrCodeMalformedInput,
		Message: "value is not a finite number",
		Record:  record,
		Field:   field,
		Value:   value,
		Err:     err,
	}
}

// NewUnknownExperiment creates an InputError for an unsupported experiment type.
func NewUnknownExperiment(name string) *InputError {
	return &InputError{
		Code:    ErrCodeUnknownExperiment,
		Message: fmt.Sprintf("unknown experiment type %q", name),
	}
}

// NewMissingReference creates an InputError for a missing reference setting.
func NewMissingReference(what, experiment string) *InputError {
	return &InputError{
		Code:    ErrCodeMissingReference,
		Message: fmt.Sprintf("%s is required for %s experiments", what, experiment),
	}
}

// IsMalformedInput returns true if err is a malformed-input error.
// Uses errors.As to handle wrapped errors.
func IsMalformedInput(err error) bool {
	return hasCode(err, ErrCodeMalformedInput)
}

// IsUnknownExperiment returns true if err reports an unsupported experiment.
func IsUnknownExperiment(err error) bool {
	return hasCode(err, ErrCodeUnknownExperiment)
}

// IsMissingReference returns true if err reports a missing reference setting.
func IsMissingReference(err error) bool {
	return hasCode(err, ErrCodeMissingReference)
}

// IsGraphError returns true if err is a graph contract breach.
func IsGraphError(err error) bool {
	var ge *GraphError
	return errors.As(err, &ge)
}

func hasCode(err error, code ErrorCode) bool {
	var ie *InputError
	if errors.As(err, &ie) {
		return ie.Code == code
	}
	return false
}
