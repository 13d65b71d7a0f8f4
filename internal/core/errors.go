package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every failure kind. Typed errors below wrap these so
// callers can match with errors.Is and still reach structured detail with
// errors.As.
var (
	// Mapping syntax
	ErrEmptyMapping     = errors.New("column mapping cannot be empty")
	ErrMalformedMapping = errors.New("invalid column mapping syntax")
	ErrEmptySourceName  = errors.New("source column name cannot be empty")
	ErrEmptyDestName    = errors.New("destination column name cannot be empty")
	ErrDuplicateDest    = errors.New("destination column name used more than once")

	// Schema
	ErrColumnNotFound = errors.New("column not found")

	// Option values
	ErrInvalidCaseMode      = errors.New("invalid case mode")
	ErrInvalidDuplicateMode = errors.New("invalid duplicate mode")

	// Empty input at various stages
	ErrEmptyInput           = errors.New("cannot transform an empty table")
	ErrNoMappings           = errors.New("no column mappings specified")
	ErrEmptyAfterProjection = errors.New("no data rows after column selection")
	ErrAllRowsDuplicated    = errors.New("all rows removed as duplicates")

	// Business rules
	ErrValidationFailed = errors.New("validation errors found")
	ErrDuplicateKeys    = errors.New("duplicate values found in key column")

	// Output
	ErrEmptyOutput      = errors.New("no rows to write")
	ErrPermissionDenied = errors.New("permission denied")
	ErrIOFailure        = errors.New("error writing output file")
)

// MappingError reports a directive that could not be parsed.
type MappingError struct {
	Directive string
	Err       error
}

func (e *MappingError) Error() string {
	if errors.Is(e.Err, ErrMalformedMapping) {
		return fmt.Sprintf("%v: %q. Expected format: \"Source:Dest\" or \"ColumnName\"", e.Err, e.Directive)
	}
	return fmt.Sprintf("%v: %q", e.Err, e.Directive)
}

func (e *MappingError) Unwrap() error {
	return e.Err
}

// SchemaError reports a column that is not present in a table, together
// with the columns that are.
type SchemaError struct {
	Column    string
	Available []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("column %q not found. Available columns: %s", e.Column, availableColumns(e.Available))
}

func (e *SchemaError) Unwrap() error {
	return ErrColumnNotFound
}

// ValidationError is one invalid key cell. Row is 1-based and counts the
// header row, so the first data row is row 2.
type ValidationError struct {
	Row    int           `json:"row"`
	Value  Cell          `json:"value"`
	Reason CodeErrorKind `json:"reason"`
}

// Message returns the user-facing reason text.
func (e ValidationError) Message() string {
	return e.Reason.Message()
}

// String renders the error as "Row N: value - message".
func (e ValidationError) String() string {
	return fmt.Sprintf("Row %d: %s - %s", e.Row, e.Value, e.Reason.Message())
}

// ValidationFailedError carries every invalid key cell, in row order.
type ValidationFailedError struct {
	Column string
	Errors []ValidationError
}

func (e *ValidationFailedError) Error() string {
	var b strings.Builder
	b.WriteString("validation errors found in column ")
	b.WriteString(fmt.Sprintf("%q:", e.Column))
	for _, ve := range e.Errors {
		b.WriteString("\n  ")
		b.WriteString(ve.String())
	}
	return b.String()
}

func (e *ValidationFailedError) Unwrap() error {
	return ErrValidationFailed
}

// DuplicateKeysError lists each non-first occurrence of a repeated key value.
type DuplicateKeysError struct {
	Column string
	Values []string
}

func (e *DuplicateKeysError) Error() string {
	return fmt.Sprintf("duplicate values found in key column %q: [%s]", e.Column, strings.Join(e.Values, ", "))
}

func (e *DuplicateKeysError) Unwrap() error {
	return ErrDuplicateKeys
}

// OutputError reports a failed write. Kind is ErrPermissionDenied or ErrIOFailure.
type OutputError struct {
	Path string
	Kind error
	Err  error
}

func (e *OutputError) Error() string {
	return fmt.Sprintf("%v %s: %v", e.Kind, e.Path, e.Err)
}

func (e *OutputError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
