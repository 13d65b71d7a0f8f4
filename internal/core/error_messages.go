// Package core provides the cleaning and profiling logic for tabular files.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Empty mapping: A column mapping is empty
//	         Action: Pass a column name or "Source:Dest" to every -c flag
//	MAP002 - Malformed mapping: A column mapping has too many separators
//	         Action: Use "Source:Dest" with exactly one colon
//	MAP003 - Empty source: A column mapping has no source column
//	         Action: Put the source column name before the colon
//	MAP004 - Empty destination: A column mapping has no destination name
//	         Action: Put the output column name after the colon
//	MAP005 - Duplicate destination: Two mappings produce the same column
//	         Action: Give every output column a distinct name
//
// # Option Errors (OPT001-OPT099)
//
//	OPT001 - Invalid case mode: Case must be lower, upper, proper or none
//	OPT002 - Invalid duplicate mode: Duplicates must be keep-first or error
//
// # Schema Errors (SCH001-SCH099)
//
//	SCH001 - Column not found: A selected column is not in the file
//	         Action: Check the available columns listed in the error
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Invalid codes: Key column values are not in XXXXX.XXXXX format
//	         Action: Fix the listed rows in the source file and run again
//
// # Duplicate Errors (DUP001-DUP099)
//
//	DUP001 - Duplicate keys: The key column contains repeated values
//	         Action: Remove the duplicates or run with --duplicates keep-first
//	DUP002 - All duplicates: Duplicate removal left no rows
//	         Action: Check that the key column holds distinct values
//
// # Input Errors (IN001-IN099)
//
//	IN001 - Empty input: The file contains no data rows
//	IN002 - No mappings: No columns were selected
//	IN003 - Empty after selection: No rows remained after column selection
//	IN004 - File not found: The input file does not exist
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the configured size limit
//	FILE002 - Unsupported format: Only .csv, .xlsx and .xlsm are accepted
//	FILE003 - Encoding error: The file's character encoding could not be read
//	FILE004 - Invalid CSV: The file could not be parsed as CSV
//	FILE005 - No file: No file was provided
//
// # Output Errors (OUT001-OUT099)
//
//	OUT001 - Permission denied: The output location is not writable
//	OUT002 - Write failed: The output file could not be written
//
// # Server Errors (SRV001-SRV099)
//
//	SRV001 - Busy: All job slots are taken
//	         Action: Wait a moment and try again
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Matching
//
// Errors from this package are matched with errors.Is against their
// sentinels first. Anything else (reader and transport errors) falls back to
// case-insensitive substring patterns; the first matching pattern wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{ErrEmptyMapping, UserMessage{
		Message: "A column mapping is empty",
		Action:  `Pass a column name or "Source:Dest" to every column flag`,
		Code:    "MAP001",
	}},
	{ErrMalformedMapping, UserMessage{
		Message: "A column mapping has invalid syntax",
		Action:  `Use "Source:Dest" with exactly one colon`,
		Code:    "MAP002",
	}},
	{ErrEmptySourceName, UserMessage{
		Message: "A column mapping has no source column",
		Action:  "Put the source column name before the colon",
		Code:    "MAP003",
	}},
	{ErrEmptyDestName, UserMessage{
		Message: "A column mapping has no destination name",
		Action:  "Put the output column name after the colon",
		Code:    "MAP004",
	}},
	{ErrDuplicateDest, UserMessage{
		Message: "Two mappings produce the same output column",
		Action:  "Give every output column a distinct name",
		Code:    "MAP005",
	}},
	{ErrInvalidCaseMode, UserMessage{
		Message: "Unknown case conversion",
		Action:  "Use one of: lower, upper, proper, none",
		Code:    "OPT001",
	}},
	{ErrInvalidDuplicateMode, UserMessage{
		Message: "Unknown duplicate handling",
		Action:  "Use one of: keep-first, error",
		Code:    "OPT002",
	}},
	{ErrColumnNotFound, UserMessage{
		Message: "A selected column is not in the file",
		Action:  "Check the available columns listed in the error",
		Code:    "SCH001",
	}},
	{ErrValidationFailed, UserMessage{
		Message: "Key column values are not in XXXXX.XXXXX format",
		Action:  "Fix the listed rows in the source file and run again",
		Code:    "VAL001",
	}},
	{ErrDuplicateKeys, UserMessage{
		Message: "The key column contains repeated values",
		Action:  "Remove the duplicates or run with duplicates set to keep-first",
		Code:    "DUP001",
	}},
	{ErrAllRowsDuplicated, UserMessage{
		Message: "Duplicate removal left no rows",
		Action:  "Check that the key column holds distinct values",
		Code:    "DUP002",
	}},
	{ErrEmptyInput, UserMessage{
		Message: "The file contains no data rows",
		Action:  "Check that the file has a header row followed by data",
		Code:    "IN001",
	}},
	{ErrNoMappings, UserMessage{
		Message: "No columns were selected",
		Action:  "Select at least one column to keep",
		Code:    "IN002",
	}},
	{ErrEmptyAfterProjection, UserMessage{
		Message: "No rows remained after column selection",
		Action:  "Check that the file has data rows",
		Code:    "IN003",
	}},
	{ErrEmptyOutput, UserMessage{
		Message: "There are no rows to write",
		Action:  "Check the input file and the selected columns",
		Code:    "IN001",
	}},
	{ErrPermissionDenied, UserMessage{
		Message: "The output location is not writable",
		Action:  "Choose another output path or fix its permissions",
		Code:    "OUT001",
	}},
	{ErrIOFailure, UserMessage{
		Message: "The output file could not be written",
		Action:  "Check free disk space and the output path",
		Code:    "OUT002",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Order matters: specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "file not found",
		msg: UserMessage{
			Message: "The input file does not exist",
			Action:  "Check the file path",
			Code:    "IN004",
		},
	},
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the configured size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds the configured size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "legacy .xls",
		msg: UserMessage{
			Message: "Legacy .xls workbooks are not supported",
			Action:  "Open the file in Excel and save it as .xlsx",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "Unsupported file format",
			Action:  "Use a .csv, .xlsx or .xlsm file",
			Code:    "FILE002",
		},
	},
	{
		pattern: "unable to detect file encoding",
		msg: UserMessage{
			Message: "The file's character encoding could not be read",
			Action:  "Save the file as UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "parse csv",
		msg: UserMessage{
			Message: "The file is not a valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "FILE004",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was provided",
			Action:  "Select a CSV or Excel file",
			Code:    "FILE005",
		},
	},
	{
		pattern: "too many concurrent jobs",
		msg: UserMessage{
			Message: "The server is busy processing other files",
			Action:  "Wait a moment and try again",
			Code:    "SRV001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The output location is not writable",
			Action:  "Choose another output path or fix its permissions",
			Code:    "OUT001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Known sentinels are matched first, then text patterns, then ERR000.
//
// Example:
//
//	msg := MapError(&DuplicateKeysError{Column: "Code", Values: []string{"X"}})
//	// msg.Code == "DUP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-friendly message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
