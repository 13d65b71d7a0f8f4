package core

// code.go validates structured client matter codes (XXXXX.XXXXX).
//
// Classification is an ordered cascade: each pattern is tried in turn and the
// first match decides the result. Short-but-delimited values are reported as
// truncation rather than a generic format error, which is what data-entry
// staff need to find the damaged cell.

import (
	"regexp"
	"strings"
)

// CodeErrorKind classifies why a code failed validation.
type CodeErrorKind int

const (
	CodeValid CodeErrorKind = iota
	CodeEmpty
	SecondPartTruncated
	FirstPartTruncated
	MissingPeriod
	BadFormat
)

var (
	codePattern        = regexp.MustCompile(`^\d{5}\.\d{5}$`)
	secondPartTooShort = regexp.MustCompile(`^\d+\.\d{1,4}$`)
	firstPartTooShort  = regexp.MustCompile(`^\d{1,4}\.\d+$`)
)

// String returns a stable identifier for the kind, used in JSON and logs.
func (k CodeErrorKind) String() string {
	switch k {
	case CodeValid:
		return "valid"
	case CodeEmpty:
		return "code_empty"
	case SecondPartTruncated:
		return "second_part_truncated"
	case FirstPartTruncated:
		return "first_part_truncated"
	case MissingPeriod:
		return "missing_period"
	case BadFormat:
		return "bad_format"
	default:
		return "unknown"
	}
}

// Message returns the user-facing description of the failure.
func (k CodeErrorKind) Message() string {
	switch k {
	case CodeEmpty:
		return "Client matter code is empty"
	case SecondPartTruncated:
		return "Possible truncation - second part too short"
	case FirstPartTruncated:
		return "Possible truncation - first part too short"
	case MissingPeriod:
		return "Invalid format - missing period"
	case BadFormat:
		return "Invalid format - expected XXXXX.XXXXX"
	default:
		return ""
	}
}

// MarshalText lets the kind serialize as its identifier.
func (k CodeErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// ValidateCode checks one cell against the XXXXX.XXXXX format.
// It returns (true, CodeValid) for a well-formed code, otherwise false and
// the first failure kind in cascade order.
func ValidateCode(c Cell) (bool, CodeErrorKind) {
	if !c.Valid {
		return false, CodeEmpty
	}
	return ValidateCodeString(c.Value)
}

// ValidateCodeString is ValidateCode for a present value.
func ValidateCodeString(value string) (bool, CodeErrorKind) {
	s := strings.TrimSpace(value)

	switch {
	case codePattern.MatchString(s):
		return true, CodeValid
	case secondPartTooShort.MatchString(s):
		return false, SecondPartTruncated
	case firstPartTooShort.MatchString(s):
		return false, FirstPartTruncated
	case !strings.Contains(s, "."):
		return false, MissingPeriod
	default:
		return false, BadFormat
	}
}
