package core

// transform.go is the cleaning pipeline.
//
// Stages run in a fixed order over a private copy of the input:
//  1. Preconditions (non-empty table, at least one mapping)
//  2. Projection and rename
//  3. Whitespace trim
//  4. Null normalization (absent -> "")
//  5. Case conversion
//  6. Key validation
//  7. Duplicate resolution
//
// Trimming and null normalization run before validation so padded or absent
// keys are not misreported. Validation runs before duplicate detection so
// duplicates are only reported for well-formed keys. Any failure aborts the
// whole run; no partial table is returned.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/JonMunkholm/csvtool/internal/logging"
)

// CaseMode selects the case conversion applied to every text cell.
type CaseMode string

const (
	CaseNone   CaseMode = "none"
	CaseUpper  CaseMode = "upper"
	CaseLower  CaseMode = "lower"
	CaseProper CaseMode = "proper"
)

// DuplicateMode selects how repeated key values are handled.
type DuplicateMode string

const (
	DuplicatesError     DuplicateMode = "error"
	DuplicatesKeepFirst DuplicateMode = "keep-first"
)

// CaseModes lists accepted case modes in display order.
var CaseModes = []CaseMode{CaseLower, CaseUpper, CaseProper, CaseNone}

// DuplicateModes lists accepted duplicate modes in display order.
var DuplicateModes = []DuplicateMode{DuplicatesKeepFirst, DuplicatesError}

// ParseCaseMode converts user input to a CaseMode. Empty input means none.
func ParseCaseMode(s string) (CaseMode, error) {
	switch m := CaseMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return CaseNone, nil
	case CaseNone, CaseUpper, CaseLower, CaseProper:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of lower, upper, proper, none", ErrInvalidCaseMode, s)
	}
}

// ParseDuplicateMode converts user input to a DuplicateMode. Empty input means error.
func ParseDuplicateMode(s string) (DuplicateMode, error) {
	switch m := DuplicateMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return DuplicatesError, nil
	case DuplicatesError, DuplicatesKeepFirst:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of keep-first, error", ErrInvalidDuplicateMode, s)
	}
}

// TransformConfig fully determines a pipeline run.
type TransformConfig struct {
	Mappings   []ColumnMapping
	Case       CaseMode
	Duplicates DuplicateMode
	KeyColumn  string
	Output     string // destination path; not used by Transform itself
}

// TransformResult is the cleaned table plus what the run observed.
type TransformResult struct {
	Table             *Table
	DuplicatesRemoved int
}

// Transform runs the full pipeline. The input table is never modified.
func Transform(t *Table, cfg TransformConfig) (*TransformResult, error) {
	return TransformContext(context.Background(), t, cfg)
}

// TransformContext is Transform with a context used only for logging.
// The pipeline itself is synchronous and not cancellable.
func TransformContext(ctx context.Context, t *Table, cfg TransformConfig) (*TransformResult, error) {
	logger := logging.WithFields(ctx, "stage", "transform", "key", cfg.KeyColumn)

	// 1. Preconditions
	if t.Empty() {
		return nil, ErrEmptyInput
	}
	if len(cfg.Mappings) == 0 {
		return nil, ErrNoMappings
	}

	// 2. Projection and rename
	out, err := project(t, cfg.Mappings)
	if err != nil {
		return nil, err
	}
	if out.NumRows() == 0 {
		return nil, ErrEmptyAfterProjection
	}
	logger.Debug("columns projected", "columns", out.ColumnNames(), "rows", out.NumRows())

	// 3. Whitespace trim
	out.mapCells(trimCell)

	// 4. Null normalization
	out.mapCells(fillNull)

	// 5. Case conversion
	if fn := caseFunc(cfg.Case); fn != nil {
		out.mapCells(func(c Cell) Cell {
			if c.Valid {
				c.Value = fn(c.Value)
			}
			return c
		})
	}

	result := &TransformResult{Table: out}

	// Key stages only run when the key survived projection.
	if cfg.KeyColumn == "" || !out.HasColumn(cfg.KeyColumn) {
		logger.Debug("key column not selected, skipping validation and duplicate checks")
		return result, nil
	}

	// 6. Key validation
	verrs, err := ValidateColumn(out, cfg.KeyColumn)
	if err != nil {
		return nil, err
	}
	if len(verrs) > 0 {
		return nil, &ValidationFailedError{Column: cfg.KeyColumn, Errors: verrs}
	}

	// 7. Duplicate resolution
	removed, err := resolveDuplicates(out, cfg.KeyColumn, cfg.Duplicates, logger)
	if err != nil {
		return nil, err
	}
	result.DuplicatesRemoved = removed

	return result, nil
}

// project selects and renames columns in mapping order.
func project(t *Table, mappings []ColumnMapping) (*Table, error) {
	columns := make([]Column, 0, len(mappings))
	seen := make(map[string]bool, len(mappings))

	for _, m := range mappings {
		cells, ok := t.Column(m.Source)
		if !ok {
			return nil, &SchemaError{Column: m.Source, Available: t.ColumnNames()}
		}
		if seen[m.Dest] {
			return nil, &MappingError{Directive: m.Source + mappingSeparator + m.Dest, Err: ErrDuplicateDest}
		}
		seen[m.Dest] = true
		columns = append(columns, Column{Name: m.Dest, Cells: cells})
	}

	// NewTableFromColumns copies the cells, so the input stays untouched.
	return NewTableFromColumns(columns...)
}

func trimCell(c Cell) Cell {
	if c.Valid {
		c.Value = strings.TrimSpace(c.Value)
	}
	return c
}

func fillNull(c Cell) Cell {
	if !c.Valid {
		return Text("")
	}
	return c
}

// caseFunc returns the string conversion for a mode, or nil for none.
func caseFunc(mode CaseMode) func(string) string {
	switch mode {
	case CaseUpper:
		return strings.ToUpper
	case CaseLower:
		return strings.ToLower
	case CaseProper:
		return ProperCase
	default:
		return nil
	}
}

// ProperCase capitalizes the first letter of each whitespace-delimited word
// and lowercases the rest. Leading punctuation and digits in a word are kept
// as is, so "(bob)" becomes "(Bob)". Whitespace is preserved exactly.
func ProperCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	wordStart := true
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]

		switch {
		case unicode.IsSpace(r):
			wordStart = true
			b.WriteRune(r)
		case wordStart && unicode.IsLetter(r):
			wordStart = false
			b.WriteRune(unicode.ToTitle(r))
		case wordStart:
			b.WriteRune(r)
		default:
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// findDuplicates flags every cell equal to an earlier cell in the column.
// The first occurrence of a value is never flagged.
func findDuplicates(cells []Cell) []bool {
	seen := make(map[Cell]struct{}, len(cells))
	dup := make([]bool, len(cells))
	for i, c := range cells {
		if _, ok := seen[c]; ok {
			dup[i] = true
			continue
		}
		seen[c] = struct{}{}
	}
	return dup
}

// resolveDuplicates applies the duplicate mode to the key column in place
// and returns the number of rows removed.
func resolveDuplicates(t *Table, key string, mode DuplicateMode, logger *slog.Logger) (int, error) {
	cells, _ := t.Column(key)
	dup := findDuplicates(cells)

	var values []string
	keep := make([]bool, len(dup))
	for i, d := range dup {
		keep[i] = !d
		if d {
			values = append(values, cells[i].Value)
		}
	}
	if len(values) == 0 {
		return 0, nil
	}

	if mode != DuplicatesKeepFirst {
		return 0, &DuplicateKeysError{Column: key, Values: values}
	}

	t.keepRows(keep)
	if t.NumRows() == 0 {
		return 0, ErrAllRowsDuplicated
	}

	logger.Info("removed duplicate rows", "count", len(values))
	return len(values), nil
}
