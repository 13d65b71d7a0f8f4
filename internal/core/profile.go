package core

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/csvtool/internal/logging"
)

// Column type labels. Values are never type-inferred; the label only
// distinguishes columns that hold any text from columns that hold none.
const (
	TypeText  = "text"
	TypeEmpty = "empty"
)

// Diagnostic codes reported by the profiler.
const (
	DiagKeyColumnMissing = "PRF001"
)

// Diagnostic is a non-fatal message returned alongside a report.
type Diagnostic struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// ColumnStats summarizes one column.
type ColumnStats struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Unique  int    `json:"uniqueValues"`
	Missing int    `json:"missingValues"` // absent cells only; "" is a value
}

// DuplicateReport describes repeated values in the key column.
type DuplicateReport struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`  // non-first occurrences
	Values []string `json:"values"` // distinct repeated values, first-seen order
}

// ProfileReport is the read-only summary of a table.
type ProfileReport struct {
	TotalRows        int               `json:"totalRows"`
	TotalColumns     int               `json:"totalColumns"`
	Columns          []ColumnStats     `json:"columns"`
	KeyColumn        string            `json:"keyColumn,omitempty"`
	Duplicates       *DuplicateReport  `json:"duplicates,omitempty"`
	ValidationErrors []ValidationError `json:"validationErrors"`
	Warnings         []Diagnostic      `json:"warnings,omitempty"`
}

// Profile computes per-column statistics. When keyColumn is set and present,
// it also reports duplicates and code validation errors for that column;
// when it is set but absent, a warning is added and key analysis is skipped.
// The table is not modified.
func Profile(t *Table, keyColumn string) *ProfileReport {
	return ProfileContext(context.Background(), t, keyColumn)
}

// ProfileContext is Profile with a context used only for logging.
func ProfileContext(ctx context.Context, t *Table, keyColumn string) *ProfileReport {
	report := &ProfileReport{
		TotalRows:    t.NumRows(),
		TotalColumns: t.NumColumns(),
		Columns:      make([]ColumnStats, 0, t.NumColumns()),
		KeyColumn:    keyColumn,
	}

	for _, col := range t.Columns() {
		report.Columns = append(report.Columns, columnStats(col))
	}

	if keyColumn == "" {
		return report
	}

	cells, ok := t.Column(keyColumn)
	if !ok {
		msg := fmt.Sprintf("Column '%s' not found", keyColumn)
		report.Warnings = append(report.Warnings, Diagnostic{Code: DiagKeyColumnMissing, Message: msg})
		logging.FromContext(ctx).Warn("profile key column not found", "key", keyColumn)
		return report
	}

	report.Duplicates = duplicateReport(keyColumn, cells)

	// The column is known to exist, so no error is possible here.
	verrs, _ := ValidateColumn(t, keyColumn)
	if verrs == nil {
		verrs = []ValidationError{}
	}
	report.ValidationErrors = verrs

	return report
}

func columnStats(col Column) ColumnStats {
	stats := ColumnStats{Name: col.Name, Type: TypeEmpty}
	distinct := make(map[string]struct{})
	for _, c := range col.Cells {
		if !c.Valid {
			stats.Missing++
			continue
		}
		stats.Type = TypeText
		distinct[c.Value] = struct{}{}
	}
	stats.Unique = len(distinct)
	return stats
}

// duplicateReport returns nil when the column has no repeated values.
// Values are listed in order of first occurrence. Absent cells are compared
// like values, so repeated nulls count.
func duplicateReport(column string, cells []Cell) *DuplicateReport {
	dup := findDuplicates(cells)

	repeated := make(map[Cell]bool)
	report := &DuplicateReport{Column: column}
	for i, d := range dup {
		if d {
			report.Count++
			repeated[cells[i]] = true
		}
	}
	if report.Count == 0 {
		return nil
	}

	for _, c := range cells {
		if repeated[c] {
			report.Values = append(report.Values, c.String())
			delete(repeated, c)
		}
	}
	return report
}
