// Package report renders profiles and validation failures as plain text for
// the terminal.
package report

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvtool/internal/core"
)

// FormatProfile renders a profile report:
//
//	File Profile
//	============
//	Rows: 3
//	Columns: 2
//
//	Column Statistics:
//	ClientMatterCode: text
//	Unique Values: 2
//	Missing Values: 0
//	...
func FormatProfile(p *core.ProfileReport) string {
	var b strings.Builder

	b.WriteString("File Profile\n")
	b.WriteString("============\n")
	fmt.Fprintf(&b, "Rows: %d\n", p.TotalRows)
	fmt.Fprintf(&b, "Columns: %d\n\n", p.TotalColumns)

	b.WriteString("Column Statistics:\n")
	for _, col := range p.Columns {
		fmt.Fprintf(&b, "%s: %s\n", col.Name, col.Type)
		fmt.Fprintf(&b, "Unique Values: %d\n", col.Unique)
		fmt.Fprintf(&b, "Missing Values: %d\n\n", col.Missing)
	}

	if d := p.Duplicates; d != nil {
		fmt.Fprintf(&b, "Duplicates found on %s:\n", d.Column)
		fmt.Fprintf(&b, "  Count: %d\n", d.Count)
		fmt.Fprintf(&b, "  Values: %s\n", strings.Join(d.Values, ", "))
	}

	if len(p.ValidationErrors) > 0 {
		b.WriteString("\nValidation Errors:\n")
		b.WriteString(FormatValidationErrors(p.ValidationErrors))
	}

	return b.String()
}

// FormatValidationErrors renders one indented "Row N: value - message" line
// per error.
func FormatValidationErrors(errs []core.ValidationError) string {
	var b strings.Builder
	for _, ve := range errs {
		b.WriteString("  ")
		b.WriteString(ve.String())
		b.WriteString("\n")
	}
	return b.String()
}

// FormatWarnings renders profile diagnostics as "Warning: message" lines.
func FormatWarnings(warnings []core.Diagnostic) string {
	var b strings.Builder
	for _, w := range warnings {
		fmt.Fprintf(&b, "Warning: %s\n", w.Message)
	}
	return b.String()
}
