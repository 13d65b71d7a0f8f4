// Package core provides the cleaning and profiling logic for tabular files.
//
// This package is the heart of csvtool, containing all domain logic
// independent of file formats, the CLI, or HTTP. It operates on an in-memory
// [Table] of text cells handed to it by the reader.
//
// # Table Model
//
// A [Table] is an ordered list of named columns of equal length. Every cell is
// text or absent ([Cell].Valid == false). Nothing is ever converted to a
// number or date, so codes like "00012.00340" keep their leading zeros.
//
// # Code Validation
//
// [ValidateCode] checks a value against the XXXXX.XXXXX client matter code
// format with an ordered cascade of patterns, so truncated values are
// reported as truncation rather than a generic format error.
// [ValidateColumn] applies it down a column and reports spreadsheet row
// numbers (header = row 1).
//
// # Transform Pipeline
//
// [Transform] runs one deterministic pass:
//
//  1. Preconditions (non-empty table, at least one mapping)
//  2. Projection and rename per [ColumnMapping]
//  3. Whitespace trim
//  4. Null normalization
//  5. Case conversion ([CaseMode])
//  6. Key validation (only when the key column was selected)
//  7. Duplicate resolution ([DuplicateMode])
//
// Any failure aborts the run and returns a typed error; no partial table is
// produced. The input table is never modified.
//
// # Profiling
//
// [Profile] reports row and column counts, per-column unique and missing
// counts, duplicate keys, and code validation errors. Non-fatal problems are
// returned as [Diagnostic] warnings instead of being printed.
//
// # Output
//
// [WriteFile] writes the canonical CSV form: header row, RFC 4180 quoting,
// "\n" line endings, UTF-8, no index column.
//
// # Error Handling
//
// Every failure wraps a sentinel (for example [ErrValidationFailed]) and
// structured detail is available via errors.As on types such as
// [ValidationFailedError] and [SchemaError]. [MapError] turns any error into a
// coded [UserMessage] for display.
package core
