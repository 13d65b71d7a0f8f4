package core

// output.go serializes a table to the canonical CSV form:
//   - header row of column names, in table order
//   - RFC 4180 quoting for delimiters, quotes, and embedded newlines
//   - "\n" line endings on every platform
//   - UTF-8 without a byte order mark
//   - no index column
//
// WriteFile never leaves a partial file at the destination: rows are written
// to a temp file in the same directory and renamed into place. An existing
// destination must be writable; a read-only file is never replaced.

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// WriteCSV writes the table to w. Absent cells are written as empty fields.
func WriteCSV(w io.Writer, t *Table) error {
	if t.NumRows() == 0 {
		return ErrEmptyOutput
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = false

	if err := cw.Write(t.ColumnNames()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, t.NumColumns())
	for r := 0; r < t.NumRows(); r++ {
		for i, c := range t.Row(r) {
			record[i] = c.Value
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", r+headerRowOffset, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the table to path, creating parent directories as needed.
func WriteFile(path string, t *Table) (err error) {
	if t.NumRows() == 0 {
		return ErrEmptyOutput
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return newOutputError(path, err)
	}
	if err := checkWritable(path); err != nil {
		return newOutputError(path, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return newOutputError(path, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := WriteCSV(tmp, t); err != nil {
		return newOutputError(path, err)
	}
	if err := tmp.Close(); err != nil {
		return newOutputError(path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return newOutputError(path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return newOutputError(path, err)
	}
	return nil
}

// checkWritable opens an existing destination for writing without
// truncating it. A missing destination is fine.
func checkWritable(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// newOutputError classifies a write failure.
func newOutputError(path string, err error) *OutputError {
	kind := ErrIOFailure
	if errors.Is(err, fs.ErrPermission) {
		kind = ErrPermissionDenied
	}
	return &OutputError{Path: path, Kind: kind, Err: err}
}
