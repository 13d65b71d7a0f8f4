// Package reader loads CSV and Excel files into a core.Table.
//
// Every field is read as text. Empty fields become absent cells, nothing is
// trimmed and no type inference happens, so values like "00012.00340" keep
// their leading zeros. The header row names the columns.
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/csvtool/internal/core"
)

// DefaultMaxFileSize is used when Options.MaxFileSize is zero.
const DefaultMaxFileSize int64 = 100 << 20

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrLegacyExcel       = fmt.Errorf("%w: legacy .xls is not supported, save as .xlsx", ErrUnsupportedFormat)
	ErrEncoding          = errors.New("unable to detect file encoding")
	ErrFileTooLarge      = errors.New("file too large")
)

// Format identifies how a file's bytes are parsed.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// Options controls how files are read.
type Options struct {
	// MaxFileSize rejects larger inputs with ErrFileTooLarge.
	MaxFileSize int64

	// Sheet selects an Excel worksheet by name. Empty reads the first sheet.
	Sheet string
}

func (o Options) maxSize() int64 {
	if o.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return o.MaxFileSize
}

// FormatFromPath maps a file extension (case-insensitive) to a Format.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatExcel, nil
	case ".xls":
		return "", ErrLegacyExcel
	default:
		return "", fmt.Errorf("%w: %q (expected .csv, .xlsx or .xlsm)", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ReadFile reads the CSV or Excel file at path.
func ReadFile(path string, opts Options) (*core.Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrFileNotFound, path)
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	if info.Size() > opts.maxSize() {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), opts.maxSize())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, format, opts)
}

// Read parses r in the given format. Used for uploads that never touch disk.
func Read(r io.Reader, format Format, opts Options) (*core.Table, error) {
	limit := opts.maxSize()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, limit)
	}

	switch format {
	case FormatCSV:
		return readCSV(data)
	case FormatExcel:
		return readExcel(data, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func readCSV(data []byte) (*core.Table, error) {
	raw, err := io.ReadAll(NewBOMSkippingReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	text, enc, err := decodeText(raw)
	if err != nil {
		return nil, err
	}
	slog.Debug("decoded csv", "encoding", enc, "bytes", len(raw))

	cr := csv.NewReader(bytes.NewReader(text))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(records)
}

func readExcel(data []byte, sheet string) (*core.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("open workbook: no worksheets")
		}
		sheet = sheets[0]
	} else if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("open workbook: worksheet %q not found", sheet)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheet, err)
	}
	return buildTable(rows)
}

// buildTable turns raw records into a table. The first record is the header;
// rows wider than the header get "Unnamed: N" columns and narrower rows are
// padded with absent cells. Blank worksheet rows are skipped the way
// encoding/csv skips blank lines.
func buildTable(records [][]string) (*core.Table, error) {
	if len(records) == 0 {
		return core.NewTable(nil, nil)
	}

	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}

	header := dedupeHeader(records[0], width)

	rows := make([][]core.Cell, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) == 0 {
			continue
		}
		row := make([]core.Cell, width)
		for i := range row {
			if i < len(rec) && rec[i] != "" {
				row[i] = core.Text(rec[i])
			} else {
				row[i] = core.Null()
			}
		}
		rows = append(rows, row)
	}

	return core.NewTable(header, rows)
}

// dedupeHeader names blank headers "Unnamed: N" and suffixes repeated names
// with ".1", ".2", ... in order of appearance.
func dedupeHeader(raw []string, width int) []string {
	header := make([]string, width)
	seen := make(map[string]int, width)
	taken := make(map[string]bool, width)

	for i := range header {
		name := ""
		if i < len(raw) {
			name = raw[i]
		}
		if name == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}
		taken[name] = true
		header[i] = name
	}

	used := make(map[string]bool, width)
	for i, name := range header {
		if !used[name] {
			used[name] = true
			continue
		}
		for {
			seen[name]++
			candidate := name + "." + strconv.Itoa(seen[name])
			if !taken[candidate] && !used[candidate] {
				header[i] = candidate
				used[candidate] = true
				break
			}
		}
	}
	return header
}
