package core

// validation.go applies the code validator across a table column.
//
// Row numbers in the result match what a user sees in a spreadsheet: the
// header is row 1, so the first data row is row 2.

// headerRowOffset converts a zero-based data index to a spreadsheet row.
const headerRowOffset = 2

// ValidateColumn validates every cell of the named column and returns one
// ValidationError per invalid cell, in row order. An empty table yields no
// errors. A missing column is a *SchemaError.
func ValidateColumn(t *Table, column string) ([]ValidationError, error) {
	cells, ok := t.Column(column)
	if !ok {
		return nil, &SchemaError{Column: column, Available: t.ColumnNames()}
	}

	var errs []ValidationError
	for i, c := range cells {
		if valid, kind := ValidateCode(c); !valid {
			errs = append(errs, ValidationError{
				Row:    i + headerRowOffset,
				Value:  c,
				Reason: kind,
			})
		}
	}
	return errs, nil
}
