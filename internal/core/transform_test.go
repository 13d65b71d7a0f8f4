package core

import (
	"errors"
	"reflect"
	"testing"
)

func codes(t *testing.T, tbl *Table, column string) []string {
	t.Helper()
	cells, ok := tbl.Column(column)
	if !ok {
		t.Fatalf("column %q missing; have %v", column, tbl.ColumnNames())
	}
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.Value
	}
	return out
}

func TestTransform_MatterScenario(t *testing.T) {
	in := MustTable(
		TextColumn("matter id", "  12345.67890  "),
		TextColumn("name", "bob ltd"),
	)

	res, err := Transform(in, TransformConfig{
		Mappings: []ColumnMapping{
			{Source: "matter id", Dest: "ClientMatterCode"},
			{Source: "name", Dest: "Name"},
		},
		Case:       CaseProper,
		Duplicates: DuplicatesError,
		KeyColumn:  "ClientMatterCode",
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if got := res.Table.ColumnNames(); !reflect.DeepEqual(got, []string{"ClientMatterCode", "Name"}) {
		t.Errorf("columns = %v", got)
	}
	row := res.Table.Row(0)
	if row[0] != Text("12345.67890") || row[1] != Text("Bob Ltd") {
		t.Errorf("row = %v, want [12345.67890 Bob Ltd]", row)
	}
	if res.DuplicatesRemoved != 0 {
		t.Errorf("DuplicatesRemoved = %d, want 0", res.DuplicatesRemoved)
	}
}

func TestTransform_DoesNotModifyInput(t *testing.T) {
	in := MustTable(TextColumn("Name", "  alice  "))

	_, err := Transform(in, TransformConfig{
		Mappings: []ColumnMapping{{Source: "Name", Dest: "Name"}},
		Case:     CaseUpper,
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if got := codes(t, in, "Name"); got[0] != "  alice  " {
		t.Errorf("input modified: %q", got[0])
	}
}

func TestTransform_ProjectionOrderAndRename(t *testing.T) {
	in := MustTable(
		TextColumn("A", "1"),
		TextColumn("B", "2"),
		TextColumn("C", "3"),
	)

	res, err := Transform(in, TransformConfig{
		Mappings: []ColumnMapping{{Source: "C", Dest: "Third"}, {Source: "A", Dest: "A"}},
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if got := res.Table.ColumnNames(); !reflect.DeepEqual(got, []string{"Third", "A"}) {
		t.Errorf("columns = %v, want [Third A]", got)
	}
}

func TestTransform_NullNormalization(t *testing.T) {
	in := MustTable(Column{Name: "Note", Cells: []Cell{Null(), Text("x")}})

	res, err := Transform(in, TransformConfig{Mappings: []ColumnMapping{{Source: "Note", Dest: "Note"}}})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	cells, _ := res.Table.Column("Note")
	if cells[0] != Text("") {
		t.Errorf("absent cell = %#v, want empty text", cells[0])
	}
}

func TestTransform_CaseModes(t *testing.T) {
	tests := []struct {
		mode CaseMode
		in   string
		want string
	}{
		{CaseNone, "mIxEd case", "mIxEd case"},
		{CaseUpper, "mIxEd case", "MIXED CASE"},
		{CaseLower, "mIxEd case", "mixed case"},
		{CaseProper, "mIxEd case", "Mixed Case"},
		{CaseProper, "o'brien  and\tco", "O'brien  And\tCo"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			cfg := TransformConfig{Mappings: []ColumnMapping{{Source: "V", Dest: "V"}}, Case: tt.mode}

			once, err := Transform(MustTable(TextColumn("V", tt.in)), cfg)
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if got := codes(t, once.Table, "V")[0]; got != tt.want {
				t.Errorf("case %s: %q, want %q", tt.mode, got, tt.want)
			}

			// Applying the same mode again changes nothing.
			twice, err := Transform(once.Table, cfg)
			if err != nil {
				t.Fatalf("second Transform() error = %v", err)
			}
			if got := codes(t, twice.Table, "V")[0]; got != tt.want {
				t.Errorf("case %s not idempotent: %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestTransform_KeepFirst(t *testing.T) {
	in := MustTable(
		TextColumn("Key", "12345.00001", "12345.00002", "12345.00001", "12345.00003", "12345.00002"),
		TextColumn("Pos", "0", "1", "2", "3", "4"),
	)

	res, err := Transform(in, TransformConfig{
		Mappings:   []ColumnMapping{{Source: "Key", Dest: "Key"}, {Source: "Pos", Dest: "Pos"}},
		Duplicates: DuplicatesKeepFirst,
		KeyColumn:  "Key",
	})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if res.DuplicatesRemoved != 2 {
		t.Errorf("DuplicatesRemoved = %d, want 2", res.DuplicatesRemoved)
	}
	if got := codes(t, res.Table, "Pos"); !reflect.DeepEqual(got, []string{"0", "1", "3"}) {
		t.Errorf("kept positions = %v, want [0 1 3]", got)
	}
}

func TestTransform_DuplicatesError(t *testing.T) {
	in := MustTable(TextColumn("Key", "12345.00001", "12345.00002", "12345.00001"))

	_, err := Transform(in, TransformConfig{
		Mappings:   []ColumnMapping{{Source: "Key", Dest: "Key"}},
		Duplicates: DuplicatesError,
		KeyColumn:  "Key",
	})

	var derr *DuplicateKeysError
	if !errors.As(err, &derr) {
		t.Fatalf("error = %v, want *DuplicateKeysError", err)
	}
	if !reflect.DeepEqual(derr.Values, []string{"12345.00001"}) {
		t.Errorf("Values = %v, want [12345.00001]", derr.Values)
	}
	if !errors.Is(err, ErrDuplicateKeys) {
		t.Error("errors.Is(err, ErrDuplicateKeys) = false")
	}
}

func TestTransform_ValidationBeforeDuplicates(t *testing.T) {
	in := MustTable(TextColumn("Key", "12345.1", "12345.1"))

	_, err := Transform(in, TransformConfig{
		Mappings:   []ColumnMapping{{Source: "Key", Dest: "Key"}},
		Duplicates: DuplicatesError,
		KeyColumn:  "Key",
	})

	var verr *ValidationFailedError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationFailedError", err)
	}
	if len(verr.Errors) != 2 || verr.Errors[0].Row != 2 || verr.Errors[1].Row != 3 {
		t.Errorf("Errors = %+v, want rows 2 and 3", verr.Errors)
	}
}

func TestTransform_TrimsKeyBeforeValidation(t *testing.T) {
	in := MustTable(TextColumn("Key", " 12345.67890\t"))

	if _, err := Transform(in, TransformConfig{
		Mappings:  []ColumnMapping{{Source: "Key", Dest: "Key"}},
		KeyColumn: "Key",
	}); err != nil {
		t.Errorf("Transform() error = %v, want padded key accepted", err)
	}
}

func TestTransform_KeyNotSelectedSkipsChecks(t *testing.T) {
	in := MustTable(
		TextColumn("Key", "bad", "bad"),
		TextColumn("Name", "a", "b"),
	)

	res, err := Transform(in, TransformConfig{
		Mappings:   []ColumnMapping{{Source: "Name", Dest: "Name"}},
		Duplicates: DuplicatesError,
		KeyColumn:  "Key",
	})
	if err != nil {
		t.Fatalf("Transform() error = %v, want key checks skipped", err)
	}
	if res.Table.NumRows() != 2 {
		t.Errorf("rows = %d, want 2", res.Table.NumRows())
	}
}

func TestTransform_Errors(t *testing.T) {
	data := MustTable(TextColumn("A", "1"), TextColumn("B", "2"))

	tests := []struct {
		name    string
		table   *Table
		cfg     TransformConfig
		wantErr error
	}{
		{
			name:    "empty table",
			table:   MustTable(TextColumn("A")),
			cfg:     TransformConfig{Mappings: []ColumnMapping{{Source: "A", Dest: "A"}}},
			wantErr: ErrEmptyInput,
		},
		{
			name:    "no columns",
			table:   MustTable(),
			cfg:     TransformConfig{Mappings: []ColumnMapping{{Source: "A", Dest: "A"}}},
			wantErr: ErrEmptyInput,
		},
		{
			name:    "no mappings",
			table:   data,
			wantErr: ErrNoMappings,
		},
		{
			name:    "missing source",
			table:   data,
			cfg:     TransformConfig{Mappings: []ColumnMapping{{Source: "Z", Dest: "Z"}}},
			wantErr: ErrColumnNotFound,
		},
		{
			name:  "duplicate destination",
			table: data,
			cfg: TransformConfig{Mappings: []ColumnMapping{
				{Source: "A", Dest: "X"},
				{Source: "B", Dest: "X"},
			}},
			wantErr: ErrDuplicateDest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Transform(tt.table, tt.cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if res != nil {
				t.Errorf("result = %+v, want nil on failure", res)
			}
		})
	}
}

func TestTransform_SchemaErrorListsColumns(t *testing.T) {
	in := MustTable(TextColumn("A", "1"), TextColumn("B", "2"))

	_, err := Transform(in, TransformConfig{Mappings: []ColumnMapping{{Source: "Missing", Dest: "M"}}})

	var serr *SchemaError
	if !errors.As(err, &serr) {
		t.Fatalf("error = %v, want *SchemaError", err)
	}
	if serr.Column != "Missing" || !reflect.DeepEqual(serr.Available, []string{"A", "B"}) {
		t.Errorf("SchemaError = %+v", serr)
	}
}

func TestParseCaseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    CaseMode
		wantErr bool
	}{
		{"", CaseNone, false},
		{"none", CaseNone, false},
		{"UPPER", CaseUpper, false},
		{" lower ", CaseLower, false},
		{"Proper", CaseProper, false},
		{"title", "", true},
	}
	for _, tt := range tests {
		got, err := ParseCaseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCaseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidCaseMode) {
			t.Errorf("ParseCaseMode(%q) error = %v, want ErrInvalidCaseMode", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCaseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseDuplicateMode(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicateMode
		wantErr bool
	}{
		{"", DuplicatesError, false},
		{"error", DuplicatesError, false},
		{"Keep-First", DuplicatesKeepFirst, false},
		{"drop", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicateMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDuplicateMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidDuplicateMode) {
			t.Errorf("ParseDuplicateMode(%q) error = %v, want ErrInvalidDuplicateMode", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDuplicateMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestProperCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"bob ltd", "Bob Ltd"},
		{"BOB LTD", "Bob Ltd"},
		{"  leading", "  Leading"},
		{"émile zola", "Émile Zola"},
		{"12345.67890", "12345.67890"},
		{"(bob) ltd", "(Bob) Ltd"},
		{"\"acme\" corp", "\"Acme\" Corp"},
		{"3m company", "3M Company"},
		{"o'NEIL", "O'neil"},
	}
	for _, tt := range tests {
		got := ProperCase(tt.in)
		if got != tt.want {
			t.Errorf("ProperCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if again := ProperCase(got); again != got {
			t.Errorf("ProperCase(%q) = %q, not idempotent", got, again)
		}
	}
}
