package core

import (
	"errors"
	"testing"
)

func TestParseMapping(t *testing.T) {
	tests := []struct {
		directive string
		want      ColumnMapping
		wantErr   error
	}{
		{"Name", ColumnMapping{Source: "Name", Dest: "Name"}, nil},
		{"  Name  ", ColumnMapping{Source: "Name", Dest: "Name"}, nil},
		{"matter id:ClientMatterCode", ColumnMapping{Source: "matter id", Dest: "ClientMatterCode"}, nil},
		{" Source : Dest ", ColumnMapping{Source: "Source", Dest: "Dest"}, nil},
		{"", ColumnMapping{}, ErrEmptyMapping},
		{"   ", ColumnMapping{}, ErrEmptyMapping},
		{"a:b:c", ColumnMapping{}, ErrMalformedMapping},
		{":Dest", ColumnMapping{}, ErrEmptySourceName},
		{"Source:", ColumnMapping{}, ErrEmptyDestName},
		{" : ", ColumnMapping{}, ErrEmptySourceName},
	}

	for _, tt := range tests {
		t.Run(tt.directive, func(t *testing.T) {
			got, err := ParseMapping(tt.directive)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseMapping(%q) error = %v, want %v", tt.directive, err, tt.wantErr)
				}
				var merr *MappingError
				if !errors.As(err, &merr) || merr.Directive != tt.directive {
					t.Errorf("ParseMapping(%q) error = %#v, want *MappingError carrying the directive", tt.directive, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMapping(%q) error = %v", tt.directive, err)
			}
			if got != tt.want {
				t.Errorf("ParseMapping(%q) = %+v, want %+v", tt.directive, got, tt.want)
			}
		})
	}
}

func TestParseMappings(t *testing.T) {
	got, err := ParseMappings([]string{"A:X", "B"})
	if err != nil {
		t.Fatalf("ParseMappings() error = %v", err)
	}
	want := []ColumnMapping{{Source: "A", Dest: "X"}, {Source: "B", Dest: "B"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("ParseMappings() = %+v, want %+v", got, want)
	}
}

func TestParseMappings_StopsAtFirstError(t *testing.T) {
	got, err := ParseMappings([]string{"A", "a:b:c", ""})

	if !errors.Is(err, ErrMalformedMapping) {
		t.Errorf("error = %v, want ErrMalformedMapping", err)
	}
	if got != nil {
		t.Errorf("result = %+v, want nil on failure", got)
	}
}

func TestMappingError_Message(t *testing.T) {
	_, err := ParseMapping("a:b:c")
	want := `invalid column mapping syntax: "a:b:c". Expected format: "Source:Dest" or "ColumnName"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
