package core

import "strings"

// mappingSeparator splits "Source:Dest" directives.
const mappingSeparator = ":"

// ColumnMapping selects a source column and names it in the output.
// Source and Dest are never empty; without a rename they are equal.
type ColumnMapping struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// ParseMapping parses one directive: "Name" keeps a column as-is and
// "Source:Dest" renames it. Surrounding whitespace is ignored on both sides.
func ParseMapping(directive string) (ColumnMapping, error) {
	s := strings.TrimSpace(directive)
	if s == "" {
		return ColumnMapping{}, &MappingError{Directive: directive, Err: ErrEmptyMapping}
	}

	if !strings.Contains(s, mappingSeparator) {
		return ColumnMapping{Source: s, Dest: s}, nil
	}

	parts := strings.Split(s, mappingSeparator)
	if len(parts) != 2 {
		return ColumnMapping{}, &MappingError{Directive: directive, Err: ErrMalformedMapping}
	}

	source := strings.TrimSpace(parts[0])
	dest := strings.TrimSpace(parts[1])
	if source == "" {
		return ColumnMapping{}, &MappingError{Directive: directive, Err: ErrEmptySourceName}
	}
	if dest == "" {
		return ColumnMapping{}, &MappingError{Directive: directive, Err: ErrEmptyDestName}
	}

	return ColumnMapping{Source: source, Dest: dest}, nil
}

// ParseMappings parses directives in order and stops at the first error.
// No partial result is returned on failure.
func ParseMappings(directives []string) ([]ColumnMapping, error) {
	mappings := make([]ColumnMapping, 0, len(directives))
	for _, d := range directives {
		m, err := ParseMapping(d)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}
