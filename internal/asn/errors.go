package asn

import "fmt"

// StructureError reports that the expected listing table is missing from the document.
type StructureError struct {
	Selector string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("asn: no element matches %q", e.Selector)
}

// ParseError reports a cell token that could not be coerced to an integer.
type ParseError struct {
	Field string // "asn", "count" or "row"
	Token string
	Row   int // 1-based row position within the table, 0 when unknown
	Err   error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("asn: parse %s %q", e.Field, e.Token)
	if e.Row > 0 {
		msg = fmt.Sprintf("%s (row %d)", msg, e.Row)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
