package dataset

import "fmt"

// IOError indicates the source could not be read: missing file, unreadable
// content, or rows that do not match the header's column count.
type IOError struct {
	Step string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return "io error"
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SchemaError indicates the source is readable but does not carry the
// expected columns or labels.
type SchemaError struct {
	Step   string
	Column string
	// Row is the 1-based data row (header excluded); 0 when not row-specific.
	Row int
	Msg string
}

func (e *SchemaError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: row %d, column %q: %s", e.Step, e.Row, e.Column, e.Msg)
	case e.Column != "":
		return fmt.Sprintf("%s: column %q: %s", e.Step, e.Column, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Step, e.Msg)
	}
}
