package tabular

import (
	"fmt"
)

// Format identifies a supported source file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatJSON Format = "json"
)

// Table is the canonical in-memory representation of one parsed file.
// Every cell is normalized to text regardless of source type so the
// profiler has a single input domain.
type Table struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

// RowCount returns the number of data rows (post-header)
func (t *Table) RowCount() int {
	return len(t.Rows)
}

// ColumnCount returns the header length
func (t *Table) ColumnCount() int {
	return len(t.Header)
}

// Column returns all values of the column at index idx, aligned across rows.
// Rows shorter than the header contribute empty strings.
func (t *Table) Column(idx int) []string {
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values
}

// ParseError reports an unsupported extension or a malformed file payload.
// It is surfaced per file and never blocks other files' pipelines.
type ParseError struct {
	Filename string
	Reason   string
	Cause    error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Filename, e.Reason, e.Cause)
	}
	return fmt.Sprintf("parse %s: %s", e.Filename, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError for the given file
func NewParseError(filename, reason string, cause error) *ParseError {
	return &ParseError{Filename: filename, Reason: reason, Cause: cause}
}

// IsParseError checks if an error is a ParseError
func IsParseError(err error) bool {
	_, ok := err.(*ParseError)
	return ok
}
