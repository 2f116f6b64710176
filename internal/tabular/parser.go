// Package tabular decodes raw CSV, XLSX, and JSON files into the canonical
// header+rows table consumed by the profiler. All cell values come out as
// text so type inference has a single input domain.
package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"daxforge/domain/tabular"

	"github.com/xuri/excelize/v2"
)

// Parser decodes raw files into canonical tables
type Parser struct{}

// NewParser creates a new parser
func NewParser() *Parser {
	return &Parser{}
}

// SupportedExtension reports whether the filename carries an extension the
// parser can decode
func SupportedExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls", ".json":
		return true
	}
	return false
}

// Parse decodes the file according to its declared extension.
// Unsupported extensions fail with a ParseError naming the extension.
func (p *Parser) Parse(filename string, r io.Reader) (*tabular.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, tabular.NewParseError(filename, "failed to read file", err)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return p.parseCSV(filename, data)
	case ".xlsx", ".xls":
		return p.parseSpreadsheet(filename, data)
	case ".json":
		return p.parseJSON(filename, data)
	default:
		return nil, tabular.NewParseError(filename, fmt.Sprintf("unsupported file type %q", ext), nil)
	}
}

// parseCSV splits on newlines and commas. Quoted commas and embedded
// newlines are deliberately unsupported; surrounding double quotes are
// stripped per cell. This is the documented contract, not an oversight.
func (p *Parser) parseCSV(filename string, data []byte) (*tabular.Table, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, tabular.NewParseError(filename, "empty CSV file", nil)
	}

	header := splitCSVLine(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		cells := splitCSVLine(line)
		rows = append(rows, alignRow(cells, len(header)))
	}

	return &tabular.Table{Header: header, Rows: rows}, nil
}

func splitCSVLine(line string) []string {
	parts := strings.Split(line, ",")
	cells := make([]string, len(parts))
	for i, part := range parts {
		cell := strings.TrimSpace(part)
		if len(cell) >= 2 && strings.HasPrefix(cell, `"`) && strings.HasSuffix(cell, `"`) {
			cell = cell[1 : len(cell)-1]
		}
		cells[i] = cell
	}
	return cells
}

// parseSpreadsheet reads the first sheet only. The first row is the header;
// columns beyond the header length are ignored and missing cells default to
// empty strings.
func (p *Parser) parseSpreadsheet(filename string, data []byte) (*tabular.Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, tabular.NewParseError(filename, "failed to open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, tabular.NewParseError(filename, "spreadsheet has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, tabular.NewParseError(filename, fmt.Sprintf("failed to read sheet %q", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, tabular.NewParseError(filename, "spreadsheet has no rows", nil)
	}

	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = strings.TrimSpace(cell)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		dataRows = append(dataRows, alignRow(row, len(header)))
	}

	return &tabular.Table{Header: header, Rows: dataRows}, nil
}

// parseJSON requires a non-empty array of objects. The header is the key set
// of the first element in encounter order; later elements contribute one row
// each by header-key lookup.
func (p *Parser) parseJSON(filename string, data []byte) (*tabular.Table, error) {
	var elements []json.RawMessage
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, tabular.NewParseError(filename, "JSON payload must be an array of objects", err)
	}
	if len(elements) == 0 {
		return nil, tabular.NewParseError(filename, "JSON array is empty", nil)
	}

	header, err := objectKeys(elements[0])
	if err != nil {
		return nil, tabular.NewParseError(filename, "JSON array elements must be objects", err)
	}

	rows := make([][]string, 0, len(elements))
	for i, element := range elements {
		fields := make(map[string]json.RawMessage)
		if err := json.Unmarshal(element, &fields); err != nil {
			return nil, tabular.NewParseError(filename, fmt.Sprintf("JSON element %d is not an object", i), err)
		}

		row := make([]string, len(header))
		for j, key := range header {
			raw, ok := fields[key]
			if !ok {
				continue // missing key stays empty
			}
			row[j] = stringifyJSONValue(raw)
		}
		rows = append(rows, row)
	}

	return &tabular.Table{Header: header, Rows: rows}, nil
}

// objectKeys walks the raw object's tokens to preserve key encounter order,
// which encoding/json maps would lose.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// stringifyJSONValue normalizes one JSON value to text. Numbers keep their
// source formatting, null becomes empty, and non-primitives are re-serialized
// as compact JSON.
func stringifyJSONValue(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
		return string(trimmed)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
		return string(trimmed)
	default:
		// numbers and booleans keep their literal form
		return string(trimmed)
	}
}

// alignRow pads or truncates a row to the header length
func alignRow(cells []string, width int) []string {
	row := make([]string, width)
	for i := 0; i < width && i < len(cells); i++ {
		row[i] = cells[i]
	}
	return row
}
