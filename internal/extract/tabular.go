package extract

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

const previewRows = 5

// Table is one sheet of a spreadsheet or the body of a CSV file. The first
// row is treated as the header.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

var errLegacyXLS = errors.New("legacy .xls workbooks are not supported, save as .xlsx")

// Summarize parses a tabular payload and renders the summary handed to the
// completion API.
func Summarize(f Format, data []byte) (string, error) {
	var (
		tables []Table
		err    error
	)
	switch f {
	case FormatCSV:
		var t Table
		t, err = ParseCSV(data)
		tables = []Table{t}
	case FormatXLSX:
		tables, err = ParseWorkbook(data)
	case FormatXLS:
		err = errLegacyXLS
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupported, f)
	}
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for i, t := range tables {
		if i > 0 {
			b.WriteString("\n")
		}
		t.writeSummary(&b)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// ParseWorkbook reads every sheet of an .xlsx workbook.
func ParseWorkbook(data []byte) ([]Table, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	tables := make([]Table, 0, len(sheets))
	for _, name := range sheets {
		rows, err := file.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", name, err)
		}
		tables = append(tables, newTable(name, rows))
	}
	return tables, nil
}

// ParseCSV reads a comma separated file. Ragged rows are accepted.
func ParseCSV(data []byte) (Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("parse csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return newTable("", rows), nil
}

func newTable(name string, rows [][]string) Table {
	t := Table{Name: name}
	if len(rows) == 0 {
		return t
	}
	for _, h := range rows[0] {
		t.Columns = append(t.Columns, strings.TrimSpace(h))
	}
	t.Rows = rows[1:]
	return t
}

// ColumnStats describes one column of a table.
type ColumnStats struct {
	Name    string
	NonNull int
	Type    string
}

// Stats returns per-column non-empty counts and an inferred type.
func (t Table) Stats() []ColumnStats {
	stats := make([]ColumnStats, len(t.Columns))
	for i, name := range t.Columns {
		var values []string
		for _, row := range t.Rows {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				values = append(values, strings.TrimSpace(row[i]))
			}
		}
		stats[i] = ColumnStats{Name: name, NonNull: len(values), Type: inferType(values)}
	}
	return stats
}

func (t Table) writeSummary(b *strings.Builder) {
	if t.Name != "" {
		fmt.Fprintf(b, "Sheet: %s\n", t.Name)
	}
	if len(t.Columns) == 0 {
		b.WriteString("(empty)\n")
		return
	}
	fmt.Fprintf(b, "Columns: %s\n", strings.Join(t.Columns, ", "))
	fmt.Fprintf(b, "Rows: %d\n", len(t.Rows))

	n := min(previewRows, len(t.Rows))
	fmt.Fprintf(b, "First %d rows:\n", n)
	b.WriteString(strings.Join(t.Columns, " | "))
	b.WriteString("\n")
	for _, row := range t.Rows[:n] {
		b.WriteString(strings.Join(row, " | "))
		b.WriteString("\n")
	}

	b.WriteString("Column statistics:\n")
	for _, s := range t.Stats() {
		fmt.Fprintf(b, "- %s: %d non-null, %s\n", s.Name, s.NonNull, s.Type)
	}
}

var dateLayouts = []string{time.RFC3339, "2006-01-02", "2006-01-02 15:04:05", "01/02/2006", "02.01.2006"}

func inferType(values []string) string {
	if len(values) == 0 {
		return "empty"
	}
	kinds := map[string]bool{}
	for _, v := range values {
		kinds[valueType(v)] = true
	}
	switch {
	case len(kinds) == 1:
		for k := range kinds {
			return k
		}
	case len(kinds) == 2 && kinds["integer"] && kinds["number"]:
		return "number"
	}
	return "mixed"
}

func valueType(v string) string {
	if _, err := strconv.ParseInt(v, 10, 64); err == nil {
		return "integer"
	}
	if _, err := strconv.ParseFloat(v, 64); err == nil {
		return "number"
	}
	if _, err := strconv.ParseBool(strings.ToLower(v)); err == nil {
		return "boolean"
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return "date"
		}
	}
	return "text"
}
