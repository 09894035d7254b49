package dataset

import (
	"fmt"
	"strings"

	"lyricrater/internal/services"
)

// Table is a header row plus data rows. Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, col := range t.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// Require reports every missing column at once.
func (t *Table) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if t.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrValidation, "dataset", "require columns",
		fmt.Sprintf("missing required column(s): %s (found: %s)", strings.Join(missing, ", "), strings.Join(t.Columns, ", ")), nil)
}

// Cell returns the value at row for the named column, or "" when the column is absent.
func (t *Table) Cell(row int, name string) string {
	idx := t.ColumnIndex(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// SetCell writes value into the named column, appending the column if needed.
func (t *Table) SetCell(row int, name, value string) {
	idx := t.ensureColumn(name)
	t.Rows[row][idx] = value
}

// SetColumn replaces (or appends) a whole column. Missing values are left blank.
func (t *Table) SetColumn(name string, values []string) {
	idx := t.ensureColumn(name)
	for i := range t.Rows {
		if i < len(values) {
			t.Rows[i][idx] = values[i]
		} else {
			t.Rows[i][idx] = ""
		}
	}
}

func (t *Table) ensureColumn(name string) int {
	if idx := t.ColumnIndex(name); idx >= 0 {
		return idx
	}
	t.Columns = append(t.Columns, name)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Columns) - 1
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// fromRecords builds a Table from raw records: the first non-empty record is
// the header, trailing blank rows are dropped, short rows are padded, and
// cells past the header width are discarded.
func fromRecords(records [][]string) (*Table, error) {
	for len(records) > 0 && blankRecord(records[len(records)-1]) {
		records = records[:len(records)-1]
	}
	for len(records) > 0 && blankRecord(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrValidation, "dataset", "parse", "input has no header row", nil)
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.TrimSpace(name)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	table := &Table{Columns: header, Rows: make([][]string, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]string, len(header))
		copy(row, record)
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
