// Package dataset models the in-memory tabular data that analyses run
// against: ordered, named, typed columns of equal length. Tables are built
// once by a loader (or from an API payload) and are never mutated by the
// analysis core.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// DType is the declared scalar type of a column.
type DType string

const (
	DTypeString DType = "string"
	DTypeInt    DType = "int"
	DTypeFloat  DType = "float"
	DTypeBool   DType = "bool"
)

// Value is a single cell. nil marks a missing value.
type Value = any

// Column is a named, typed sequence of cells.
type Column struct {
	Name  string
	Type  DType
	Cells []Value
}

// Table is an immutable tabular dataset.
type Table struct {
	name string
	cols []Column
	rows int
}

// New validates the column set and builds a table. All columns must have the
// same length and names must be unique.
func New(name string, cols []Column) (*Table, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("dataset %q has no columns", name)
	}

	rows := len(cols[0].Cells)
	seen := make(map[string]bool, len(cols))
	for _, col := range cols {
		if col.Name == "" {
			return nil, fmt.Errorf("dataset %q has an unnamed column", name)
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("dataset %q has duplicate column %q", name, col.Name)
		}
		seen[col.Name] = true
		if len(col.Cells) != rows {
			return nil, fmt.Errorf("dataset %q: column %q has %d cells, expected %d",
				name, col.Name, len(col.Cells), rows)
		}
	}

	return &Table{name: name, cols: cols, rows: rows}, nil
}

// FromRecords builds a table from a header plus row-major cells, inferring a
// dtype for every column. Cells may be strings, numbers, bools or nil; this
// is the entry point for API payloads and loaders alike.
func FromRecords(name string, header []string, rows [][]Value) (*Table, error) {
	cols := make([]Column, len(header))
	for i, colName := range header {
		cells := make([]Value, len(rows))
		for r, row := range rows {
			if i < len(row) {
				cells[r] = row[i]
			}
		}
		typ, typed := inferColumn(cells)
		cols[i] = Column{Name: colName, Type: typ, Cells: typed}
	}
	return New(name, cols)
}

// Name returns the dataset name (usually the source file base name).
func (t *Table) Name() string { return t.name }

// NumRows returns the row count.
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the column count.
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the ordered column set. Callers must not modify it.
func (t *Table) Columns() []Column { return t.cols }

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// DTypes returns the ordered per-column type names.
func (t *Table) DTypes() []string {
	types := make([]string, len(t.cols))
	for i, c := range t.cols {
		types[i] = string(c.Type)
	}
	return types
}

// Row returns row i as a slice ordered like Columns.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.cols))
	for c, col := range t.cols {
		row[c] = col.Cells[i]
	}
	return row
}

// PromptContext renders a compact, text-only description of the table for
// inclusion in the agent instruction: shape, column schema and a bounded
// preview of rows.
func (t *Table) PromptContext(maxRows int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset %q: %d rows x %d columns.\n", t.name, t.rows, len(t.cols))
	b.WriteString("Columns:\n")
	for _, c := range t.cols {
		fmt.Fprintf(&b, "  - %s (%s)\n", c.Name, c.Type)
	}

	n := t.rows
	if maxRows > 0 && n > maxRows {
		n = maxRows
	}
	if n == 0 {
		return b.String()
	}

	b.WriteString("Data preview:\n")
	b.WriteString(strings.Join(t.ColumnNames(), " | "))
	b.WriteByte('\n')
	for i := 0; i < n; i++ {
		cells := make([]string, len(t.cols))
		for c := range t.cols {
			cells[c] = FormatValue(t.cols[c].Cells[i])
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	if n < t.rows {
		fmt.Fprintf(&b, "... (%d more rows)\n", t.rows-n)
	}
	return b.String()
}

// FormatValue renders a cell for display and prompt contexts.
func FormatValue(v Value) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// inferColumn picks the narrowest dtype every non-missing cell fits and
// converts cells to that type. Order: int, float, bool, string.
func inferColumn(cells []Value) (DType, []Value) {
	isInt, isFloat, isBool := true, true, true
	nonEmpty := false
	for _, v := range cells {
		if isMissing(v) {
			continue
		}
		nonEmpty = true
		if _, ok := asInt(v); !ok {
			isInt = false
		}
		if _, ok := asFloat(v); !ok {
			isFloat = false
		}
		if _, ok := asBool(v); !ok {
			isBool = false
		}
	}
	if !nonEmpty {
		return DTypeString, normalizeCells(cells, DTypeString)
	}
	switch {
	case isInt:
		return DTypeInt, normalizeCells(cells, DTypeInt)
	case isFloat:
		return DTypeFloat, normalizeCells(cells, DTypeFloat)
	case isBool:
		return DTypeBool, normalizeCells(cells, DTypeBool)
	default:
		return DTypeString, normalizeCells(cells, DTypeString)
	}
}

func normalizeCells(cells []Value, typ DType) []Value {
	out := make([]Value, len(cells))
	for i, v := range cells {
		if isMissing(v) {
			out[i] = nil
			continue
		}
		switch typ {
		case DTypeInt:
			n, _ := asInt(v)
			out[i] = n
		case DTypeFloat:
			f, _ := asFloat(v)
			out[i] = f
		case DTypeBool:
			b, _ := asBool(v)
			out[i] = b
		default:
			out[i] = FormatValue(v)
		}
	}
	return out
}

func isMissing(v Value) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && strings.TrimSpace(s) == ""
}

func asInt(v Value) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case float64:
		if x == float64(int64(x)) {
			return int64(x), true
		}
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err == nil {
			return n, true
		}
	}
	return 0, false
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}

func asBool(v Value) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "yes":
			return true, true
		case "false", "no":
			return false, true
		}
	}
	return false, false
}
