package record

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

// HistoryColumns is the column order of the calculator history.
var HistoryColumns = []string{ColName, ColSex, ColRace, ColAge, ColHeight, ColWeight, ColBMI, ColCategory}

// SyntheticColumns is the column order of generated demo data.
var SyntheticColumns = []string{ColName, ColSex, ColAge, ColHeight, ColWeight, ColRace, ColBMI, ColCategory}

// Table is the uniform tabular shape fed to the dashboard.
type Table struct {
	// Name identifies the source (file name, "demo", "history").
	Name    string
	Columns []string
	Rows    []Person
}

// NewTable builds a table with the given columns. The derived columns are appended
// when the column list does not already carry them.
func NewTable(name string, columns []string, rows []Person) *Table {
	return &Table{Name: name, Columns: WithDerivedColumns(columns), Rows: rows}
}

// WithDerivedColumns returns columns with bmi and category present exactly once.
func WithDerivedColumns(columns []string) []string {
	out := make([]string, 0, len(columns)+2)
	var hasBMI, hasCat bool
	for _, c := range columns {
		switch c {
		case ColBMI:
			hasBMI = true
		case ColCategory:
			hasCat = true
		}
		out = append(out, c)
	}
	if !hasBMI {
		out = append(out, ColBMI)
	}
	if !hasCat {
		out = append(out, ColCategory)
	}
	return out
}

// Len returns the number of rows; a nil table has none.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// HasColumn reports whether the named column is part of the table.
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	for _, c := range t.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// WriteCSV writes the header and every row as UTF-8 CSV without an index column.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(t.Columns))
	for i, p := range t.Rows {
		for j, c := range t.Columns {
			row[j] = p.Field(c)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// CSV returns the table encoded by WriteCSV.
func (t *Table) CSV() ([]byte, error) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
