package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxColumnWidth caps a column so long branch names do not push the table
// off screen.
const maxColumnWidth = 48

// Table renders rows as space-aligned columns. Widths are measured in
// terminal cells, so emoji and CJK names line up.
type Table struct {
	headers []string
	rows    [][]string
}

// NewTable returns a table with the given column headers.
func NewTable(headers ...string) *Table {
	return &Table{headers: headers}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := make([]int, len(t.headers))
	measure := func(row []string) {
		for i, cell := range row {
			if n := runewidth.StringWidth(cell); n > widths[i] {
				widths[i] = min(n, maxColumnWidth)
			}
		}
	}
	measure(t.headers)
	for _, row := range t.rows {
		measure(row)
	}

	if err := t.writeRow(w, t.headers, widths); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := t.writeRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) writeRow(w io.Writer, row []string, widths []int) error {
	cells := make([]string, len(row))
	for i, cell := range row {
		cell = runewidth.Truncate(cell, widths[i], "…")
		if i == len(row)-1 {
			cells[i] = cell
			continue
		}
		cells[i] = runewidth.FillRight(cell, widths[i])
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " "))
	return err
}
