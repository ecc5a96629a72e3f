package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
}

// Row is a slice of cell values.
type Row []string

// Table renders a fixed-width lipgloss table.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
	// Empty is shown in place of rows when there are none.
	Empty string
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, Row(cells))
}

// Render returns the full table as a string. Cells are padded by hand so
// column widths are exact.
func (t *Table) Render() string {
	var sb strings.Builder

	header := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	titles := make(Row, len(t.Columns))
	rules := make(Row, len(t.Columns))
	for i, col := range t.Columns {
		titles[i] = col.Title
		rules[i] = strings.Repeat("-", col.Width)
	}
	t.writeRow(&sb, titles, header)
	t.writeRow(&sb, rules, StyleDim)

	if len(t.Rows) == 0 && t.Empty != "" {
		sb.WriteString(StyleMeta.Render(t.Empty) + "\n")
		return sb.String()
	}
	cell := lipgloss.NewStyle().Foreground(ColorValue)
	for i, row := range t.Rows {
		style := cell
		if i == t.SelIdx {
			style = StyleSelected
		}
		t.writeRow(&sb, row, style)
	}
	return sb.String()
}

func (t *Table) writeRow(sb *strings.Builder, row Row, style lipgloss.Style) {
	cells := make([]string, len(t.Columns))
	for j, col := range t.Columns {
		val := ""
		if j < len(row) {
			val = row[j]
		}
		cells[j] = style.Render(fit(val, col.Width))
	}
	sb.WriteString(strings.Join(cells, " "))
	sb.WriteString("\n")
}

// fit left-aligns s within exactly width runes, truncating with an ellipsis.
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		if width <= 1 {
			return string(r[:width])
		}
		return string(r[:width-1]) + "…"
	}
	return s + strings.Repeat(" ", width-len(r))
}

// KeyValueBlock renders a set of key-value pairs in a bordered box. Pairs
// with an empty value are skipped.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for _, p := range pairs {
		if p[1] == "" {
			continue
		}
		key := StyleMeta.Render(fmt.Sprintf("%-16s", p[0]+":"))
		sb.WriteString("  " + key + " " + StyleValue.Render(p[1]) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
