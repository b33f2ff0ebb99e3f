// Package ui renders favorites for a terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Column describes one column of a ResultsTable.
type Column struct {
	// WidthRatio is the share of the flexible width. Zero means MinWidth.
	WidthRatio float64
	MinWidth   int
	MaxWidth   int
	AlignRight bool
	Style      lipgloss.Style
}

var (
	// ColRow is the muted, right-aligned row number column.
	ColRow = Column{MinWidth: 4, MaxWidth: 6, AlignRight: true, Style: Muted}

	// ColName holds the display name.
	ColName = Column{WidthRatio: 0.45, MinWidth: 16, MaxWidth: 60}

	// ColID holds the favorite id.
	ColID = Column{WidthRatio: 0.55, MinWidth: 16, MaxWidth: 80, Style: Muted}

	// FavoritesLayout is [row, name, id].
	FavoritesLayout = []Column{ColRow, ColName, ColID}
)

const (
	columnPadding = 2
	leftMargin    = 2
)

// ResultsTable renders rows as an unbordered lipgloss table.
type ResultsTable struct {
	display *DisplayContext
	columns []Column
	rows    [][]string
}

func NewResultsTable(display *DisplayContext, columns []Column) *ResultsTable {
	return &ResultsTable{display: display, columns: columns}
}

// AddRow appends a row. Missing cells render empty and long cells are
// truncated to their column width.
func (t *ResultsTable) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len reports the number of rows added.
func (t *ResultsTable) Len() int { return len(t.rows) }

func (t *ResultsTable) widths() []int {
	widths := make([]int, len(t.columns))
	var ratio float64
	fixed := 0
	for i, c := range t.columns {
		if c.WidthRatio == 0 {
			widths[i] = c.MinWidth
			fixed += c.MinWidth
			continue
		}
		ratio += c.WidthRatio
	}

	available := t.display.TermWidth - fixed - leftMargin - (len(t.columns)-1)*columnPadding
	if available < 0 {
		available = 0
	}
	for i, c := range t.columns {
		if c.WidthRatio == 0 {
			continue
		}
		w := int(float64(available) * c.WidthRatio / ratio)
		if w < c.MinWidth {
			w = c.MinWidth
		}
		if c.MaxWidth > 0 && w > c.MaxWidth {
			w = c.MaxWidth
		}
		widths[i] = w
	}
	return widths
}

// Render returns the table, or "" when it has no rows.
func (t *ResultsTable) Render() string {
	if len(t.rows) == 0 {
		return ""
	}
	widths := t.widths()

	data := make([][]string, len(t.rows))
	for i, row := range t.rows {
		cells := make([]string, len(t.columns))
		for j := range t.columns {
			if j < len(row) {
				cells[j] = Truncate(row[j], widths[j])
			}
		}
		data[i] = cells
	}

	tbl := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderRow(false).
		BorderColumn(false).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col >= len(t.columns) {
				return lipgloss.NewStyle()
			}
			c := t.columns[col]
			width := widths[col]
			if col < len(t.columns)-1 {
				width += columnPadding
			}
			style := c.Style.Width(width)
			if c.AlignRight {
				style = style.Align(lipgloss.Right)
			} else {
				style = style.Align(lipgloss.Left)
			}
			if col < len(t.columns)-1 {
				style = style.PaddingRight(columnPadding)
			}
			return style
		}).
		Rows(data...)

	indent := strings.Repeat(" ", leftMargin)
	lines := strings.Split(tbl.Render(), "\n")
	for i, l := range lines {
		lines[i] = indent + strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

// Heading renders "title (n)" in bold.
func Heading(title string, n int) string {
	return Bold.Render(fmt.Sprintf("%s (%d)", title, n))
}

// Truncate shortens s to max runes, ending in "..." when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
