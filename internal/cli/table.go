package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// StyledTable renders terminal tables with rounded box-drawing borders.
type StyledTable struct {
	headers []string
	rows    [][]string
	widths  []int
	plain   bool
}

// NewStyledTable creates a table with the given headers.
func NewStyledTable(headers ...string) *StyledTable {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return &StyledTable{
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
		plain:   !colorEnabled(),
	}
}

// AddRow appends a row, growing column widths to fit.
func (t *StyledTable) AddRow(cols ...string) {
	for i, c := range cols {
		if i < len(t.widths) {
			if w := runewidth.StringWidth(c); w > t.widths[i] {
				t.widths[i] = w
			}
		}
	}
	t.rows = append(t.rows, cols)
}

// RowCount returns the number of data rows.
func (t *StyledTable) RowCount() int {
	return len(t.rows)
}

// Render returns the table as a string.
func (t *StyledTable) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	headerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	style := func(s lipgloss.Style, text string) string {
		if t.plain {
			return text
		}
		return s.Render(text)
	}

	hline := func(left, mid, right string) string {
		var line strings.Builder
		line.WriteString(left)
		for i, w := range t.widths {
			line.WriteString(strings.Repeat("─", w+2))
			if i < len(t.widths)-1 {
				line.WriteString(mid)
			}
		}
		line.WriteString(right)
		return style(borderStyle, line.String())
	}

	row := func(cells []string, cellStyle lipgloss.Style) string {
		var line strings.Builder
		line.WriteString(style(borderStyle, "│"))
		for i := range t.headers {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			padded := cell + strings.Repeat(" ", t.widths[i]-runewidth.StringWidth(cell))
			line.WriteString(" ")
			line.WriteString(style(cellStyle, padded))
			line.WriteString(" ")
			line.WriteString(style(borderStyle, "│"))
		}
		return line.String()
	}

	var sb strings.Builder
	sb.WriteString(hline("╭", "┬", "╮"))
	sb.WriteString("\n")
	sb.WriteString(row(t.headers, headerStyle))
	sb.WriteString("\n")
	sb.WriteString(hline("├", "┼", "┤"))
	sb.WriteString("\n")
	for _, r := range t.rows {
		sb.WriteString(row(r, lipgloss.NewStyle()))
		sb.WriteString("\n")
	}
	sb.WriteString(hline("╰", "┴", "╯"))
	return sb.String()
}
