package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Terminal styles. lipgloss drops the colors when stdout is not a terminal.
var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
)

// table renders static rows under a title.
type table struct {
	title   string
	headers []string
	rows    [][]string
}

func newTable(title string, headers ...string) *table {
	return &table{title: title, headers: headers}
}

func (t *table) addRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// String renders the table. An empty table renders its title and a placeholder.
func (t *table) String() string {
	var sb strings.Builder
	if t.title != "" {
		sb.WriteString(titleStyle.Render(t.title))
		sb.WriteString("\n")
	}
	if len(t.rows) == 0 {
		sb.WriteString(mutedStyle.Render("  (none)"))
		sb.WriteString("\n\n")
		return sb.String()
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	sep := mutedStyle.Render("|")
	writeRow := func(cells []string, style lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if i > 0 {
				sb.WriteString(sep)
			}
			// Width includes the padding
			sb.WriteString(style.Padding(0, 1).Width(widths[i] + 2).Render(cell))
		}
		sb.WriteString("\n")
	}

	writeRow(t.headers, headerStyle)
	total := len(widths) - 1
	for _, w := range widths {
		total += w + 2
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("-", total)))
	sb.WriteString("\n")
	for _, row := range t.rows {
		writeRow(row, lipgloss.NewStyle())
	}
	sb.WriteString("\n")
	return sb.String()
}
