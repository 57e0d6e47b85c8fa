// Package cli renders bordered tables and titles for one-shot command
// output, colored from the active theme.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

// Table is a bordered text table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

func styles() (header, value, dim lipgloss.Style) {
	t := theme.Active
	header = lipgloss.NewStyle().Bold(true).Foreground(t.Accent)
	value = lipgloss.NewStyle().Foreground(t.TextPrimary)
	dim = lipgloss.NewStyle().Foreground(t.TextDim)
	return
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	t := theme.Active
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Width(55).
		Align(lipgloss.Center).
		Padding(0, 1)
	text := lipgloss.NewStyle().Bold(true).Foreground(t.TextPrimary)
	return border.Render(text.Render(title))
}

// RenderTable renders a bordered table with headers and rows. The first
// column is left-aligned, the rest right-aligned. A single-cell row of
// "---" renders as a horizontal separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	headerStyle, valueStyle, dimStyle := styles()

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if len(h) > widths[i] {
				widths[i] = len(h)
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols && len(cell) > widths[i] {
					widths[i] = len(cell)
				}
			}
		}
	}

	rule := func(left, mid, right string) string {
		var r strings.Builder
		r.WriteString(left)
		for i, w := range widths {
			r.WriteString(strings.Repeat("─", w+2))
			if i < numCols-1 {
				r.WriteString(mid)
			}
		}
		r.WriteString(right)
		return dimStyle.Render(r.String())
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	b.WriteString(rule("╭", "┬", "╮"))
	b.WriteString("\n")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(fmt.Sprintf(" %-*s ", widths[i], h)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		b.WriteString(rule("├", "┼", "┤"))
		b.WriteString("\n")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			b.WriteString(rule("├", "┼", "┤"))
			b.WriteString("\n")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	b.WriteString(rule("╰", "┴", "╯"))
	b.WriteString("\n")

	return b.String()
}
