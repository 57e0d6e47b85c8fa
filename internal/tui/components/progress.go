// Package components holds reusable rendering pieces for the dashboard.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

// Level classifies a gauge reading against its warn/critical thresholds.
type Level int

const (
	LevelOK Level = iota
	LevelWarn
	LevelCrit
)

// LevelFor classifies pct (0-100) against warn/crit thresholds (0-100).
func LevelFor(pct, warn, crit float64) Level {
	switch {
	case crit > 0 && pct >= crit:
		return LevelCrit
	case warn > 0 && pct >= warn:
		return LevelWarn
	default:
		return LevelOK
	}
}

// Color returns the theme color for a level.
func (l Level) Color() lipgloss.Color {
	t := theme.Active
	switch l {
	case LevelCrit:
		return t.Red
	case LevelWarn:
		return t.Orange
	default:
		return t.Green
	}
}

// Gauge renders a labeled bar with a percentage readout. The visual fill is
// clamped to [0, 100] but the printed percentage is not: over-limit is a
// real state and only the bar saturates.
func Gauge(label string, pct float64, level Level, labelW, barWidth int) string {
	t := theme.Active

	fill := pct
	if fill < 0 {
		fill = 0
	}
	if fill > 100 {
		fill = 100
	}

	bar := progress.New(
		progress.WithSolidFill(string(level.Color())),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	pctStyle := lipgloss.NewStyle().Foreground(level.Color()).Bold(true)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		" " +
		bar.ViewAs(fill/100) +
		" " +
		pctStyle.Render(fmt.Sprintf("%5.1f%%", pct))
}

// TimeBar renders the session window elapsed bar with a countdown suffix.
// The fill stays accent-colored until the elapsed fraction crosses a
// threshold level.
func TimeBar(label string, elapsedPct float64, level Level, countdown string, labelW, barWidth int) string {
	t := theme.Active

	fill := elapsedPct
	if fill < 0 {
		fill = 0
	}
	if fill > 100 {
		fill = 100
	}
	filled := int(fill / 100 * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}

	fillColor := t.Accent
	if level != LevelOK {
		fillColor = level.Color()
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	fillStyle := lipgloss.NewStyle().Foreground(fillColor)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	cdStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		" " +
		fillStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", barWidth-filled)) +
		" " +
		cdStyle.Render(countdown)
}
