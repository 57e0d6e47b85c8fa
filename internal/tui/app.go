// Package tui provides the live Bubble Tea dashboard for ccpulse.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/theirongolddev/ccpulse/internal/monitor"
	"github.com/theirongolddev/ccpulse/internal/tui/components"
	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

// SnapshotMsg delivers a completed refresh cycle.
type SnapshotMsg struct {
	Snap  monitor.Snapshot
	State monitor.State
}

type tickMsg struct{}
type watchMsg struct{}

const (
	minTerminalWidth = 60
	maxContentWidth  = 100
	gaugeLabelWidth  = 10
)

// App is the root Bubble Tea model. One refresh cycle runs at a time; the
// tick only starts a new cycle after the previous one has delivered its
// snapshot, so cycles never overlap.
type App struct {
	opts  monitor.Options
	state monitor.State

	snap   *monitor.Snapshot
	loaded bool

	collecting bool
	dirty      bool // a watch event arrived while a cycle was running

	watch <-chan struct{}

	spinner spinner.Model
	width   int
	height  int
}

// NewApp creates the dashboard model. watch may be nil when the filesystem
// watcher is unavailable; the ticker alone then drives refreshes.
func NewApp(opts monitor.Options, watch <-chan struct{}) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	return App{
		opts:    opts,
		watch:   watch,
		spinner: sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		a.collectCmd(),
		a.spinner.Tick,
		tickCmd(a.opts.Prefs.RefreshInterval()),
	}
	if a.watch != nil {
		cmds = append(cmds, waitForWatch(a.watch))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "r":
			if !a.collecting {
				a.collecting = true
				return a, a.collectCmd()
			}
		}
		return a, nil

	case SnapshotMsg:
		snap := msg.Snap
		a.snap = &snap
		a.state = msg.State
		a.loaded = true
		a.collecting = false
		if a.dirty {
			// A log changed mid-cycle; pick it up without waiting a tick.
			a.dirty = false
			a.collecting = true
			return a, a.collectCmd()
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(a.opts.Prefs.RefreshInterval())}
		if !a.collecting {
			a.collecting = true
			cmds = append(cmds, a.collectCmd())
		}
		return a, tea.Batch(cmds...)

	case watchMsg:
		cmds := []tea.Cmd{waitForWatch(a.watch)}
		if a.collecting {
			a.dirty = true
		} else {
			a.collecting = true
			cmds = append(cmds, a.collectCmd())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	return a, nil
}

// collectCmd runs one refresh cycle in the background. A cycle that panics
// is treated as a no-op: the previous snapshot and state are re-delivered
// and the next tick retries from scratch.
func (a App) collectCmd() tea.Cmd {
	opts, st, prev := a.opts, a.state, a.snap
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				logger := opts.Logger
				if logger == nil {
					logger = log.Default()
				}
				logger.Error("refresh cycle failed", "panic", r)
				out := SnapshotMsg{State: st}
				if prev != nil {
					out.Snap = *prev
				}
				msg = out
			}
		}()
		snap, next := monitor.Collect(context.Background(), opts, st)
		return SnapshotMsg{Snap: snap, State: next}
	}
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func waitForWatch(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return watchMsg{}
	}
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  ccpulse needs at least %d columns.\n", a.width, minTerminalWidth)
	}
	if !a.loaded {
		return fmt.Sprintf("\n  %s loading usage logs...\n", a.spinner.View())
	}
	return a.viewDashboard()
}

func (a App) viewDashboard() string {
	t := theme.Active
	snap := *a.snap
	prefs := a.opts.Prefs

	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	barW := cw - gaugeLabelWidth - 12
	if barW < 10 {
		barW = 10
	}

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)

	var b strings.Builder

	// Header
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("◈ ccpulse"))
	b.WriteString(mutedStyle.Render(" · Claude Code usage monitor"))
	if snap.Branch != "" {
		b.WriteString(mutedStyle.Render("  ⎇ " + snap.Branch))
	}
	b.WriteString("\n\n")

	// Session window
	if snap.Active != nil {
		blk := snap.Active
		window := blk.EndTime.Sub(blk.StartTime)
		elapsedPct := 0.0
		if window > 0 {
			elapsedPct = blk.DurationElapsed(snap.At).Minutes() / window.Minutes() * 100
		}
		countdown := FormatCountdown(blk.EndTime.Sub(snap.At))
		timeLevel := components.LevelFor(elapsedPct, prefs.TimeWarnPct, prefs.TimeCritPct)

		b.WriteString("  ")
		b.WriteString(components.TimeBar("Window", elapsedPct, timeLevel, countdown+" left", gaugeLabelWidth, barW))
		b.WriteString("\n")
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%*s %s → %s",
			gaugeLabelWidth, "",
			blk.StartTime.Local().Format("15:04"),
			blk.EndTime.Local().Format("15:04"))))
		b.WriteString("\n\n")

		// Usage
		usagePct := 0.0
		if snap.EffectiveLimit > 0 {
			usagePct = float64(blk.TokenCounts.Total()) / float64(snap.EffectiveLimit) * 100
		}
		level := components.LevelFor(usagePct, prefs.UsageWarnPct, prefs.UsageCritPct)
		b.WriteString("  ")
		b.WriteString(components.Gauge("Tokens", usagePct, level, gaugeLabelWidth, barW))
		b.WriteString("\n")
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%*s %s / %s · %s",
			gaugeLabelWidth, "",
			FormatTokens(blk.TokenCounts.Total()),
			FormatTokens(snap.EffectiveLimit),
			FormatCost(blk.CostUSD))))
		b.WriteString("\n\n")

		// Burn rate and projection
		b.WriteString("  ")
		if snap.Burn != nil {
			burnLevel := components.LevelFor(snap.Burn.TokensPerMinuteForIndicator,
				prefs.BurnWarnTokensPerMin, prefs.BurnCritTokensPerMin)
			burnStyle := lipgloss.NewStyle().Foreground(burnLevel.Color()).Bold(true)
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", gaugeLabelWidth, "Burn")))
			b.WriteString(" ")
			b.WriteString(burnStyle.Render("🔥 " + FormatRate(snap.Burn.TokensPerMinute)))
			b.WriteString(mutedStyle.Render(fmt.Sprintf(" · %s/hr", FormatCost(snap.Burn.CostPerHour))))
		} else {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", gaugeLabelWidth, "Burn")))
			b.WriteString(" ")
			b.WriteString(dimStyle.Render("—"))
		}
		b.WriteString("\n")

		b.WriteString("  ")
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", gaugeLabelWidth, "Projected")))
		b.WriteString(" ")
		if snap.Projection != nil {
			proj := snap.Projection
			projStyle := valueStyle
			note := ""
			if snap.EffectiveLimit > 0 && proj.TotalTokens > snap.EffectiveLimit {
				projStyle = lipgloss.NewStyle().Foreground(t.Red).Bold(true)
				note = " (exceeds limit)"
			}
			b.WriteString(projStyle.Render(fmt.Sprintf("%s tokens · %s%s",
				FormatTokens(proj.TotalTokens), FormatCost(proj.TotalCost), note)))
		} else {
			b.WriteString(dimStyle.Render("—"))
		}
		b.WriteString("\n\n")

		if len(blk.Models) > 0 {
			b.WriteString("  ")
			b.WriteString(dimStyle.Render("models: " + strings.Join(blk.Models, ", ")))
			b.WriteString("\n\n")
		}
	} else {
		b.WriteString("  ")
		b.WriteString(dimStyle.Render("No active session block. Waiting for activity."))
		b.WriteString("\n\n")
	}

	// Context estimate for the current project
	b.WriteString("  ")
	if snap.Context != nil && prefs.ContextTokenLimit > 0 {
		ctxTokens := snap.Context.ContextTokens()
		ctxPct := float64(ctxTokens) / float64(prefs.ContextTokenLimit) * 100
		level := components.LevelFor(ctxPct, prefs.ContextWarnPct, prefs.ContextCritPct)
		b.WriteString(components.Gauge("Context", ctxPct, level, gaugeLabelWidth, barW))
		b.WriteString("\n")
		b.WriteString("  ")
		b.WriteString(dimStyle.Render(fmt.Sprintf("%*s %s / %s",
			gaugeLabelWidth, "",
			FormatTokens(ctxTokens),
			FormatTokens(prefs.ContextTokenLimit))))
	} else {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-*s", gaugeLabelWidth, "Context")))
		b.WriteString(" ")
		b.WriteString(dimStyle.Render("no session matches this directory"))
	}
	b.WriteString("\n\n")

	// Footer
	footer := fmt.Sprintf("refreshed %s · %s records · high water %s · q quit · r refresh",
		snap.At.Local().Format("15:04:05"),
		FormatNumber(int64(snap.RecordCount)),
		FormatTokens(snap.HighWater))
	b.WriteString("  ")
	b.WriteString(dimStyle.Render(footer))
	b.WriteString("\n")

	return b.String()
}
