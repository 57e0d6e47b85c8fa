// Package cmd implements the ccpulse CLI commands.
package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccpulse/internal/config"
	"github.com/theirongolddev/ccpulse/internal/gitinfo"
	"github.com/theirongolddev/ccpulse/internal/monitor"
	"github.com/theirongolddev/ccpulse/internal/store"
	"github.com/theirongolddev/ccpulse/internal/tui"
	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

var (
	flagDataDir string
	flagDebug   bool
)

var rootCmd = &cobra.Command{
	Use:   "ccpulse",
	Short: "Live Claude Code usage monitor",
	Long:  "Watch your Claude Code session window, token burn rate, and context usage in real time.",
	RunE:  runDashboard,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Claude projects directory (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log refresh-cycle diagnostics to stderr")
}

// dataRoots resolves the log roots: flag, then config override, then the
// standard Claude locations.
func dataRoots(cfg config.Config) []string {
	if flagDataDir != "" {
		return []string{flagDataDir}
	}
	return config.DataRoots(cfg)
}

// newLogger returns the cycle logger. Non-debug runs keep Error on stderr
// (a failed cycle must not vanish silently) but suppress the chattier
// levels, which would corrupt the alt-screen display mid-session.
func newLogger(prefs config.Preferences) *log.Logger {
	level := log.ErrorLevel
	if flagDebug || prefs.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
}

func monitorOptions() (monitor.Options, error) {
	cfg, _ := config.Load()
	theme.SetActive(cfg.Appearance.Theme)

	prefs, err := config.LoadPreferences()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: %v (using defaults)\n", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return monitor.Options{}, fmt.Errorf("resolving working directory: %w", err)
	}

	roots := dataRoots(cfg)
	if len(roots) == 0 {
		return monitor.Options{}, fmt.Errorf("cannot resolve home directory; set data_roots in %s", config.ConfigPath())
	}

	return monitor.Options{
		Roots:         roots,
		Prefs:         prefs,
		HighWaterPath: store.HighWaterPath(),
		WorkDir:       wd,
		Git:           gitinfo.Probe{},
		Logger:        newLogger(prefs),
	}, nil
}

func runDashboard(_ *cobra.Command, _ []string) error {
	opts, err := monitorOptions()
	if err != nil {
		return err
	}

	// Force TrueColor so styling renders even under a conservative TERM.
	lipgloss.SetColorProfile(termenv.TrueColor)

	var watch <-chan struct{}
	w, err := monitor.NewWatcher(opts.Roots, opts.Logger)
	if err != nil {
		opts.Logger.Warn("filesystem watcher unavailable, polling only", "err", err)
	} else {
		defer w.Close()
		watch = w.Events()
	}

	app := tui.NewApp(opts, watch)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
