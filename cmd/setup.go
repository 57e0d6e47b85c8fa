package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccpulse/internal/config"
	"github.com/theirongolddev/ccpulse/internal/source"
	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func validateInt(min int64) func(string) error {
	return func(s string) error {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < min {
			return fmt.Errorf("must be at least %d", min)
		}
		return nil
	}
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	prefs, _ := config.LoadPreferences()

	// Show what we can already see so limits are set with context.
	files, _ := source.ScanRoots(dataRoots(cfg), time.Time{})
	if len(files) > 0 {
		fmt.Printf("\n  Found %d session files across %d projects.\n\n",
			len(files), source.CountProjects(files))
	}

	tokenLimit := strconv.FormatInt(prefs.TokenLimit, 10)
	contextLimit := strconv.FormatInt(prefs.ContextTokenLimit, 10)
	refreshMs := strconv.Itoa(prefs.RefreshIntervalMs)
	themeName := cfg.Appearance.Theme

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Token limit per 5-hour window").
				Description("The usage gauge fills toward this (or the observed high-water mark, whichever is larger).").
				Value(&tokenLimit).
				Validate(validateInt(1)),
			huh.NewInput().
				Title("Context window size").
				Description("Ceiling for the per-project context gauge.").
				Value(&contextLimit).
				Validate(validateInt(1)),
			huh.NewInput().
				Title("Refresh interval (ms)").
				Value(&refreshMs).
				Validate(validateInt(100)),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&themeName),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	prefs.TokenLimit, _ = strconv.ParseInt(tokenLimit, 10, 64)
	prefs.ContextTokenLimit, _ = strconv.ParseInt(contextLimit, 10, 64)
	prefs.RefreshIntervalMs, _ = strconv.Atoi(refreshMs)
	cfg.Appearance.Theme = themeName

	if err := config.SavePreferences(prefs); err != nil {
		return fmt.Errorf("saving preferences: %w", err)
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\n  Saved %s\n  Saved %s\n", config.PrefsPath(), config.ConfigPath())
	return nil
}
