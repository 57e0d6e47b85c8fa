package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccpulse/internal/config"
	"github.com/theirongolddev/ccpulse/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	prefs, prefsErr := config.LoadPreferences()

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if _, err := os.Stat(config.ConfigPath()); err == nil {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data roots: %s\n", strings.Join(dataRoots(cfg), ", "))
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Printf("  Preferences file: %s\n", config.PrefsPath())
	if prefsErr != nil {
		fmt.Printf("    Warning: %v (showing defaults)\n", prefsErr)
	}
	fmt.Printf("    Token limit:         %d\n", prefs.TokenLimit)
	fmt.Printf("    Context token limit: %d\n", prefs.ContextTokenLimit)
	fmt.Printf("    Refresh interval:    %s\n", prefs.RefreshInterval())
	fmt.Printf("    Session window:      %s\n", prefs.Window())
	fmt.Println()

	hwmPath := store.HighWaterPath()
	hwm, _ := store.LoadHighWater(hwmPath)
	fmt.Printf("  High-water mark: %d (%s)\n", hwm, hwmPath)

	return nil
}
