package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ccpulse/internal/blocks"
	"github.com/theirongolddev/ccpulse/internal/cli"
	"github.com/theirongolddev/ccpulse/internal/config"
	"github.com/theirongolddev/ccpulse/internal/pipeline"
	"github.com/theirongolddev/ccpulse/internal/tui"
	"github.com/theirongolddev/ccpulse/internal/tui/theme"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "List recent session billing windows",
	RunE:  runBlocks,
}

var blocksLimit int

func init() {
	blocksCmd.Flags().IntVarP(&blocksLimit, "limit", "l", 10, "Number of windows to show")
	rootCmd.AddCommand(blocksCmd)
}

func runBlocks(_ *cobra.Command, _ []string) error {
	cfg, _ := config.Load()
	theme.SetActive(cfg.Appearance.Theme)

	prefs, err := config.LoadPreferences()
	if err != nil {
		fmt.Printf("  Warning: %v (using defaults)\n", err)
	}

	now := time.Now()
	result := pipeline.Load(dataRoots(cfg), now.Add(-pipeline.DefaultFileCutoff), nil)
	if len(result.Records) == 0 {
		fmt.Println("\n  No usage records found.")
		return nil
	}

	all := blocks.IdentifySessionBlocks(result.Records, prefs.Window(), now)

	shown := all
	if blocksLimit > 0 && len(shown) > blocksLimit {
		shown = shown[len(shown)-blocksLimit:]
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SESSION WINDOWS  showing %d of %d", len(shown), len(all))))
	fmt.Println()

	rows := make([][]string, 0, len(shown))
	for _, b := range shown {
		if b.IsGap {
			rows = append(rows, []string{
				b.StartTime.Local().Format("Jan 02 15:04"),
				"gap",
				tui.FormatCountdown(b.EndTime.Sub(b.StartTime)),
				"", "", "",
			})
			continue
		}

		status := ""
		if b.IsActive {
			status = "active"
		}
		rows = append(rows, []string{
			b.StartTime.Local().Format("Jan 02 15:04"),
			status,
			tui.FormatCountdown(b.DurationElapsed(now)),
			tui.FormatTokens(b.TokenCounts.Total()),
			tui.FormatCost(b.CostUSD),
			truncateModels(b.Models, 40),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Start", "Status", "Duration", "Tokens", "Cost", "Models"},
		Rows:    rows,
	}))

	return nil
}

func truncateModels(models []string, maxLen int) string {
	s := strings.Join(models, ", ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
