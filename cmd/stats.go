package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/voicetimeapp/voicetime/internal/output"
)

// statsCmd shows total duration grouped by category.
var statsCmd = &cobra.Command{
	Use:   "stats [PERIOD]",
	Short: "Show tracked time grouped by category",
	Long: `Show total tracked time grouped by category within a period.

Examples:
  voicetime stats
  voicetime stats today
  voicetime stats week`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	period := "today"
	if len(args) > 0 {
		period = args[0]
	}

	start, end, ok := periodRange(period)
	if !ok {
		start, end, _ = periodRange("today")
	}

	totals, err := ctx.EntryRepo.TotalsByCategory(start, end)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(totals)
	}

	if len(totals) == 0 {
		ctx.Formatter.Println("Nothing tracked in this period.")
		return nil
	}

	categories, err := ctx.CategoryRepo.List()
	if err != nil {
		return err
	}
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	barWidth := 30
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 50 {
		barWidth = width - 40
	}

	maxMinutes := totals[0].Minutes
	grandTotal := 0
	for _, agg := range totals {
		if agg.Minutes > maxMinutes {
			maxMinutes = agg.Minutes
		}
		grandTotal += agg.Minutes
	}

	for _, agg := range totals {
		name := names[agg.CategoryID]
		if name == "" {
			name = "uncategorized"
		}
		filled := 0
		if maxMinutes > 0 {
			filled = agg.Minutes * barWidth / maxMinutes
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
		ctx.Formatter.Printf("%-14s %s %8s  (%d entries)\n",
			name, bar, output.FormatMinutes(agg.Minutes), agg.EntryCount)
	}

	ctx.Formatter.Printf("\nTotal: %s\n", output.FormatMinutes(grandTotal))
	return nil
}
