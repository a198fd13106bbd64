package cmd

import (
	"github.com/spf13/cobra"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/voicetimeapp/voicetime/internal/tui"
)

// dashboardCmd launches the interactive dashboard.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Interactive dashboard of today's tracked time",
	RunE: func(cmd *cobra.Command, args []string) error {
		model := tui.NewDashboardModel(tui.DashboardConfig{
			EntryRepo:    ctx.EntryRepo,
			CategoryRepo: ctx.CategoryRepo,
		})
		program := tea.NewProgram(model, tea.WithAltScreen())
		_, err := program.Run()
		return err
	},
}
