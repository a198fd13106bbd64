package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// configCmd manages settings.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage settings",
	Long: `Manage settings.

Keys:
  notification_interval    minutes between check-in reminders (>= 1)
  notification_enabled     true/false
  notification_start_hour  first active hour (0-23)
  notification_end_hour    last active hour (0-23, after start)
  api_key                  language model credential (env VOICETIME_API_KEY wins)
  max_recording_seconds    recording duration cap`,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a settings value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := ctx.SettingsRepo.GetValue(args[0])
		if err != nil {
			return err
		}
		ctx.Formatter.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a settings value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctx.SettingsRepo.SetValue(args[0], args[1]); err != nil {
			return err
		}
		ctx.Formatter.Success("Setting updated.")
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := ctx.SettingsRepo.Get()
		if err != nil {
			return err
		}
		// Never echo the stored secret.
		redacted := *settings
		if redacted.APIKey != "" {
			redacted.APIKey = "(set)"
		}
		return ctx.Formatter.JSON(redacted)
	},
}

var configTestCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check that the categorization service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		categorizer, err := ctx.Categorizer()
		if err != nil {
			return err
		}
		if categorizer.TestConnection(context.Background()) {
			ctx.Formatter.Success("Connection OK.")
		} else {
			ctx.Formatter.Warning("Connection failed. Check your API key and network.")
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configTestCmd)
}
