// Package cmd provides the CLI commands for Voicetime.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/voicetimeapp/voicetime/internal/logging"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "voicetime",
	Short: "Voice-note time tracking",
	Long: `Voicetime tracks your time through short voice notes. Record a quick
memo about what you've been up to; it gets transcribed on-device,
split into categorized activities by a language model, and saved
locally.

Examples:
  voicetime record
  voicetime log "code review" work 45m
  voicetime entries today
  voicetime stats week
  voicetime dashboard`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		if flagDebug {
			logging.InitDebug()
		}

		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show current status
		return runStatus(cmd, args)
	},
}

// runStatus shows the last check-in and today's tracked total.
func runStatus(cmd *cobra.Command, args []string) error {
	settings, err := ctx.SettingsRepo.Get()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(settings)
	}

	if last, ok := settings.LastCheckIn(); ok {
		ctx.Formatter.Printf("Last check-in: %s\n", output.FormatTimestamp(last))
	} else {
		ctx.Formatter.Println("No check-ins yet. Run: voicetime record")
	}
	return nil
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "cli", "Output format (cli, json, plain)")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto", "Color output (auto, always, never)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Enable debug output")

	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("voicetime %s (commit %s, built %s)\n", Version, Commit, BuildTime)
	},
}
