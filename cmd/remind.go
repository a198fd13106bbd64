package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voicetimeapp/voicetime/internal/notify"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/scheduler"
)

// remindCmd runs and inspects the check-in reminder scheduler.
var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Check-in reminders",
}

var remindRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reminder daemon in the foreground",
	Long: `Run the reminder scheduler in the foreground. Reminders fire every
notification_interval minutes within the configured active hours.`,
	RunE: runRemindRun,
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled reminder triggers",
	RunE:  runRemindList,
}

var remindTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send one reminder now",
	RunE: func(cmd *cobra.Command, args []string) error {
		return buildNotifier().Send(notify.Notification{
			Title:   "Time check-in",
			Message: "What have you been up to? Record a quick voice note.",
			Action:  notify.ActionRecord,
		})
	},
}

func init() {
	remindCmd.AddCommand(remindRunCmd)
	remindCmd.AddCommand(remindListCmd)
	remindCmd.AddCommand(remindTestCmd)
}

func buildNotifier() notify.Notifier {
	if os.Getenv("VOICETIME_NOTIFY_STDOUT") != "" {
		return notify.NewWriterNotifier(os.Stdout)
	}
	return notify.NewDesktopNotifier()
}

func runRemindRun(cmd *cobra.Command, args []string) error {
	sched := scheduler.NewScheduler(ctx.SettingsRepo, buildNotifier())
	if err := sched.Schedule(); err != nil {
		return err
	}
	defer sched.CancelAll()

	ctx.Formatter.Println("Reminder daemon running. Ctrl-C to stop.")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ctx.Formatter.Println("Stopping.")
	return nil
}

func runRemindList(cmd *cobra.Command, args []string) error {
	sched := scheduler.NewScheduler(ctx.SettingsRepo, buildNotifier())
	if err := sched.Schedule(); err != nil {
		return err
	}
	defer sched.CancelAll()

	scheduled := sched.List()
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(scheduled)
	}

	if len(scheduled) == 0 {
		ctx.Formatter.Println("No reminders scheduled (notifications disabled).")
		return nil
	}
	for _, s := range scheduled {
		ctx.Formatter.Printf("%s  next %s  action=%s\n",
			s.Spec, output.FormatTimestamp(s.Next), s.Action)
	}
	return nil
}
