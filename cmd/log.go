package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/parser"
)

// Log command flags.
var (
	logFlagTags string
	logFlagAt   string
)

// logCmd creates a manual entry without a recording.
var logCmd = &cobra.Command{
	Use:   "log SUMMARY [CATEGORY] [DURATION]",
	Short: "Log a time entry manually",
	Long: `Log a time entry without recording a voice note.

Examples:
  voicetime log "code review" work 45m
  voicetime log "walk" health 30m --at "yesterday 5pm"
  voicetime log "reading" learning 1h --tags books,evening`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runLog,
}

func init() {
	logCmd.Flags().StringVar(&logFlagTags, "tags", "", "Comma-separated tags")
	logCmd.Flags().StringVar(&logFlagAt, "at", "", "When the activity ended (natural language)")
}

func runLog(cmd *cobra.Command, args []string) error {
	summary := args[0]

	var categoryID *string
	if len(args) > 1 {
		if _, err := ctx.CategoryRepo.Get(args[1]); err != nil {
			return apperrors.NewUserErrorWithField("category", args[1],
				"unknown category", "run: voicetime category list")
		}
		categoryID = &args[1]
	}

	minutes := 0
	if len(args) > 2 {
		parsed, ok := parser.Minutes(args[2])
		if !ok {
			return apperrors.NewUserErrorWithField("duration", args[2],
				"invalid duration", "use formats like 45m, 1h30m")
		}
		minutes = parsed
	}

	recordedAt := parser.ParseTimestamp(logFlagAt)
	if recordedAt.Error != nil {
		return apperrors.NewUserErrorWithField("at", logFlagAt,
			"could not parse timestamp", "try \"yesterday 5pm\" or \"2 hours ago\"")
	}

	var tags []string
	if logFlagTags != "" {
		for _, tag := range strings.Split(logFlagTags, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	entry := model.NewTimeEntry(recordedAt.Time.Unix(), minutes, nil, &summary, categoryID, nil, tags)
	if err := ctx.EntryRepo.Create(entry); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(entry)
	}
	ctx.Formatter.Success("Logged " + output.FormatMinutes(minutes) + ": " + summary)
	return nil
}
