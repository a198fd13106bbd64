package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/voicetimeapp/voicetime/internal/errors"
	"github.com/voicetimeapp/voicetime/internal/model"
	"github.com/voicetimeapp/voicetime/internal/output"
	"github.com/voicetimeapp/voicetime/internal/parser"
)

// Entry edit flags.
var (
	editFlagSummary  string
	editFlagCategory string
	editFlagDuration string
	editFlagTags     string
)

// entriesCmd lists and manages time entries.
var entriesCmd = &cobra.Command{
	Use:     "entries [PERIOD]",
	Aliases: []string{"e", "ls"},
	Short:   "List time entries",
	Long: `List time entries, newest first.

Examples:
  voicetime entries
  voicetime entries today
  voicetime entries week`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEntries,
}

var entriesShowCmd = &cobra.Command{
	Use:   "show KEY",
	Short: "Show one entry in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesShow,
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit KEY",
	Short: "Edit fields of an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntriesEdit,
}

var entriesDeleteCmd = &cobra.Command{
	Use:     "delete KEY",
	Aliases: []string{"rm"},
	Short:   "Delete an entry",
	Args:    cobra.ExactArgs(1),
	RunE:    runEntriesDelete,
}

func init() {
	entriesEditCmd.Flags().StringVar(&editFlagSummary, "summary", "", "New summary")
	entriesEditCmd.Flags().StringVar(&editFlagCategory, "category", "", "New category id (empty string clears it)")
	entriesEditCmd.Flags().StringVar(&editFlagDuration, "duration", "", "New duration (e.g. 45m)")
	entriesEditCmd.Flags().StringVar(&editFlagTags, "tags", "", "Comma-separated tags (replaces existing)")

	entriesCmd.AddCommand(entriesShowCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)
}

// periodRange resolves a period word into a [start, end) window.
func periodRange(period string) (time.Time, time.Time, bool) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch period {
	case "", "all":
		return time.Time{}, time.Time{}, false
	case "today":
		return today, today.AddDate(0, 0, 1), true
	case "yesterday":
		return today.AddDate(0, 0, -1), today, true
	case "week":
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start := today.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7), true
	case "month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, start.AddDate(0, 1, 0), true
	default:
		// Natural-language point in time: window from there to now.
		result := parser.ParseTimestamp(period)
		if result.Error != nil {
			return time.Time{}, time.Time{}, false
		}
		return result.Time, now.Add(time.Second), true
	}
}

func runEntries(cmd *cobra.Command, args []string) error {
	period := ""
	if len(args) > 0 {
		period = args[0]
	}

	var entries []*model.TimeEntry
	var err error
	if start, end, ok := periodRange(period); ok {
		entries, err = ctx.EntryRepo.ListBetween(start, end)
	} else {
		entries, err = ctx.EntryRepo.List()
	}
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(entries)
	}

	if len(entries) == 0 {
		ctx.Formatter.Println("No entries.")
		return nil
	}

	for _, e := range entries {
		printEntryLine(e)
	}
	return nil
}

func printEntryLine(e *model.TimeEntry) {
	summary := "(no summary)"
	if e.Summary != nil {
		summary = *e.Summary
	}
	category := "-"
	if e.CategoryID != nil {
		category = *e.CategoryID
	}
	marker := " "
	if !e.Processed {
		marker = "!"
	}
	ctx.Formatter.Printf("%s %s  %-8s %-12s %s  %s\n",
		marker,
		output.FormatTimestamp(e.RecordedTime()),
		output.FormatMinutes(e.Duration),
		category,
		summary,
		shortKey(e.Key))
}

// shortKey renders the trailing key fragment used to address entries.
func shortKey(key string) string {
	if len(key) > 8 {
		return "…" + key[len(key)-8:]
	}
	return key
}

// resolveEntry finds an entry by full key or unique key suffix.
func resolveEntry(ref string) (*model.TimeEntry, error) {
	if entry, err := ctx.EntryRepo.Get(ref); err == nil {
		return entry, nil
	}

	entries, err := ctx.EntryRepo.List()
	if err != nil {
		return nil, err
	}

	var match *model.TimeEntry
	for _, e := range entries {
		if len(e.Key) >= len(ref) && e.Key[len(e.Key)-len(ref):] == ref {
			if match != nil {
				return nil, apperrors.NewUserErrorWithField("entry", ref,
					"ambiguous entry reference", "use a longer key fragment")
			}
			match = e
		}
	}
	if match == nil {
		return nil, apperrors.ErrEntryNotFound
	}
	return match, nil
}

func runEntriesShow(cmd *cobra.Command, args []string) error {
	entry, err := resolveEntry(args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(entry)
	}

	printEntryLine(entry)
	if entry.Transcript != nil {
		ctx.Formatter.Printf("  transcript: %s\n", *entry.Transcript)
	}
	if entry.AudioURI != nil {
		ctx.Formatter.Printf("  audio: %s\n", *entry.AudioURI)
	}
	if len(entry.Tags) > 0 {
		ctx.Formatter.Printf("  tags: %v\n", entry.Tags)
	}
	return nil
}

func runEntriesEdit(cmd *cobra.Command, args []string) error {
	entry, err := resolveEntry(args[0])
	if err != nil {
		return err
	}

	patch := model.EntryPatch{}
	if cmd.Flags().Changed("summary") {
		patch.Summary = &editFlagSummary
	}
	if cmd.Flags().Changed("category") {
		if editFlagCategory != "" {
			if _, err := ctx.CategoryRepo.Get(editFlagCategory); err != nil {
				return apperrors.NewUserErrorWithField("category", editFlagCategory,
					"unknown category", "run: voicetime category list")
			}
		}
		patch.CategoryID = &editFlagCategory
	}
	if cmd.Flags().Changed("duration") {
		minutes, ok := parser.Minutes(editFlagDuration)
		if !ok {
			return apperrors.NewUserErrorWithField("duration", editFlagDuration,
				"invalid duration", "use formats like 45m, 1h30m")
		}
		patch.Duration = &minutes
	}
	if cmd.Flags().Changed("tags") {
		patch.Tags = splitTags(editFlagTags)
	}

	entry.Apply(patch)
	if err := ctx.EntryRepo.Update(entry); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(entry)
	}
	ctx.Formatter.Success("Entry updated.")
	return nil
}

func runEntriesDelete(cmd *cobra.Command, args []string) error {
	entry, err := resolveEntry(args[0])
	if err != nil {
		return err
	}
	if err := ctx.EntryRepo.Delete(entry.Key); err != nil {
		return err
	}
	ctx.Formatter.Success("Entry deleted.")
	return nil
}

// splitTags parses a comma-separated tag list, lowercased. Always returns a
// non-nil slice so an explicit --tags "" clears the tags.
func splitTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
