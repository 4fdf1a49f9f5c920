package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/msgraph"
	"github.com/Tiliavir/stt/internal/timecalc"
)

var (
	outlookSyncFrom   string
	outlookSyncTo     string
	outlookSyncDate   string
	outlookSyncToday  bool
	outlookSyncDryRun bool
	outlookSyncPrefix string
	outlookSyncTZ     string
)

var outlookCmd = &cobra.Command{
	Use:   "outlook",
	Short: "Outlook calendar integration",
}

var outlookSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Import Outlook calendar events as finished activities",
	Args:  cobra.NoArgs,
	RunE:  runOutlookSync,
}

func init() {
	outlookSyncCmd.Flags().StringVar(&outlookSyncFrom, "from", "", "Start date (YYYY-MM-DD); required when --to is specified")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	outlookSyncCmd.Flags().StringVar(&outlookSyncDate, "date", "", "Sync a specific date (YYYY-MM-DD)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncToday, "today", false, "Sync only today (default)")
	outlookSyncCmd.Flags().BoolVar(&outlookSyncDryRun, "dry-run", false, "Print planned operations without writing")
	outlookSyncCmd.Flags().StringVar(&outlookSyncPrefix, "prefix", "", "Text put in front of event subjects (default from config)")
	outlookSyncCmd.Flags().StringVar(&outlookSyncTZ, "timezone", "", "IANA timezone for event times (default from config)")
	outlookCmd.AddCommand(outlookSyncCmd)
}

// syncRange returns [from, to) for the sync flags.
func syncRange(now time.Time) (time.Time, time.Time, error) {
	switch {
	case outlookSyncDate != "":
		d, err := parseDate("date", outlookSyncDate)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		return d, timecalc.Midnight(d), nil

	case outlookSyncFrom != "" || outlookSyncTo != "":
		if outlookSyncFrom == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parseDate("from", outlookSyncFrom)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		last := now
		if outlookSyncTo != "" {
			if last, err = parseDate("to", outlookSyncTo); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		return from, timecalc.Midnight(last), nil
	}
	// Default: today.
	return timecalc.StartOfDay(now), timecalc.Midnight(now), nil
}

func runOutlookSync(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	from, to, err := syncRange(s.Now())
	if err != nil {
		return err
	}

	timezone := cfg.Outlook.Timezone
	if outlookSyncTZ != "" {
		timezone = outlookSyncTZ
	}
	prefix := cfg.Outlook.Prefix
	if cmd.Flags().Changed("prefix") {
		prefix = outlookSyncPrefix
	}

	out := cmd.OutOrStdout()
	dryTag := ""
	if outlookSyncDryRun {
		dryTag = " [dry-run]"
	}
	fmt.Fprintf(out, "Syncing Outlook events (%s → %s)%s...\n\n",
		from.Format("2006-01-02"), to.AddDate(0, 0, -1).Format("2006-01-02"), dryTag)

	tokenPath, err := msgraph.DefaultTokenPath()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	tok, oauthCfg, err := msgraph.Authenticate(ctx, msgraph.AuthConfig{
		TenantID:  cfg.Outlook.TenantID,
		ClientID:  cfg.Outlook.ClientID,
		TokenPath: tokenPath,
	}, out, logger)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	client := msgraph.NewClient(ctx, tok, oauthCfg, tokenPath)
	events, err := client.GetCalendarView(ctx, from, to, timezone)
	if err != nil {
		return fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	result, err := msgraph.SyncEvents(s, events, msgraph.SyncOptions{
		Prefix:   prefix,
		Timezone: timezone,
		DryRun:   outlookSyncDryRun,
		Out:      out,
	})
	if err != nil {
		return fmt.Errorf("sync error: %w", err)
	}
	if err := flush(s); err != nil {
		return err
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Summary:")
	fmt.Fprintf(out, "  %d imported\n", result.Imported)
	fmt.Fprintf(out, "  %d skipped\n", result.Skipped)
	if result.Errors > 0 {
		fmt.Fprintf(out, "  %d errors\n", result.Errors)
		return &exitError{code: 2, err: fmt.Errorf("%d events could not be imported", result.Errors)}
	}
	return nil
}
