package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/report"
	"github.com/Tiliavir/stt/internal/timecalc"
)

var (
	reportToday bool
	reportWeek  bool
	reportFrom  string
	reportTo    string
	reportDaily bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show time spent per activity",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportToday, "today", false, "Report for today")
	reportCmd.Flags().BoolVar(&reportWeek, "week", false, "Report for this week (default)")
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "First day (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "Last day (YYYY-MM-DD); defaults to today")
	reportCmd.Flags().BoolVar(&reportDaily, "daily", false, "One table per day")
	reportCmd.MarkFlagsMutuallyExclusive("today", "week", "from")
}

func runReport(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	now := s.Now()

	from, to, label, err := reportRange(now)
	if err != nil {
		return err
	}

	items := s.Store().Between(from, to)
	out := cmd.OutOrStdout()
	if reportDaily {
		days := report.Daily(items, from, to, now)
		if len(days) == 0 {
			fmt.Fprintf(out, "Nothing recorded for %s.\n", label)
			return nil
		}
		return report.WriteDaily(out, days)
	}

	fmt.Fprintln(out, label)
	return report.WriteTable(out, report.Summarize(items, from, to, now))
}

// reportRange returns [from, to) and a heading for the selected period.
func reportRange(now time.Time) (time.Time, time.Time, string, error) {
	switch {
	case reportToday:
		from := timecalc.StartOfDay(now)
		return from, timecalc.Midnight(now), from.Format("2006-01-02 Mon"), nil

	case reportFrom != "" || reportTo != "":
		if reportFrom == "" {
			return time.Time{}, time.Time{}, "", fmt.Errorf("--from is required when --to is specified")
		}
		from, err := parseDate("from", reportFrom)
		if err != nil {
			return time.Time{}, time.Time{}, "", err
		}
		last := timecalc.StartOfDay(now)
		if reportTo != "" {
			if last, err = parseDate("to", reportTo); err != nil {
				return time.Time{}, time.Time{}, "", err
			}
		}
		if last.Before(from) {
			return time.Time{}, time.Time{}, "", fmt.Errorf("--to %s is before --from %s", reportTo, reportFrom)
		}
		return from, timecalc.Midnight(last), fmt.Sprintf("%s – %s", from.Format("2006-01-02"), last.Format("2006-01-02")), nil

	default:
		monday, sunday := timecalc.WeekRange(now)
		return monday, timecalc.Midnight(sunday), "Week " + timecalc.ISOWeekLabel(now), nil
	}
}
