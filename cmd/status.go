package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/report"
	"github.com/Tiliavir/stt/internal/session"
	"github.com/Tiliavir/stt/internal/timecalc"
	"github.com/Tiliavir/stt/internal/watch"
)

var statusWatch bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running activity",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVarP(&statusWatch, "watch", "w", false, "Keep running and print the status whenever the file changes")
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printStatus(out, s)
	if !statusWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return watchStatus(ctx, out)
}

func watchStatus(ctx context.Context, out io.Writer) error {
	path, err := dataPath()
	if err != nil {
		return storageFailure(err)
	}
	return watch.Watch(ctx, path, func() {
		s, err := openSession()
		if err != nil {
			logger.Warn("reloading activities failed", "err", err)
			return
		}
		fmt.Fprintln(out)
		printStatus(out, s)
	}, watch.WithLogger(logger))
}

func printStatus(w io.Writer, s *session.Session) {
	now := s.Now()
	if latest, ok := s.Store().Latest(); ok && latest.End.IsOpen() {
		fmt.Fprintln(w, "Running:")
		fmt.Fprintf(w, "  Activity: %s\n", latest.Headline())
		fmt.Fprintf(w, "  Since: %s\n", latest.Start.Format("15:04"))
		fmt.Fprintf(w, "  Elapsed: %s\n", timecalc.FormatDurationHHMMSS(int64(latest.Duration(now)/time.Second)))
		return
	}

	from := timecalc.StartOfDay(now)
	today := report.Summarize(s.Store().Between(from, timecalc.Midnight(now)), from, timecalc.Midnight(now), now)
	fmt.Fprintln(w, "No running activity.")
	fmt.Fprintf(w, "Today: %s logged.\n", timecalc.FormatDuration(int64(today.Total/time.Second)))
}
