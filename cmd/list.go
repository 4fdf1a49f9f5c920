package cmd

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/timecalc"
)

var (
	listLimit int
	listGrep  string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent activities, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Maximum number of activities to show")
	listCmd.Flags().StringVar(&listGrep, "grep", "", "Only show activities matching this regular expression")
}

func runList(cmd *cobra.Command, args []string) error {
	var pattern *regexp.Regexp
	if listGrep != "" {
		var err error
		if pattern, err = regexp.Compile(listGrep); err != nil {
			return fmt.Errorf("invalid --grep pattern: %w", err)
		}
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printList(out, s.Store().All(), pattern, listLimit, s.Now(), terminalWidth(out))
	return nil
}

// printList prints up to limit activities matching pattern. Numbers are
// positions in the full list, as used by rm and resume --index.
func printList(w io.Writer, recent []model.Interval, pattern *regexp.Regexp, limit int, now time.Time, width int) {
	shown := 0
	for i, iv := range recent {
		if shown >= limit {
			break
		}
		if pattern != nil && !pattern.MatchString(iv.Activity) {
			continue
		}
		shown++

		prefix := fmt.Sprintf("%3d  %s  %8s  ", i+1, span(iv),
			timecalc.FormatDuration(int64(iv.Duration(now)/time.Second)))
		headline := iv.Headline()
		if width > 0 {
			headline = runewidth.Truncate(headline, max(width-runewidth.StringWidth(prefix), 1), "…")
		}
		fmt.Fprintf(w, "%s%s\n", prefix, headline)
	}
	if shown == 0 {
		fmt.Fprintln(w, "No activities found.")
	}
}

// span renders start and end compactly; the end's date is shown only when
// it differs from the start's.
func span(iv model.Interval) string {
	start := iv.Start.Format("2006-01-02 15:04")
	end, ok := iv.End.Time()
	switch {
	case !ok:
		return start + "–now  "
	case timecalc.SameDay(iv.Start, end):
		return start + "–" + end.Format("15:04")
	default:
		return start + "–" + end.Format("01-02 15:04")
	}
}

// terminalWidth returns the width of w if it is a terminal, or 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}
