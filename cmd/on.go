package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/model"
)

var onCmd = &cobra.Command{
	Use:   "on <text...>",
	Short: "Record an activity from free-form text",
	Long: `Record an activity from free-form text, for example:

  stt on coding
  stt on code review since 20m
  stt on lunch at 12:15
  stt on meeting from 09:00 to 10:30
  stt on fin 5m ago
  stt on resume`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOn,
}

func runOn(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	ins, err := instruction.Parse(strings.Join(args, " "), s.Now())
	if err != nil {
		return err
	}
	iv, err := s.Execute(ins)
	if err != nil {
		return err
	}
	if err := flush(s); err != nil {
		return err
	}

	printRecorded(cmd.OutOrStdout(), ins.Kind, iv)
	return nil
}

// printRecorded reports what an instruction did.
func printRecorded(w io.Writer, kind instruction.Kind, iv model.Interval) {
	switch {
	case kind == instruction.Fin:
		fmt.Fprintf(w, "Stopped %q. Elapsed: %s\n", iv.Headline(), formatElapsed(int64(iv.Duration(iv.Start).Seconds())))
	case iv.End.IsOpen():
		fmt.Fprintf(w, "Started %q at %s\n", iv.Headline(), iv.Start.Format("15:04:05"))
	default:
		end, _ := iv.End.Time()
		fmt.Fprintf(w, "Recorded %q from %s to %s\n", iv.Headline(),
			iv.Start.Format("2006-01-02 15:04"), end.Format("2006-01-02 15:04"))
	}
}
