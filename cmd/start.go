package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/instruction"
)

var (
	startSince string
	startAt    string
	startFrom  string
	startTo    string
)

var startCmd = &cobra.Command{
	Use:   "start <activity...>",
	Short: "Start an activity, or record a finished one with --from/--to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStart,
}

func init() {
	startCmd.Flags().StringVar(&startSince, "since", "", "Started this long ago (e.g. 15m, 1h30m)")
	startCmd.Flags().StringVar(&startAt, "at", "", "Start time (HH:MM[:SS] or YYYY-MM-DD HH:MM[:SS])")
	startCmd.Flags().StringVar(&startFrom, "from", "", "Start of a finished activity")
	startCmd.Flags().StringVar(&startTo, "to", "", "End of a finished activity")
	startCmd.MarkFlagsMutuallyExclusive("since", "at", "from")
	startCmd.MarkFlagsRequiredTogether("from", "to")
}

func runStart(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	now := s.Now()

	when := instruction.Now()
	switch {
	case startFrom != "":
		from, _, err := instruction.ParseTime(startFrom, now)
		if err != nil {
			return err
		}
		to, _, err := instruction.ParseTime(startTo, now)
		if err != nil {
			return err
		}
		when = instruction.Span(from, to)
	default:
		if when, err = pointInTime(startAt, startSince, now); err != nil {
			return err
		}
	}

	ins := instruction.Instruction{
		Kind:     instruction.Start,
		Activity: strings.TrimSpace(strings.Join(args, " ")),
		When:     when,
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
