package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/model"
)

var (
	resumeAt    string
	resumeAgo   string
	resumeIndex int
)

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Start the latest (or a listed) activity again",
	Args:  cobra.NoArgs,
	RunE:  runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeAt, "at", "", "Start time (HH:MM[:SS] or YYYY-MM-DD HH:MM[:SS])")
	resumeCmd.Flags().StringVar(&resumeAgo, "ago", "", "Started this long ago (e.g. 10m)")
	resumeCmd.Flags().IntVar(&resumeIndex, "index", 1, "Activity to resume, as numbered by 'stt list'")
	resumeCmd.MarkFlagsMutuallyExclusive("at", "ago")
}

func runResume(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	when, err := pointInTime(resumeAt, resumeAgo, s.Now())
	if err != nil {
		return err
	}

	var iv model.Interval
	if resumeIndex == 1 {
		iv, err = s.Execute(instruction.Instruction{Kind: instruction.Resume, When: when})
		if err != nil {
			return err
		}
	} else {
		target, err := nth(s.Store().Top(resumeIndex), resumeIndex)
		if err != nil {
			return err
		}
		iv = s.Continue(target, when.Resolve(s.Now()))
	}
	if err := flush(s); err != nil {
		return err
	}

	printRecorded(cmd.OutOrStdout(), instruction.Resume, iv)
	return nil
}

// nth picks the n-th (1-based) entry of a reverse chronological view.
func nth(recent []model.Interval, n int) (model.Interval, error) {
	if n < 1 || n > len(recent) {
		return model.Interval{}, fmt.Errorf("no activity #%d (%d recorded)", n, len(recent))
	}
	return recent[n-1], nil
}
