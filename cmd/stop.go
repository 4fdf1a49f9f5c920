package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/instruction"
)

var (
	finAt  string
	finAgo string
)

var finCmd = &cobra.Command{
	Use:     "fin",
	Aliases: []string{"stop"},
	Short:   "Stop the running activity",
	Args:    cobra.NoArgs,
	RunE:    runFin,
}

func init() {
	finCmd.Flags().StringVar(&finAt, "at", "", "Stop time (HH:MM[:SS] or YYYY-MM-DD HH:MM[:SS])")
	finCmd.Flags().StringVar(&finAgo, "ago", "", "Stopped this long ago (e.g. 10m)")
	finCmd.MarkFlagsMutuallyExclusive("at", "ago")
}

func runFin(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}

	when, err := pointInTime(finAt, finAgo, s.Now())
	if err != nil {
		return err
	}
	ins := instruction.Instruction{Kind: instruction.Fin, When: when}
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

func formatElapsed(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm %ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
