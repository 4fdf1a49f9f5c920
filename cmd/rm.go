package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <n>",
	Short: "Remove the n-th most recent activity (1 = latest)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func runRm(cmd *cobra.Command, args []string) error {
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index %q: %w", args[0], err)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	target, err := nth(s.Store().Top(n), n)
	if err != nil {
		return err
	}
	if err := s.Delete(target); err != nil {
		return err
	}
	if err := flush(s); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", target)
	return nil
}
