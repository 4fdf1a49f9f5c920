package cmd

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/export"
	"github.com/Tiliavir/stt/internal/timecalc"
)

var (
	exportFormat string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export activities to stdout",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV,
		"Output format: "+strings.Join(export.Formats(), ", "))
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day (YYYY-MM-DD)")
}

func runExport(cmd *cobra.Command, args []string) error {
	if !slices.Contains(export.Formats(), exportFormat) {
		return fmt.Errorf("%w: %q (use one of %s)", export.ErrUnknownFormat, exportFormat,
			strings.Join(export.Formats(), ", "))
	}

	s, err := openSession()
	if err != nil {
		return err
	}

	items := s.Store().Items()
	if exportFrom != "" || exportTo != "" {
		var from time.Time
		to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.Local)
		if exportFrom != "" {
			if from, err = parseDate("from", exportFrom); err != nil {
				return err
			}
		}
		if exportTo != "" {
			last, err := parseDate("to", exportTo)
			if err != nil {
				return err
			}
			to = timecalc.Midnight(last)
		}
		items = s.Store().Between(from, to)
	}

	return export.Write(cmd.OutOrStdout(), exportFormat, items)
}
