package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/stt/internal/config"
	"github.com/Tiliavir/stt/internal/instruction"
	"github.com/Tiliavir/stt/internal/logging"
	"github.com/Tiliavir/stt/internal/session"
	"github.com/Tiliavir/stt/internal/storage"
)

var (
	rootFile     string
	rootConfig   string
	rootLogLevel string
)

var (
	clock  clockwork.Clock = clockwork.NewRealClock()
	cfg    config.Config
	logger = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "stt",
	Short: "Simple Time Tracker – a personal activity log",
	Long: `stt records what you are doing and when, as a timeline of labeled,
non-overlapping intervals. Everything lives in one plain text file,
~/.stt/activities by default.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// exitError carries the exit code for a failure: 1 for user errors, 2 for
// storage errors.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func storageFailure(err error) error {
	return &exitError{code: 2, err: err}
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFile, "file", "", "Activities file (default from config, ~/.stt/activities)")
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "Config file (default ~/.stt/config.json)")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Diagnostics level: debug, info, warn, error")

	rootCmd.AddCommand(onCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(finCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(outlookCmd)
}

// setup loads the configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if rootConfig != "" {
		cfg, err = config.LoadFrom(rootConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	name := cfg.LogLevel
	if rootLogLevel != "" {
		name = rootLogLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	logger = logging.New(logging.WithLevel(level), logging.WithWriter(cmd.ErrOrStderr()))
	return nil
}

// dataPath returns the activities file: --file, then the config.
func dataPath() (string, error) {
	if rootFile != "" {
		return storage.ExpandPath(rootFile)
	}
	return cfg.DataPath()
}

// openSession loads the activities file with the configured clock, logger
// and backup policy. Failures are storage errors.
func openSession() (*session.Session, error) {
	path, err := dataPath()
	if err != nil {
		return nil, storageFailure(err)
	}
	policy, err := cfg.BackupPolicy()
	if err != nil {
		return nil, storageFailure(err)
	}
	s, err := session.Open(path,
		session.WithClock(clock),
		session.WithLogger(logger.With(slog.String("file", path))),
		session.WithBackup(policy),
	)
	if err != nil {
		return nil, storageFailure(err)
	}
	return s, nil
}

// flush writes the session back, mapping failures to storage errors.
func flush(s *session.Session) error {
	if err := s.Flush(); err != nil {
		return storageFailure(err)
	}
	return nil
}

// pointInTime reads the --at / --ago flag pair shared by fin and resume.
func pointInTime(at, ago string, now time.Time) (instruction.TimeSpec, error) {
	switch {
	case at != "":
		t, _, err := instruction.ParseTime(at, now)
		if err != nil {
			return instruction.TimeSpec{}, err
		}
		return instruction.Absolute(t), nil
	case ago != "":
		d, err := instruction.ParseDuration(ago)
		if err != nil {
			return instruction.TimeSpec{}, err
		}
		return instruction.Relative(-d), nil
	}
	return instruction.Now(), nil
}

// parseDate reads a YYYY-MM-DD flag value as local midnight.
func parseDate(flag, value string) (time.Time, error) {
	d, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s value %q: %w", flag, value, err)
	}
	return d, nil
}
