package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"
)

const backupDateLayout = "2006-01-02"

// BackupPolicy controls copies of the activities file taken before it is
// rewritten.
type BackupPolicy struct {
	// Dir receives the backups.
	Dir string
	// IntervalDays is the minimum age of the newest backup before another
	// one is taken. Values below 1 disable backups.
	IntervalDays int
	// Retention is the number of backups kept. Values below 1 keep all.
	Retention int
}

// Enabled reports whether backups should be taken.
func (p BackupPolicy) Enabled() bool {
	return p.IntervalDays >= 1 && p.Dir != ""
}

// Backup copies the file at path to <Dir>/<name>-YYYY-MM-DD when the newest
// existing backup is at least IntervalDays old, then removes the oldest
// backups beyond Retention. It returns the path of the new backup, or "" if
// none was needed.
func Backup(path string, policy BackupPolicy, now time.Time) (string, error) {
	if !policy.Enabled() {
		return "", nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	}
	if err := os.MkdirAll(policy.Dir, 0o700); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	existing, err := listBackups(policy.Dir, filepath.Base(path))
	if err != nil {
		return "", err
	}

	created := ""
	if backupNeeded(existing, policy.IntervalDays, now) {
		created = filepath.Join(policy.Dir, backupName(filepath.Base(path), now))
		if err := copyFile(path, created); err != nil {
			return "", fmt.Errorf("creating backup: %w", err)
		}
		if !slices.Contains(existing, filepath.Base(created)) {
			existing = append(existing, filepath.Base(created))
		}
	}

	return created, prune(policy.Dir, existing, policy.Retention)
}

func backupName(name string, now time.Time) string {
	return name + "-" + now.Format(backupDateLayout)
}

// listBackups returns backup file names for name, oldest first.
func listBackups(dir, name string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing backups: %w", err)
	}
	pattern := regexp.MustCompile("^" + regexp.QuoteMeta(name) + `-\d{4}-\d{2}-\d{2}$`)

	var names []string
	for _, e := range entries {
		if !e.IsDir() && pattern.MatchString(e.Name()) {
			names = append(names, e.Name())
		}
	}
	// The date suffix sorts lexically.
	slices.Sort(names)
	return names, nil
}

func backupNeeded(existing []string, intervalDays int, now time.Time) bool {
	if len(existing) == 0 {
		return true
	}
	newest := existing[len(existing)-1]
	taken, err := time.ParseInLocation(backupDateLayout, newest[len(newest)-len(backupDateLayout):], now.Location())
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !taken.AddDate(0, 0, intervalDays).After(today)
}

func prune(dir string, names []string, retention int) error {
	if retention < 1 || len(names) <= retention {
		return nil
	}
	var errs *multierror.Error
	for _, name := range names[:len(names)-retention] {
		if err := os.Remove(filepath.Join(dir, name)); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("removing old backup: %w", err))
		}
	}
	return errs.ErrorOrNil()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
