package storage

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/go-homedir"

	"github.com/Tiliavir/stt/internal/model"
)

// BaseDir returns the root data directory (~/.stt).
func BaseDir() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".stt"), nil
}

// DefaultPath returns the default activities file (~/.stt/activities).
func DefaultPath() (string, error) {
	base, err := BaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "activities"), nil
}

// ExpandPath resolves a leading ~ in a configured path.
func ExpandPath(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", fmt.Errorf("expanding %s: %w", path, err)
	}
	return expanded, nil
}

// Load reads every interval of the activities file in file order. A missing
// file is an empty log. Unreadable lines are skipped; they are reported
// together as a *multierror.Error of *LineError next to the intervals that
// could be read.
func Load(path string) ([]model.Interval, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []model.Interval{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var (
		items   []model.Interval
		skipped *multierror.Error
	)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		iv, err := ParseLine(line)
		if err != nil {
			skipped = multierror.Append(skipped, &LineError{Line: n, Err: err})
			continue
		}
		items = append(items, iv)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("storage error scanning %s: %w", path, err)
	}
	return items, skipped.ErrorOrNil()
}

// Save atomically writes the intervals, one per line, in the given order.
func Save(path string, items []model.Interval) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	var buf bytes.Buffer
	for _, iv := range items {
		buf.WriteString(FormatLine(iv))
		buf.WriteByte('\n')
	}

	// Atomic write: write to temp file then rename.
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}
