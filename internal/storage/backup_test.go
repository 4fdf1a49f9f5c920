package storage_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Tiliavir/stt/internal/storage"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestBackupDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities")
	writeFile(t, path, "x")

	created, err := storage.Backup(path, storage.BackupPolicy{Dir: filepath.Join(dir, "b")}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if created != "" {
		t.Errorf("Backup created %q with backups disabled", created)
	}
}

func TestBackupCreatesDatedCopy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities")
	writeFile(t, path, "content")
	policy := storage.BackupPolicy{Dir: filepath.Join(dir, "backups"), IntervalDays: 1, Retention: 3}
	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.Local)

	created, err := storage.Backup(path, policy, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(created) != "activities-2026-02-27" {
		t.Fatalf("Backup created %q", created)
	}
	data, err := os.ReadFile(created)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "content" {
		t.Errorf("backup content = %q", data)
	}

	// Same day: nothing new.
	created, err = storage.Backup(path, policy, now.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if created != "" {
		t.Errorf("second backup on the same day created %q", created)
	}
}

func TestBackupRespectsIntervalAndRetention(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "activities")
	backups := filepath.Join(dir, "backups")
	writeFile(t, path, "content")
	if err := os.MkdirAll(backups, 0o700); err != nil {
		t.Fatal(err)
	}
	for _, day := range []string{"2026-02-01", "2026-02-10", "2026-02-20"} {
		writeFile(t, filepath.Join(backups, "activities-"+day), "old")
	}
	writeFile(t, filepath.Join(backups, "unrelated"), "keep me")
	policy := storage.BackupPolicy{Dir: backups, IntervalDays: 7, Retention: 2}

	created, err := storage.Backup(path, policy, time.Date(2026, 2, 25, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if created != "" {
		t.Errorf("backup within interval created %q", created)
	}
	if _, err := os.Stat(filepath.Join(backups, "activities-2026-02-01")); !os.IsNotExist(err) {
		t.Error("oldest backup beyond retention should be removed")
	}

	created, err = storage.Backup(path, policy, time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local))
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(created) != "activities-2026-02-27" {
		t.Errorf("backup after interval = %q", created)
	}
	entries, err := os.ReadDir(backups)
	if err != nil {
		t.Fatal(err)
	}
	// Two retained backups plus the unrelated file.
	if len(entries) != 3 {
		t.Errorf("backup dir has %d entries, want 3", len(entries))
	}
}
