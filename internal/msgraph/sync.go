package msgraph

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/timecalc"
)

// Inserter receives imported intervals.
type Inserter interface {
	Insert(iv model.Interval)
	Contains(iv model.Interval) bool
}

// SyncResult holds counters for a sync operation.
type SyncResult struct {
	Imported int
	Skipped  int
	Errors   int
}

// SyncOptions configures a sync run.
type SyncOptions struct {
	// Prefix is prepended to every event subject.
	Prefix string
	// Timezone is the IANA zone Graph times are given in; empty means UTC.
	Timezone string
	DryRun   bool
	// Out receives one progress line per event. Nil discards them.
	Out io.Writer
}

// parseGraphTime parses a Graph API dateTime string in the given timezone.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set.
func parseGraphTime(dt, tz string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}

	loc := time.UTC
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
		}
		loc = l
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// label builds the activity text: the subject on the first line, body
// preview and location on the following ones.
func label(event CalendarEvent, prefix string) string {
	parts := []string{prefix + event.Subject}
	if preview := strings.TrimSpace(event.BodyPreview); preview != "" {
		parts = append(parts, preview)
	}
	if event.Location.DisplayName != "" {
		parts = append(parts, event.Location.DisplayName)
	}
	return strings.Join(parts, "\n")
}

// shouldSkip returns true if the event should not be imported.
func shouldSkip(event CalendarEvent) bool {
	switch {
	case event.IsCancelled, event.IsAllDay:
		return true
	case event.Sensitivity == "private", event.ShowAs == "free":
		return true
	case event.Start.DateTime == "", event.End.DateTime == "":
		return true
	}
	return false
}

// MapEvent converts a Graph CalendarEvent into a closed interval.
func MapEvent(event CalendarEvent, timezone, prefix string) (model.Interval, error) {
	start, err := parseGraphTime(event.Start.DateTime, timezone)
	if err != nil {
		return model.Interval{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, timezone)
	if err != nil {
		return model.Interval{}, fmt.Errorf("parsing end time: %w", err)
	}
	return model.Closed(start, end, label(event, prefix))
}

// SyncEvents inserts the importable events. Events already recorded with the
// same times and text are skipped, so repeated syncs are idempotent. Overlap
// with existing intervals is resolved by the store: the later insert wins.
func SyncEvents(ins Inserter, events []CalendarEvent, opts SyncOptions) (SyncResult, error) {
	var result SyncResult
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	for _, event := range events {
		if shouldSkip(event) {
			continue
		}

		iv, err := MapEvent(event, opts.Timezone, opts.Prefix)
		if err != nil {
			fmt.Fprintf(out, "  ! Error mapping event %q: %v\n", event.Subject, err)
			result.Errors++
			continue
		}

		if ins.Contains(iv) {
			fmt.Fprintf(out, "  – Skipped:  %s (already exists)\n", event.Subject)
			result.Skipped++
			continue
		}

		if !opts.DryRun {
			ins.Insert(iv)
		}
		fmt.Fprintf(out, "  ✓ Imported: %s (%s)\n", event.Subject,
			timecalc.FormatDuration(int64(iv.Duration(iv.Start)/time.Second)))
		result.Imported++
	}

	return result, nil
}
