// Package report aggregates tracked time per activity.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/timecalc"
)

// maxNameWidth caps the activity column; longer headlines are truncated.
const maxNameWidth = 48

// Entry is the time spent on one activity headline.
type Entry struct {
	Activity string
	Duration time.Duration
}

// Summary is the time spent per activity within [From, To).
type Summary struct {
	From, To time.Time
	Entries  []Entry
	Total    time.Duration
}

// Day is the summary of one calendar day.
type Day struct {
	Date time.Time
	Summary
}

// Summarize totals the part of every interval that falls within [from, to),
// grouped by headline. Open intervals run until now. Entries are sorted by
// duration, longest first.
func Summarize(items []model.Interval, from, to, now time.Time) Summary {
	s := Summary{From: from, To: to}
	totals := map[string]time.Duration{}
	for _, iv := range items {
		d := overlap(iv, from, to, now)
		if d <= 0 {
			continue
		}
		totals[iv.Headline()] += d
		s.Total += d
	}

	for activity, d := range totals {
		s.Entries = append(s.Entries, Entry{Activity: activity, Duration: d})
	}
	slices.SortFunc(s.Entries, func(a, b Entry) int {
		if c := cmp.Compare(b.Duration, a.Duration); c != 0 {
			return c
		}
		return strings.Compare(a.Activity, b.Activity)
	})
	return s
}

// Daily splits [from, to) at local midnights and summarizes each day that
// has tracked time.
func Daily(items []model.Interval, from, to, now time.Time) []Day {
	var days []Day
	for _, d := range timecalc.Days(from, to) {
		start := d
		if start.Before(from) {
			start = from
		}
		end := timecalc.Midnight(d)
		if end.After(to) {
			end = to
		}
		if !start.Before(end) {
			continue
		}
		if s := Summarize(items, start, end, now); s.Total > 0 {
			days = append(days, Day{Date: d, Summary: s})
		}
	}
	return days
}

func overlap(iv model.Interval, from, to, now time.Time) time.Duration {
	end, closed := iv.End.Time()
	if !closed {
		end = now
	}
	start := iv.Start
	if start.Before(from) {
		start = from
	}
	if end.After(to) {
		end = to
	}
	return end.Sub(start)
}

// WriteTable renders the summary as an aligned two-column table. Columns are
// measured in terminal cells so wide characters line up.
func WriteTable(w io.Writer, s Summary) error {
	names := make([]string, len(s.Entries))
	durations := make([]string, len(s.Entries))
	width := runewidth.StringWidth("Total")
	durWidth := 0
	for i, e := range s.Entries {
		names[i] = runewidth.Truncate(e.Activity, maxNameWidth, "…")
		durations[i] = formatDuration(e.Duration)
		width = max(width, runewidth.StringWidth(names[i]))
		durWidth = max(durWidth, len(durations[i]))
	}
	total := formatDuration(s.Total)
	durWidth = max(durWidth, len(total))

	var b strings.Builder
	for i := range names {
		fmt.Fprintf(&b, "%s  %s\n", runewidth.FillRight(names[i], width), durations[i])
	}
	b.WriteString(strings.Repeat("-", width+2+durWidth))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "%s  %s\n", runewidth.FillRight("Total", width), total)

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteDaily renders one table per day, each under a date heading.
func WriteDaily(w io.Writer, days []Day) error {
	for i, d := range days {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s\n", d.Date.Format("2006-01-02 Mon")); err != nil {
			return err
		}
		if err := WriteTable(w, d.Summary); err != nil {
			return err
		}
	}
	return nil
}

func formatDuration(d time.Duration) string {
	return timecalc.FormatDuration(int64(d / time.Second))
}
