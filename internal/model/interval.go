package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrStartAfterEnd is returned when a closed interval would end before it starts.
var ErrStartAfterEnd = errors.New("start after end")

// Interval is one labeled span of recorded activity.
type Interval struct {
	Start    time.Time
	End      Ending
	Activity string
}

// Normalize converts t to local time and drops sub-second precision, so two
// instants that differ only below a second compare equal.
func Normalize(t time.Time) time.Time {
	return t.Local().Truncate(time.Second)
}

// StartingAt returns an open-ended interval.
func StartingAt(start time.Time, activity string) Interval {
	return Interval{
		Start:    Normalize(start),
		End:      Open(),
		Activity: activity,
	}
}

// Closed returns an interval from start to end. Zero-length intervals are
// allowed; an end before the start is not.
func Closed(start, end time.Time, activity string) (Interval, error) {
	start, end = Normalize(start), Normalize(end)
	if end.Before(start) {
		return Interval{}, fmt.Errorf("%w: %s > %s", ErrStartAfterEnd,
			start.Format(time.DateTime), end.Format(time.DateTime))
	}
	return Interval{
		Start:    start,
		End:      At(end),
		Activity: activity,
	}, nil
}

// Until returns a copy of i closed at end.
func (i Interval) Until(end time.Time) (Interval, error) {
	return Closed(i.Start, end, i.Activity)
}

// Equal reports whether start, end and activity are identical.
func (i Interval) Equal(o Interval) bool {
	return i.Start.Equal(o.Start) && i.End.Equal(o.End) && i.Activity == o.Activity
}

// Headline returns the first line of the activity.
func (i Interval) Headline() string {
	headline, _, _ := strings.Cut(i.Activity, "\n")
	return headline
}

// Duration returns the length of the interval. Open intervals run until now.
func (i Interval) Duration(now time.Time) time.Duration {
	if end, ok := i.End.Time(); ok {
		return end.Sub(i.Start)
	}
	if now.Before(i.Start) {
		return 0
	}
	return now.Sub(i.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("%s → %s %q", i.Start.Format(time.DateTime), i.End, i.Headline())
}
