package instruction

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"
)

const (
	timePattern     = `(\d{4}[-.]\d{2}[-.]\d{2}[ _T]\d{1,2}:\d{2}(?::\d{2})?|\d{1,2}:\d{2}(?::\d{2})?)`
	durationPattern = `(\d+\s*[a-zµ]+(?:\s*\d+\s*[a-zµ]+)*)`
)

var (
	spanRe     = regexp.MustCompile(`(?is)^(.*?)\s+from\s+` + timePattern + `\s+(?:to|until)\s+` + timePattern + `$`)
	absoluteRe = regexp.MustCompile(`(?is)^(.*?)\s+(?:since|at)\s+` + timePattern + `$`)
	sinceRe    = regexp.MustCompile(`(?is)^(.*?)\s+since\s+` + durationPattern + `$`)
	agoRe      = regexp.MustCompile(`(?is)^(.*?)\s+` + durationPattern + `\s+ago$`)

	unitRe = regexp.MustCompile(`(?i)(\d+)\s*(weeks|week|w|days|day|d|hours|hour|hrs|hr|h|minutes|minute|mins|min|m|seconds|second|secs|sec|s)\b`)
)

var unitAbbrev = map[string]string{
	"weeks": "w", "week": "w", "w": "w",
	"days": "d", "day": "d", "d": "d",
	"hours": "h", "hour": "h", "hrs": "h", "hr": "h", "h": "h",
	"minutes": "m", "minute": "m", "mins": "m", "min": "m", "m": "m",
	"seconds": "s", "second": "s", "secs": "s", "sec": "s", "s": "s",
}

// dateLayouts are tried in order for absolute times that carry a date.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02_15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006.01.02 15:04:05",
	"2006.01.02 15:04",
}

var clockLayouts = []string{"15:04:05", "15:04"}

// Parse reads a free-form command:
//
//	fin [at TIME | DURATION ago]
//	resume [at TIME | DURATION ago]
//	ACTIVITY [since DURATION | since TIME | at TIME | DURATION ago | from TIME to TIME]
//
// TIME is HH:MM[:SS] (today) or a date followed by a clock time. DURATION
// accepts compact (1h30m) and spelled out (1 hour 30 mins) forms. A suffix
// that does not read as a time is kept as part of the activity.
func Parse(input string, now time.Time) (Instruction, error) {
	activity, when, err := splitWhen(strings.TrimSpace(input), now)
	if err != nil {
		return Instruction{}, err
	}

	ins := Instruction{Kind: Start, Activity: activity, When: when}
	switch strings.ToLower(activity) {
	case "fin":
		ins.Kind, ins.Activity = Fin, ""
	case "resume":
		ins.Kind, ins.Activity = Resume, ""
	}

	if ins.Kind != Start && when.IsSpan() {
		return Instruction{}, fmt.Errorf("%w: %s takes a single point in time", ErrBadTime, ins.Kind)
	}
	if ins.Kind == Start && ins.Activity == "" {
		return Instruction{}, ErrEmptyActivity
	}
	return ins, nil
}

// splitWhen separates a trailing time specification from the activity.
func splitWhen(text string, now time.Time) (string, TimeSpec, error) {
	if m := spanRe.FindStringSubmatch(text); m != nil {
		from, fromHasDate, err := ParseTime(m[2], now)
		if err != nil {
			return "", TimeSpec{}, err
		}
		to, toHasDate, err := ParseTime(m[3], now)
		if err != nil {
			return "", TimeSpec{}, err
		}
		// "from 23:00 to 01:00" ends the next day.
		if !toHasDate && !fromHasDate && to.Before(from) {
			to = to.AddDate(0, 0, 1)
		}
		return strings.TrimSpace(m[1]), Span(from, to), nil
	}

	if m := absoluteRe.FindStringSubmatch(text); m != nil {
		at, _, err := ParseTime(m[2], now)
		if err != nil {
			return "", TimeSpec{}, err
		}
		return strings.TrimSpace(m[1]), Absolute(at), nil
	}

	for _, re := range []*regexp.Regexp{sinceRe, agoRe} {
		if m := re.FindStringSubmatch(text); m != nil {
			if d, err := ParseDuration(m[2]); err == nil {
				return strings.TrimSpace(m[1]), Relative(-d), nil
			}
		}
	}

	return text, Now(), nil
}

// ParseDuration reads durations like "15m", "1h30m", "2 hours 5 mins" or "1d".
func ParseDuration(s string) (time.Duration, error) {
	compact := unitRe.ReplaceAllStringFunc(s, func(tok string) string {
		m := unitRe.FindStringSubmatch(tok)
		return m[1] + unitAbbrev[strings.ToLower(m[2])]
	})
	compact = strings.Join(strings.Fields(compact), "")

	d, err := str2duration.ParseDuration(compact)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadTime, s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrBadTime, s)
	}
	return d, nil
}

// ParseTime reads an absolute time. A bare clock time refers to the day of
// now. The boolean reports whether the input carried a date.
func ParseTime(s string, now time.Time) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	loc := now.Location()
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true, nil
		}
	}
	for _, layout := range clockLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return time.Date(now.Year(), now.Month(), now.Day(),
				t.Hour(), t.Minute(), t.Second(), 0, loc), false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("%w: %q", ErrBadTime, s)
}
