package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Tiliavir/stt/internal/model"
)

// TimeLayout is the fixed-width timestamp layout of the activities file.
const TimeLayout = "2006-01-02_15:04:05"

var (
	// ErrBadFormat is returned for lines that do not start with a timestamp.
	ErrBadFormat = errors.New("bad format")
	// ErrActivityMissing is returned for lines without an activity separator.
	ErrActivityMissing = errors.New("activity missing")
)

// LineError describes one unreadable line of the activities file.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// FormatLine renders an interval as one line: start, optional end, activity.
func FormatLine(iv model.Interval) string {
	var b strings.Builder
	b.WriteString(iv.Start.Format(TimeLayout))
	b.WriteByte(' ')
	if end, ok := iv.End.Time(); ok {
		b.WriteString(end.Format(TimeLayout))
		b.WriteByte(' ')
	}
	b.WriteString(escape(iv.Activity))
	return b.String()
}

// ParseLine reads a line written by FormatLine.
func ParseLine(line string) (model.Interval, error) {
	n := len(TimeLayout)
	if len(line) < n {
		return model.Interval{}, ErrBadFormat
	}
	start, err := time.ParseInLocation(TimeLayout, line[:n], time.Local)
	if err != nil {
		return model.Interval{}, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}

	if len(line) >= 2*n+1 {
		if end, err := time.ParseInLocation(TimeLayout, line[n+1:2*n+1], time.Local); err == nil {
			if len(line) < 2*n+2 {
				return model.Interval{}, ErrActivityMissing
			}
			return model.Closed(start, end, unescape(line[2*n+2:]))
		}
	}

	if len(line) < n+1 {
		return model.Interval{}, ErrActivityMissing
	}
	return model.StartingAt(start, unescape(line[n+1:])), nil
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "\n", `\n`).Replace(s)
}

func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
