// Package instruction turns user input into a start, fin or resume
// instruction with a resolved point in time.
package instruction

import (
	"errors"
	"fmt"
	"time"

	"github.com/Tiliavir/stt/internal/model"
)

var (
	// ErrEmptyActivity is returned when a start instruction has no label.
	ErrEmptyActivity = errors.New("activity is empty")
	// ErrBadTime is returned for time specifications that cannot be read.
	ErrBadTime = errors.New("bad time specification")
)

// Kind discriminates instructions.
type Kind int

const (
	// Start begins an activity.
	Start Kind = iota
	// Fin closes the running activity.
	Fin
	// Resume restarts the latest activity's label.
	Resume
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "start"
	case Fin:
		return "fin"
	case Resume:
		return "resume"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

type specKind int

const (
	specNow specKind = iota
	specRelative
	specAbsolute
	specSpan
)

// TimeSpec is a point in time as the user gave it: now, relative to now,
// absolute, or an explicit span with two endpoints.
type TimeSpec struct {
	kind     specKind
	offset   time.Duration
	from, to time.Time
}

// Now is the moment the instruction is executed.
func Now() TimeSpec {
	return TimeSpec{kind: specNow}
}

// Relative is now shifted by offset (negative for the past).
func Relative(offset time.Duration) TimeSpec {
	return TimeSpec{kind: specRelative, offset: offset}
}

// Absolute is a fixed instant.
func Absolute(t time.Time) TimeSpec {
	return TimeSpec{kind: specAbsolute, from: t}
}

// Span is an explicit interval from one instant to another.
func Span(from, to time.Time) TimeSpec {
	return TimeSpec{kind: specSpan, from: from, to: to}
}

// IsSpan reports whether ts carries two endpoints.
func (ts TimeSpec) IsSpan() bool {
	return ts.kind == specSpan
}

// Resolve returns the instant ts denotes. A span resolves to its start.
func (ts TimeSpec) Resolve(now time.Time) time.Time {
	switch ts.kind {
	case specRelative:
		return now.Add(ts.offset)
	case specAbsolute, specSpan:
		return ts.from
	}
	return now
}

// Bounds returns both endpoints of a span.
func (ts TimeSpec) Bounds() (time.Time, time.Time, bool) {
	return ts.from, ts.to, ts.kind == specSpan
}

// Instruction is one parsed user command.
type Instruction struct {
	Kind     Kind
	Activity string
	When     TimeSpec
}

// Interval builds the interval a start instruction records: closed for a
// span, open otherwise.
func (ins Instruction) Interval(now time.Time) (model.Interval, error) {
	if ins.Activity == "" {
		return model.Interval{}, ErrEmptyActivity
	}
	if from, to, ok := ins.When.Bounds(); ok {
		return model.Closed(from, to, ins.Activity)
	}
	return model.StartingAt(ins.When.Resolve(now), ins.Activity), nil
}
