package model

import "time"

// Ending is the closing state of an interval: either still open or closed at
// a specific instant. The zero value is Open.
type Ending struct {
	at     time.Time
	closed bool
}

// Open returns the ending of an activity that is still running.
func Open() Ending {
	return Ending{}
}

// At returns an ending closed at t, normalized like interval timestamps.
func At(t time.Time) Ending {
	return Ending{at: Normalize(t), closed: true}
}

// IsOpen reports whether the activity has no recorded stop time.
func (e Ending) IsOpen() bool {
	return !e.closed
}

// Time returns the stop time and true, or the zero time and false if open.
func (e Ending) Time() (time.Time, bool) {
	return e.at, e.closed
}

// Compare orders endings: Open is greater than every closed ending, two open
// endings are equal, closed endings order by their timestamps.
func (e Ending) Compare(o Ending) int {
	switch {
	case !e.closed && !o.closed:
		return 0
	case !e.closed:
		return 1
	case !o.closed:
		return -1
	}
	return e.at.Compare(o.at)
}

// CompareTime compares the ending against an instant. Open is greater than
// any instant.
func (e Ending) CompareTime(t time.Time) int {
	if !e.closed {
		return 1
	}
	return e.at.Compare(t)
}

// Equal reports whether both endings are open, or both closed at the same instant.
func (e Ending) Equal(o Ending) bool {
	return e.Compare(o) == 0
}

// String renders the ending for debug output.
func (e Ending) String() string {
	if !e.closed {
		return "open"
	}
	return e.at.Format(time.DateTime)
}
