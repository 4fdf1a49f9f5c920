// Package store holds the timeline of recorded activities: an ordered,
// non-overlapping sequence of intervals with insert and delete operations
// that resolve overlap and keep the sequence consistent.
//
// A Store is owned by a single session and is not safe for concurrent use.
package store

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Tiliavir/stt/internal/model"
	"github.com/Tiliavir/stt/internal/timecalc"
)

// ErrNotFound is returned by Delete when no stored interval matches the target.
var ErrNotFound = errors.New("interval not found")

// Store is an ordered sequence of intervals. After every mutation the
// intervals are sorted by start, adjacent intervals do not overlap, and an
// open interval can only be the last one.
type Store struct {
	items []model.Interval
}

// New builds a store from intervals in any order. A collection that
// overlaps after sorting is rebuilt by inserting its intervals in start
// order, so later-starting intervals win.
func New(items []model.Interval) *Store {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, byStart)
	if overlapFree(sorted) {
		return &Store{items: sorted}
	}

	s := &Store{items: make([]model.Interval, 0, len(sorted))}
	for _, iv := range sorted {
		s.Insert(iv)
	}
	return s
}

// Insert adds iv so that it occupies exactly its own span. Intervals it fully
// covers are removed, partially overlapped ones are clipped, and an interval
// strictly containing iv is split into a left and a right remnant.
func (s *Store) Insert(iv model.Interval) {
	s.items = planInsert(s.items, iv).apply(s.items)
}

// Delete removes the first interval exactly equal to target.
//
// When the removed interval was contiguous with its predecessor, was closed,
// started and ended on the same calendar day, and was not the last interval,
// the predecessor is extended over the freed span. Only the immediate
// predecessor is considered.
func (s *Store) Delete(target model.Interval) error {
	i := slices.IndexFunc(s.items, target.Equal)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, target)
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)

	if s.closesGap(i, removed) {
		s.items[i-1].End = removed.End
	}
	return nil
}

// closesGap reports whether the predecessor of the interval just removed from
// position i should absorb its span.
func (s *Store) closesGap(i int, removed model.Interval) bool {
	if i == 0 || i >= len(s.items) {
		return false
	}
	end, closed := removed.End.Time()
	if !closed || !timecalc.SameDay(removed.Start, end) {
		return false
	}
	return s.items[i-1].End.CompareTime(removed.Start) == 0
}

// Latest returns the chronologically last interval.
func (s *Store) Latest() (model.Interval, bool) {
	if len(s.items) == 0 {
		return model.Interval{}, false
	}
	return s.items[len(s.items)-1], true
}

// All returns every interval, most recent first.
func (s *Store) All() []model.Interval {
	return s.Top(len(s.items))
}

// Top returns at most limit intervals, most recent first.
func (s *Store) Top(limit int) []model.Interval {
	limit = min(limit, len(s.items))
	if limit <= 0 {
		return nil
	}
	out := make([]model.Interval, 0, limit)
	for i := len(s.items) - 1; i >= len(s.items)-limit; i-- {
		out = append(out, s.items[i])
	}
	return out
}

// Items returns every interval in chronological order.
func (s *Store) Items() []model.Interval {
	return slices.Clone(s.items)
}

// Contains reports whether an interval equal to iv is stored.
func (s *Store) Contains(iv model.Interval) bool {
	return slices.ContainsFunc(s.items, iv.Equal)
}

// Len returns the number of stored intervals.
func (s *Store) Len() int {
	return len(s.items)
}

// Between returns, in chronological order, the intervals overlapping
// [from, to). Open intervals are treated as running forever.
func (s *Store) Between(from, to time.Time) []model.Interval {
	var out []model.Interval
	for _, iv := range s.items {
		if !iv.Start.Before(to) {
			break
		}
		if iv.End.CompareTime(from) > 0 || iv.Start.Equal(from) {
			out = append(out, iv)
		}
	}
	return out
}
