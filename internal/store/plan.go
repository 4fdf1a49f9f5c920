package store

import (
	"slices"
	"sort"

	"github.com/Tiliavir/stt/internal/model"
)

// action is what an insertion does to one existing interval.
type action int

const (
	keep      action = iota
	drop             // fully covered by the new interval
	clipEnd          // overlaps the new interval's start
	clipStart        // overlaps the new interval's end
	split            // strictly contains the new interval
)

func (a action) String() string {
	switch a {
	case keep:
		return "keep"
	case drop:
		return "drop"
	case clipEnd:
		return "clip-end"
	case clipStart:
		return "clip-start"
	case split:
		return "split"
	}
	return "unknown"
}

// insertPlan describes an insertion before anything is mutated. Only
// items[lo:hi] can conflict with the new interval; steps holds one action
// per interval of that window.
type insertPlan struct {
	item   model.Interval
	lo, hi int
	steps  []action
}

// planInsert locates the window of intervals that may conflict with iv and
// classifies each of them. items must satisfy the store invariants, which
// makes both starts and ends monotone.
func planInsert(items []model.Interval, iv model.Interval) insertPlan {
	// First interval whose end is not strictly before the new start.
	lo := sort.Search(len(items), func(i int) bool {
		return items[i].End.CompareTime(iv.Start) >= 0
	})

	hi := len(items)
	if end, closed := iv.End.Time(); closed {
		// Intervals starting after the new end cannot conflict.
		hi = lo + sort.Search(len(items)-lo, func(i int) bool {
			return items[lo+i].Start.After(end)
		})
	}

	p := insertPlan{item: iv, lo: lo, hi: hi, steps: make([]action, 0, hi-lo)}
	for _, x := range items[lo:hi] {
		p.steps = append(p.steps, classify(x, iv))
	}
	return p
}

// classify decides what happens to the existing interval x when iv is inserted.
func classify(x, iv model.Interval) action {
	end, closed := iv.End.Time()

	switch {
	case !x.Start.Before(iv.Start) && x.End.Compare(iv.End) <= 0:
		return drop
	case x.End.CompareTime(iv.Start) <= 0:
		return keep
	case closed && !x.Start.Before(end):
		return keep
	case x.Start.Before(iv.Start):
		if closed && x.End.CompareTime(end) > 0 {
			return split
		}
		return clipEnd
	default:
		return clipStart
	}
}

// replacement builds what takes the place of the window: clipped left
// neighbours, the new interval, a right remainder if an interval was split,
// then clipped right neighbours.
func (p insertPlan) replacement(window []model.Interval) []model.Interval {
	out := make([]model.Interval, 0, len(window)+2)
	placed := false
	place := func() {
		if !placed {
			out = append(out, p.item)
			placed = true
		}
	}
	newEnd, _ := p.item.End.Time()

	for i, x := range window {
		if !x.Start.Before(p.item.Start) {
			place()
		}
		switch p.steps[i] {
		case keep:
			out = append(out, x)
		case drop:
		case clipEnd:
			x.End = model.At(p.item.Start)
			out = append(out, x)
		case clipStart:
			x.Start = newEnd
			out = append(out, x)
		case split:
			right := x
			right.Start = newEnd
			x.End = model.At(p.item.Start)
			out = append(out, x)
			place()
			out = append(out, right)
		}
	}
	place()
	return out
}

// apply performs the planned insertion in one splice.
func (p insertPlan) apply(items []model.Interval) []model.Interval {
	return slices.Replace(items, p.lo, p.hi, p.replacement(items[p.lo:p.hi])...)
}

// overlapFree reports whether sorted items satisfy the no-overlap invariant.
func overlapFree(items []model.Interval) bool {
	for i := 1; i < len(items); i++ {
		if items[i-1].End.CompareTime(items[i].Start) > 0 {
			return false
		}
	}
	return true
}

func byStart(a, b model.Interval) int {
	if c := a.Start.Compare(b.Start); c != 0 {
		return c
	}
	return a.End.Compare(b.End)
}
