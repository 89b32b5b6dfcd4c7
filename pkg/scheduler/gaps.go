package scheduler

import (
	"sort"
	"time"
)

// FindGaps returns the free intervals of [windowStart, windowEnd) not
// covered by busy, in chronological order.
//
// Busy intervals are clipped to the window and merged only when they
// strictly overlap; touching intervals stay separate, which never
// produces a zero-length gap between them.
func FindGaps(windowStart, windowEnd time.Time, busy []TimeSlot) []TimeSlot {
	if !windowEnd.After(windowStart) {
		return nil
	}

	clipped := make([]TimeSlot, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(windowStart) || !b.Start.Before(windowEnd) {
			continue
		}
		c := TimeSlot{Start: maxTime(b.Start, windowStart), End: minTime(b.End, windowEnd)}
		if c.IsEmpty() {
			continue
		}
		clipped = append(clipped, c)
	}
	sort.SliceStable(clipped, func(i, j int) bool {
		return clipped[i].Start.Before(clipped[j].Start)
	})

	merged := make([]TimeSlot, 0, len(clipped))
	for _, c := range clipped {
		if n := len(merged); n > 0 && c.Start.Before(merged[n-1].End) {
			merged[n-1].End = maxTime(merged[n-1].End, c.End)
			continue
		}
		merged = append(merged, c)
	}

	var gaps []TimeSlot
	cursor := windowStart
	for _, block := range merged {
		if block.Start.After(cursor) {
			gaps = append(gaps, TimeSlot{Start: cursor, End: block.Start})
		}
		cursor = maxTime(cursor, block.End)
	}
	if cursor.Before(windowEnd) {
		gaps = append(gaps, TimeSlot{Start: cursor, End: windowEnd})
	}
	return gaps
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
