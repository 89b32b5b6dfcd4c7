// Package scheduler finds free time between calendar events and places
// unscheduled tasks into it.
package scheduler

import (
	"fmt"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// TimeSlot is the half-open interval [Start, End).
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// NewTimeSlot returns [start, end), collapsing an inverted range to empty.
func NewTimeSlot(start, end time.Time) TimeSlot {
	if end.Before(start) {
		end = start
	}
	return TimeSlot{Start: start, End: end}
}

func (s TimeSlot) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

func (s TimeSlot) IsEmpty() bool {
	return !s.End.After(s.Start)
}

func (s TimeSlot) String() string {
	return fmt.Sprintf("[%s, %s)", s.Start.Format(time.RFC3339), s.End.Format(time.RFC3339))
}

// BusySlots turns calendar events into busy intervals.
func BusySlots(events []model.CalendarEvent) []TimeSlot {
	slots := make([]TimeSlot, 0, len(events))
	for _, ev := range events {
		slots = append(slots, NewTimeSlot(ev.Start, ev.End))
	}
	return slots
}
