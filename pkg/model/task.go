package model

import (
	"fmt"
	"strings"
	"time"
)

// Priority orders tasks for auto-scheduling. The numeric value is the weight.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "LOW"
	case PriorityHigh:
		return "HIGH"
	default:
		return "MEDIUM"
	}
}

// Weight returns the sort weight, treating unknown values as MEDIUM.
func (p Priority) Weight() int {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return int(p)
	default:
		return int(PriorityMedium)
	}
}

// ParsePriority accepts "low", "medium" or "high" in any case.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW", "L":
		return PriorityLow, nil
	case "MEDIUM", "MED", "M":
		return PriorityMedium, nil
	case "HIGH", "H":
		return PriorityHigh, nil
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

// Task is a single entry in the local task list.
type Task struct {
	ID          string
	Content     string
	IsCompleted bool
	// IsDeleted marks a soft delete. The record stays around so a later
	// pull sync does not resurrect it from the calendar.
	IsDeleted bool
	CreatedAt time.Time
	// ScheduledDate is the zero time when no date is assigned.
	ScheduledDate time.Time
	// CalendarEventID is empty for tasks not linked to a calendar event.
	CalendarEventID string
	// ReminderTime is nil for all-day or untimed tasks.
	ReminderTime *time.Time
	Priority     Priority
	OrderIndex   int
	IsRecurring  bool
	// RemovedAt records when the soft delete happened.
	RemovedAt time.Time
}

// IsScheduled reports whether the task has a date.
func (t Task) IsScheduled() bool {
	return !t.ScheduledDate.IsZero()
}

// IsSynced reports whether the task mirrors a calendar event.
func (t Task) IsSynced() bool {
	return t.CalendarEventID != ""
}

// IsAllDay reports whether the task has no specific time.
func (t Task) IsAllDay() bool {
	return t.ReminderTime == nil
}

// IsActive reports whether the task shows up in active views.
func (t Task) IsActive() bool {
	return !t.IsDeleted && !t.IsCompleted
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

// SameTime compares two optional instants.
func SameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
