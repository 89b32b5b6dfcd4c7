package model

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by TaskStore lookups that match nothing.
	ErrNotFound = errors.New("task not found")
	// ErrEventNotFound is returned when a calendar event no longer exists.
	ErrEventNotFound = errors.New("calendar event not found")
	// ErrCalendarUnavailable means there is no writable calendar or access was denied.
	ErrCalendarUnavailable = errors.New("no writable calendar available")
)

// TaskStore is the durable task store, keyed by task id.
type TaskStore interface {
	GetTask(ctx context.Context, id string) (*Task, error)
	// ListTasks returns every task that is not soft-deleted.
	ListTasks(ctx context.Context) ([]Task, error)
	ListDeletedTasks(ctx context.Context) ([]Task, error)
	// GetUnscheduledTasks returns undated tasks that are neither completed nor deleted.
	GetUnscheduledTasks(ctx context.Context) ([]Task, error)
	GetOverdueTasks(ctx context.Context, now time.Time) ([]Task, error)
	GetTasksInRange(ctx context.Context, start, end time.Time) ([]Task, error)
	FindTaskByTitleAndDate(ctx context.Context, title string, start, end time.Time) (*Task, error)
	FindUnscheduledTaskByTitle(ctx context.Context, title string) (*Task, error)
	GetTaskByCalendarEventID(ctx context.Context, eventID string, includeDeleted bool) (*Task, error)
	InsertTasks(ctx context.Context, tasks []Task) error
	UpdateTask(ctx context.Context, task Task) error
	// UpdateTasks writes all tasks in one transaction.
	UpdateTasks(ctx context.Context, tasks []Task) error
	DeleteTask(ctx context.Context, task Task) error
	DeleteSoftDeletedOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Calendar is the external calendar: a source of busy intervals and a
// sink for event writes.
type Calendar interface {
	GetEventsInRange(ctx context.Context, start, end time.Time, excludedCalendarIDs []string) ([]CalendarEvent, error)
	AddToCalendar(ctx context.Context, ev NewEvent) (*CreatedEvent, error)
	UpdateCalendarEvent(ctx context.Context, eventID string, details EventDetails) error
	DeleteCalendarEvent(ctx context.Context, eventID string) error
	// GetEventLink returns a URL that opens the event, or ErrEventNotFound.
	GetEventLink(ctx context.Context, eventID string) (string, error)
}

// Reminders schedules one-shot alarms. Scheduling again for the same task
// replaces the pending alarm.
type Reminders interface {
	ScheduleReminder(taskID, content string, at time.Time, priority string)
	CancelReminder(taskID string)
}
