package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

const (
	allDaySpan = 24 * time.Hour
	timedSpan  = time.Hour

	manualDescription = "Created from taskday"
)

// ScheduleManager applies single-task schedule edits outside a full sync
// and keeps the reminder and any linked calendar event in step.
type ScheduleManager struct {
	store     model.TaskStore
	calendar  model.Calendar
	reminders model.Reminders
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewScheduleManager(store model.TaskStore, cal model.Calendar, rem model.Reminders, loc *time.Location, logger *slog.Logger) *ScheduleManager {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ScheduleManager{
		store:     store,
		calendar:  cal,
		reminders: rem,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// SetClock overrides the time source.
func (m *ScheduleManager) SetClock(now func() time.Time) {
	m.now = now
}

// UpdateTaskSchedule moves task to newDate. With newTime the task becomes
// exactly timed at newTime; without it the task becomes all-day on
// newDate's day.
func (m *ScheduleManager) UpdateTaskSchedule(ctx context.Context, task model.Task, newDate time.Time, newTime *time.Time) (model.Task, error) {
	if newTime != nil {
		task.ScheduledDate = *newTime
		task.ReminderTime = model.TimePtr(*newTime)
	} else {
		task.ScheduledDate = util.StartOfDay(newDate, m.loc)
		task.ReminderTime = nil
	}

	if err := m.store.UpdateTask(ctx, task); err != nil {
		return task, fmt.Errorf("failed to update task schedule: %w", err)
	}

	if task.ReminderTime != nil {
		m.reminders.ScheduleReminder(task.ID, task.Content, *task.ReminderTime, task.Priority.String())
	} else {
		m.reminders.CancelReminder(task.ID)
	}

	if task.IsSynced() {
		if err := m.calendar.UpdateCalendarEvent(ctx, task.CalendarEventID, m.eventDetails(task, task.ScheduledDate)); err != nil {
			return task, fmt.Errorf("failed to update calendar event %s: %w", task.CalendarEventID, err)
		}
	}
	return task, nil
}

// UpdateTaskDate moves task to newDate keeping the reminder's time of day.
func (m *ScheduleManager) UpdateTaskDate(ctx context.Context, task model.Task, newDate time.Time) (model.Task, error) {
	var newTime *time.Time
	if task.ReminderTime != nil {
		old := task.ReminderTime.In(m.loc)
		newTime = model.TimePtr(util.AtClock(newDate, old.Hour(), old.Minute(), m.loc))
	}
	return m.UpdateTaskSchedule(ctx, task, newDate, newTime)
}

// AddToCalendar creates an event for an unlinked task and links it.
// Undated tasks are placed at the current time.
func (m *ScheduleManager) AddToCalendar(ctx context.Context, task model.Task) (*model.CreatedEvent, error) {
	start := task.ScheduledDate
	if start.IsZero() {
		start = m.now()
	}
	created, err := m.calendar.AddToCalendar(ctx, model.NewEvent{
		EventDetails: m.eventDetails(task, start),
		TaskID:       task.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add task to calendar: %w", err)
	}

	task.CalendarEventID = created.ID
	if err := m.store.UpdateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to link calendar event: %w", err)
	}
	return created, nil
}

// OpenCalendarEvent returns a link to the task's event. A link to an event
// that was deleted in the calendar is cleared and ErrEventNotFound returned.
func (m *ScheduleManager) OpenCalendarEvent(ctx context.Context, task model.Task) (string, error) {
	if !task.IsSynced() {
		return "", model.ErrEventNotFound
	}
	link, err := m.calendar.GetEventLink(ctx, task.CalendarEventID)
	if err == nil {
		return link, nil
	}
	if !errors.Is(err, model.ErrEventNotFound) {
		return "", err
	}

	m.logger.Warn("clearing stale calendar link", slog.String("task", task.ID), slog.String("event", task.CalendarEventID))
	task.CalendarEventID = ""
	if uerr := m.store.UpdateTask(ctx, task); uerr != nil {
		return "", fmt.Errorf("failed to clear stale calendar link: %w", uerr)
	}
	return "", err
}

func (m *ScheduleManager) eventDetails(task model.Task, start time.Time) model.EventDetails {
	span := timedSpan
	if task.IsAllDay() {
		span = allDaySpan
	}
	return model.EventDetails{
		Title:       task.Content,
		Description: manualDescription,
		Start:       start,
		End:         start.Add(span),
		AllDay:      task.IsAllDay(),
		Priority:    task.Priority,
	}
}
