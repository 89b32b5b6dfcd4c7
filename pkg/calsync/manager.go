// Package calsync reconciles local tasks with the calendar and fills the
// remaining free time with unscheduled tasks.
package calsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/scheduler"
	"github.com/harrisonrobin/taskday/pkg/util"
)

const (
	pushDescription      = "Synced from taskday"
	autoSchedDescription = "Auto-scheduled by taskday"
)

// Manager runs full sync passes against one store and one calendar.
type Manager struct {
	calendar   model.Calendar
	store      model.TaskStore
	reminders  model.Reminders
	auto       *scheduler.AutoScheduler
	logger     *slog.Logger
	loc        *time.Location
	calendarID string
	now        func() time.Time
	newID      func() string

	group singleflight.Group
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithLocation sets the zone used for day boundaries.
func WithLocation(loc *time.Location) Option {
	return func(m *Manager) { m.loc = loc }
}

// WithCalendarID selects the calendar pushed events are written to.
func WithCalendarID(id string) Option {
	return func(m *Manager) { m.calendarID = id }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(m *Manager) { m.newID = f }
}

func NewManager(cal model.Calendar, store model.TaskStore, rem model.Reminders, opts ...Option) *Manager {
	m := &Manager{
		calendar:  cal,
		store:     store,
		reminders: rem,
		auto:      scheduler.NewAutoScheduler(),
		logger:    slog.Default(),
		loc:       time.Local,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RunRequest holds the caller-side inputs of a sync pass.
type RunRequest struct {
	Now                 time.Time
	DeadlineHour        int
	ExcludedCalendarIDs []string
}

// Run computes the sync window for req.Now, loads the active tasks and
// performs a full sync. Overlapping calls share the pass already in flight.
func (m *Manager) Run(ctx context.Context, req RunRequest) (Report, error) {
	v, err, shared := m.group.Do("sync", func() (interface{}, error) {
		now := req.Now
		if now.IsZero() {
			now = m.now()
		}
		w := ComputeSyncWindow(now, req.DeadlineHour, m.loc)

		all, err := m.store.ListTasks(ctx)
		if err != nil {
			return Report{Window: w}, fmt.Errorf("failed to load tasks: %w", err)
		}
		res, err := m.PerformFullSync(ctx, w.Start, w.End, req.ExcludedCalendarIDs, all)
		return Report{Result: res, Window: w}, err
	})
	if shared {
		m.logger.Debug("joined sync already in progress")
	}
	return v.(Report), err
}

// PerformFullSync pulls calendar events into tasks, pushes unlinked
// scheduled tasks to the calendar, then auto-schedules unscheduled tasks
// into the remaining gaps of [windowStart, windowEnd). Each step commits
// on its own; an error aborts the remaining steps only.
func (m *Manager) PerformFullSync(ctx context.Context, windowStart, windowEnd time.Time, excludedCalendarIDs []string, allTasks []model.Task) (Result, error) {
	var res Result

	events, err := m.calendar.GetEventsInRange(ctx, windowStart, windowEnd, excludedCalendarIDs)
	if err != nil {
		return res, fmt.Errorf("failed to fetch calendar events: %w", err)
	}

	res.ImportedCount, err = m.pull(ctx, events)
	if err != nil {
		return res, err
	}

	res.PushedCount, err = m.push(ctx, windowStart, windowEnd, allTasks)
	if err != nil {
		return res, err
	}
	if res.PushedCount > 0 {
		// Pushed events are busy time now.
		events, err = m.calendar.GetEventsInRange(ctx, windowStart, windowEnd, excludedCalendarIDs)
		if err != nil {
			return res, fmt.Errorf("failed to refetch calendar events: %w", err)
		}
	}
	res.EventsCount = len(events)

	gaps := scheduler.FindGaps(windowStart, windowEnd, scheduler.BusySlots(events))
	res.GapsCount = len(gaps)

	res.ScheduledCount, err = m.autoSchedule(ctx, windowStart, gaps)
	if err != nil {
		return res, err
	}

	m.logger.Info("sync finished",
		slog.Int("events", res.EventsCount),
		slog.Int("gaps", res.GapsCount),
		slog.Int("scheduled", res.ScheduledCount),
		slog.Int("imported", res.ImportedCount),
		slog.Int("pushed", res.PushedCount))
	return res, nil
}

func (m *Manager) pull(ctx context.Context, events []model.CalendarEvent) (int, error) {
	imported := 0
	for _, ev := range events {
		task, err := m.findMatchingTask(ctx, ev)
		if err != nil {
			return imported, err
		}

		if task == nil {
			if err := m.importEvent(ctx, ev); err != nil {
				return imported, err
			}
			imported++
			continue
		}
		if task.IsDeleted {
			// Removed locally on purpose; do not bring it back.
			continue
		}
		if !needsUpdate(*task, ev) {
			continue
		}

		updated := mirrorEvent(*task, ev)
		if err := m.store.UpdateTask(ctx, updated); err != nil {
			return imported, fmt.Errorf("failed to update task %s from event %s: %w", updated.ID, ev.ID, err)
		}
		m.syncReminder(updated)
		m.logger.Debug("task updated from calendar", slog.String("task", updated.ID), slog.String("event", ev.ID))
	}
	return imported, nil
}

// findMatchingTask tries the stored event id (deleted tasks included),
// then title on the event's day, then title among undated tasks.
func (m *Manager) findMatchingTask(ctx context.Context, ev model.CalendarEvent) (*model.Task, error) {
	task, err := m.store.GetTaskByCalendarEventID(ctx, ev.ID, true)
	if err == nil || !errors.Is(err, model.ErrNotFound) {
		return task, wrapMatchErr(err, ev)
	}

	dayStart := util.StartOfDay(ev.Start, m.loc)
	task, err = m.store.FindTaskByTitleAndDate(ctx, ev.Title, dayStart, util.EndOfDay(dayStart, m.loc))
	if err == nil || !errors.Is(err, model.ErrNotFound) {
		return task, wrapMatchErr(err, ev)
	}

	task, err = m.store.FindUnscheduledTaskByTitle(ctx, ev.Title)
	if err == nil || !errors.Is(err, model.ErrNotFound) {
		return task, wrapMatchErr(err, ev)
	}
	return nil, nil
}

func wrapMatchErr(err error, ev model.CalendarEvent) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("failed to match event %s: %w", ev.ID, err)
}

func eventReminder(ev model.CalendarEvent) *time.Time {
	if ev.AllDay {
		return nil
	}
	return model.TimePtr(ev.Start)
}

func needsUpdate(task model.Task, ev model.CalendarEvent) bool {
	return task.CalendarEventID != ev.ID ||
		!task.ScheduledDate.Equal(ev.Start) ||
		!model.SameTime(task.ReminderTime, eventReminder(ev)) ||
		task.IsRecurring != ev.Recurring
}

func mirrorEvent(task model.Task, ev model.CalendarEvent) model.Task {
	task.CalendarEventID = ev.ID
	task.ScheduledDate = ev.Start
	task.ReminderTime = eventReminder(ev)
	task.IsRecurring = ev.Recurring
	return task
}

func (m *Manager) importEvent(ctx context.Context, ev model.CalendarEvent) error {
	task := mirrorEvent(model.Task{
		ID:        m.newID(),
		Content:   ev.Title,
		CreatedAt: m.now(),
		Priority:  model.PriorityMedium,
	}, ev)
	if err := m.store.InsertTasks(ctx, []model.Task{task}); err != nil {
		return fmt.Errorf("failed to import event %s: %w", ev.ID, err)
	}
	m.syncReminder(task)
	m.logger.Debug("task imported from calendar", slog.String("task", task.ID), slog.String("event", ev.ID))
	return nil
}

func (m *Manager) syncReminder(task model.Task) {
	if task.ReminderTime != nil {
		m.reminders.ScheduleReminder(task.ID, task.Content, *task.ReminderTime, task.Priority.String())
		return
	}
	m.reminders.CancelReminder(task.ID)
}

func (m *Manager) push(ctx context.Context, windowStart, windowEnd time.Time, allTasks []model.Task) (int, error) {
	var linked []model.Task
	for _, candidate := range allTasks {
		if !isPushCandidate(candidate, windowStart, windowEnd) {
			continue
		}
		// The pull step may have linked or changed it since allTasks was read.
		task, err := m.store.GetTask(ctx, candidate.ID)
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to reload task %s: %w", candidate.ID, err)
		}
		if !isPushCandidate(*task, windowStart, windowEnd) {
			continue
		}

		created, err := m.calendar.AddToCalendar(ctx, model.NewEvent{
			EventDetails: model.EventDetails{
				Title:       task.Content,
				Description: pushDescription,
				Start:       task.ScheduledDate,
				End:         task.ScheduledDate.Add(m.auto.TaskDuration()),
				AllDay:      task.IsAllDay(),
				Priority:    task.Priority,
			},
			CalendarID: m.calendarID,
			TaskID:     task.ID,
		})
		if errors.Is(err, model.ErrCalendarUnavailable) {
			m.logger.Warn("push skipped", slog.String("task", task.ID), slog.Any("err", err))
			continue
		}
		if err != nil {
			return 0, fmt.Errorf("failed to push task %s: %w", task.ID, err)
		}
		task.CalendarEventID = created.ID
		linked = append(linked, *task)
	}

	if len(linked) == 0 {
		return 0, nil
	}
	if err := m.store.UpdateTasks(ctx, linked); err != nil {
		return 0, fmt.Errorf("failed to link pushed tasks: %w", err)
	}
	return len(linked), nil
}

func isPushCandidate(t model.Task, windowStart, windowEnd time.Time) bool {
	return !t.IsCompleted && !t.IsDeleted && !t.IsSynced() && t.IsScheduled() &&
		!t.ScheduledDate.Before(windowStart) && !t.ScheduledDate.After(windowEnd)
}

func (m *Manager) autoSchedule(ctx context.Context, windowStart time.Time, gaps []scheduler.TimeSlot) (int, error) {
	unscheduled, err := m.store.GetUnscheduledTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load unscheduled tasks: %w", err)
	}
	if len(unscheduled) == 0 {
		return 0, nil
	}

	placed := m.auto.ScheduleTasks(unscheduled, gaps, util.StartOfDay(windowStart, m.loc))
	if len(placed) == 0 {
		return 0, nil
	}

	for i, task := range placed {
		start := *task.ReminderTime
		created, err := m.calendar.AddToCalendar(ctx, model.NewEvent{
			EventDetails: model.EventDetails{
				Title:       task.Content,
				Description: autoSchedDescription,
				Start:       start,
				End:         start.Add(m.auto.TaskDuration()),
				Priority:    task.Priority,
			},
			CalendarID: m.calendarID,
			TaskID:     task.ID,
		})
		switch {
		case errors.Is(err, model.ErrCalendarUnavailable):
			m.logger.Warn("auto-scheduled task not pushed", slog.String("task", task.ID), slog.Any("err", err))
		case err != nil:
			return 0, fmt.Errorf("failed to push auto-scheduled task %s: %w", task.ID, err)
		default:
			placed[i].CalendarEventID = created.ID
		}
	}

	if err := m.store.UpdateTasks(ctx, placed); err != nil {
		return 0, fmt.Errorf("failed to save auto-scheduled tasks: %w", err)
	}
	for _, task := range placed {
		m.syncReminder(task)
	}
	return len(placed), nil
}
