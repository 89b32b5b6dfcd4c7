package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskday/pkg/fake"
	"github.com/harrisonrobin/taskday/pkg/model"
)

type managerFixture struct {
	store     *fake.Store
	calendar  *fake.Calendar
	reminders *fake.Reminders
	manager   *ScheduleManager
}

func newManagerFixture(tasks ...model.Task) *managerFixture {
	f := &managerFixture{
		store:     fake.NewStore(tasks...),
		calendar:  fake.NewCalendar(),
		reminders: fake.NewReminders(),
	}
	f.manager = NewScheduleManager(f.store, f.calendar, f.reminders, time.UTC, nil)
	return f
}

func TestUpdateTaskSchedule_Timed(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture()
	created, err := f.calendar.AddToCalendar(ctx, model.NewEvent{EventDetails: model.EventDetails{Title: "Dentist"}})
	require.NoError(t, err)
	task := model.Task{ID: "t1", Content: "Dentist", CalendarEventID: created.ID, Priority: model.PriorityHigh}
	require.NoError(t, f.store.InsertTasks(ctx, []model.Task{task}))

	when := time.Date(2026, 10, 20, 14, 30, 0, 0, time.UTC)
	updated, err := f.manager.UpdateTaskSchedule(ctx, task, when, &when)
	require.NoError(t, err)

	assert.True(t, updated.ScheduledDate.Equal(when))
	require.NotNil(t, updated.ReminderTime)
	assert.True(t, updated.ReminderTime.Equal(when))

	rem, ok := f.reminders.Get("t1")
	require.True(t, ok)
	assert.True(t, rem.At.Equal(when))
	assert.Equal(t, "HIGH", rem.Priority)

	d := f.calendar.Updated[created.ID]
	assert.False(t, d.AllDay)
	assert.Equal(t, model.PriorityHigh, d.Priority)
	assert.Equal(t, time.Hour, d.End.Sub(d.Start))
}

func TestUpdateTaskSchedule_AllDay(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture()
	created, err := f.calendar.AddToCalendar(ctx, model.NewEvent{EventDetails: model.EventDetails{Title: "Trip"}})
	require.NoError(t, err)
	old := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	task := model.Task{ID: "t1", Content: "Trip", CalendarEventID: created.ID, ScheduledDate: old, ReminderTime: &old}
	require.NoError(t, f.store.InsertTasks(ctx, []model.Task{task}))
	f.reminders.ScheduleReminder("t1", "Trip", old, "MEDIUM")

	day := time.Date(2026, 10, 21, 17, 45, 0, 0, time.UTC)
	updated, err := f.manager.UpdateTaskSchedule(ctx, task, day, nil)
	require.NoError(t, err)

	assert.True(t, updated.ScheduledDate.Equal(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)))
	assert.Nil(t, updated.ReminderTime)
	_, ok := f.reminders.Get("t1")
	assert.False(t, ok)

	d := f.calendar.Updated[created.ID]
	assert.True(t, d.AllDay)
	assert.Equal(t, 24*time.Hour, d.End.Sub(d.Start))

	stored, _ := f.store.Get("t1")
	assert.Nil(t, stored.ReminderTime)
}

func TestUpdateTaskSchedule_UnlinkedSkipsCalendar(t *testing.T) {
	ctx := context.Background()
	task := model.Task{ID: "t1", Content: "Read"}
	f := newManagerFixture(task)

	when := time.Date(2026, 10, 20, 8, 0, 0, 0, time.UTC)
	_, err := f.manager.UpdateTaskSchedule(ctx, task, when, &when)
	require.NoError(t, err)
	assert.Empty(t, f.calendar.Updated)
}

func TestUpdateTaskDate_KeepsTimeOfDay(t *testing.T) {
	ctx := context.Background()
	old := time.Date(2026, 10, 14, 16, 20, 33, 0, time.UTC)
	task := model.Task{ID: "t1", Content: "Gym", ScheduledDate: old, ReminderTime: &old}
	f := newManagerFixture(task)

	updated, err := f.manager.UpdateTaskDate(ctx, task, time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	want := time.Date(2026, 11, 2, 16, 20, 0, 0, time.UTC)
	require.NotNil(t, updated.ReminderTime)
	assert.True(t, updated.ReminderTime.Equal(want))
	assert.True(t, updated.ScheduledDate.Equal(want))
}

func TestUpdateTaskDate_AllDayStaysAllDay(t *testing.T) {
	ctx := context.Background()
	task := model.Task{ID: "t1", Content: "Laundry", ScheduledDate: time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)}
	f := newManagerFixture(task)

	updated, err := f.manager.UpdateTaskDate(ctx, task, time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, updated.ReminderTime)
	assert.True(t, updated.ScheduledDate.Equal(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)))
}

func TestAddToCalendar_LinksTask(t *testing.T) {
	ctx := context.Background()
	task := model.Task{ID: "t1", Content: "Call mom"}
	f := newManagerFixture(task)
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	f.manager.SetClock(func() time.Time { return now })

	created, err := f.manager.AddToCalendar(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", created.Account)

	stored, _ := f.store.Get("t1")
	assert.Equal(t, created.ID, stored.CalendarEventID)
	require.Len(t, f.calendar.Created, 1)
	ev := f.calendar.Created[0]
	assert.True(t, ev.AllDay)
	assert.True(t, ev.Start.Equal(now))
	assert.Equal(t, "t1", ev.TaskID)
}

func TestAddToCalendar_Unavailable(t *testing.T) {
	ctx := context.Background()
	task := model.Task{ID: "t1", Content: "Call mom"}
	f := newManagerFixture(task)
	f.calendar.AddErr = model.ErrCalendarUnavailable

	_, err := f.manager.AddToCalendar(ctx, task)
	assert.ErrorIs(t, err, model.ErrCalendarUnavailable)
	stored, _ := f.store.Get("t1")
	assert.Empty(t, stored.CalendarEventID)
}

func TestOpenCalendarEvent_ClearsStaleLink(t *testing.T) {
	ctx := context.Background()
	f := newManagerFixture()
	created, err := f.calendar.AddToCalendar(ctx, model.NewEvent{EventDetails: model.EventDetails{Title: "Pay rent"}})
	require.NoError(t, err)
	task := model.Task{ID: "t1", Content: "Pay rent", CalendarEventID: created.ID}
	require.NoError(t, f.store.InsertTasks(ctx, []model.Task{task}))

	link, err := f.manager.OpenCalendarEvent(ctx, task)
	require.NoError(t, err)
	assert.Contains(t, link, created.ID)

	f.calendar.Remove(created.ID)
	_, err = f.manager.OpenCalendarEvent(ctx, task)
	assert.True(t, errors.Is(err, model.ErrEventNotFound))

	stored, _ := f.store.Get("t1")
	assert.Empty(t, stored.CalendarEventID)
}
