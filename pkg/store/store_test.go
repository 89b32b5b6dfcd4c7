package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskday/pkg/model"
)

var (
	ctx   = context.Background()
	today = time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
)

func setupTestStore(t *testing.T, tasks ...model.Task) *Store {
	t.Helper()
	s, err := Open(":memory:", time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.InsertTasks(ctx, tasks))
	return s
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func TestStore_RoundTrip(t *testing.T) {
	at := today.Add(9*time.Hour + 30*time.Minute)
	in := model.Task{
		ID:              "a",
		Content:         "Write report",
		CreatedAt:       today.Add(-time.Hour),
		ScheduledDate:   at,
		CalendarEventID: "cal/evt",
		ReminderTime:    model.TimePtr(at),
		Priority:        model.PriorityHigh,
		OrderIndex:      4,
		IsRecurring:     true,
	}
	s := setupTestStore(t, in)

	got, err := s.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, in, *got)

	_, err = s.GetTask(ctx, "missing")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_UnscheduledRoundTrip(t *testing.T) {
	s := setupTestStore(t, model.Task{ID: "a", Content: "Buy milk", Priority: model.PriorityMedium})

	got, err := s.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got.IsScheduled())
	assert.Nil(t, got.ReminderTime)
	assert.True(t, got.CreatedAt.IsZero())
}

func TestStore_Queries(t *testing.T) {
	s := setupTestStore(t,
		model.Task{ID: "floating", Content: "Buy milk"},
		model.Task{ID: "today", Content: "Dentist", ScheduledDate: today.Add(10 * time.Hour)},
		model.Task{ID: "yesterday", Content: "Report", ScheduledDate: today.Add(-14 * time.Hour)},
		model.Task{ID: "done", Content: "Old", ScheduledDate: today.Add(-48 * time.Hour), IsCompleted: true},
		model.Task{ID: "gone", Content: "Dentist", IsDeleted: true, CalendarEventID: "e1"},
	)

	all, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"floating", "today", "yesterday", "done"}, ids(all))

	deleted, err := s.ListDeletedTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gone"}, ids(deleted))

	unscheduled, err := s.GetUnscheduledTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"floating"}, ids(unscheduled))

	overdue, err := s.GetOverdueTasks(ctx, today.Add(8*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"yesterday"}, ids(overdue))

	inRange, err := s.GetTasksInRange(ctx, today, today.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"today"}, ids(inRange), "range end is inclusive")
}

func TestStore_MatchLookups(t *testing.T) {
	s := setupTestStore(t,
		model.Task{ID: "gone", Content: "Dentist", ScheduledDate: today.Add(10 * time.Hour), IsDeleted: true, CalendarEventID: "e1"},
		model.Task{ID: "dated", Content: "Dentist", ScheduledDate: today.Add(11 * time.Hour)},
		model.Task{ID: "floating", Content: "Dentist"},
	)
	end := today.Add(24*time.Hour - time.Millisecond)

	byEvent, err := s.GetTaskByCalendarEventID(ctx, "e1", true)
	require.NoError(t, err)
	assert.Equal(t, "gone", byEvent.ID)

	_, err = s.GetTaskByCalendarEventID(ctx, "e1", false)
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = s.GetTaskByCalendarEventID(ctx, "", true)
	assert.ErrorIs(t, err, model.ErrNotFound)

	byDay, err := s.FindTaskByTitleAndDate(ctx, "Dentist", today, end)
	require.NoError(t, err)
	assert.Equal(t, "dated", byDay.ID)

	_, err = s.FindTaskByTitleAndDate(ctx, "dentist", today, end)
	assert.ErrorIs(t, err, model.ErrNotFound, "titles match exactly")

	_, err = s.FindTaskByTitleAndDate(ctx, "Dentist", today.AddDate(0, 0, 1), end.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, model.ErrNotFound)

	floating, err := s.FindUnscheduledTaskByTitle(ctx, "Dentist")
	require.NoError(t, err)
	assert.Equal(t, "floating", floating.ID)
}

func TestStore_InsertReplacesExisting(t *testing.T) {
	s := setupTestStore(t, model.Task{ID: "a", Content: "draft"})

	require.NoError(t, s.InsertTasks(ctx, []model.Task{{ID: "a", Content: "final", Priority: model.PriorityLow}}))

	got, err := s.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "final", got.Content)
	assert.Equal(t, model.PriorityLow, got.Priority)
}

func TestStore_UpdateWritesZeroValues(t *testing.T) {
	at := today.Add(9 * time.Hour)
	s := setupTestStore(t, model.Task{ID: "a", Content: "x", ScheduledDate: at, ReminderTime: model.TimePtr(at), CalendarEventID: "e1", IsCompleted: true})

	require.NoError(t, s.UpdateTask(ctx, model.Task{ID: "a", Content: "x"}))

	got, err := s.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.False(t, got.IsScheduled())
	assert.Nil(t, got.ReminderTime)
	assert.Empty(t, got.CalendarEventID)
	assert.False(t, got.IsCompleted)

	err = s.UpdateTask(ctx, model.Task{ID: "missing"})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_UpdateTasksIsAtomic(t *testing.T) {
	s := setupTestStore(t, model.Task{ID: "a", Content: "one"}, model.Task{ID: "b", Content: "two"})

	err := s.UpdateTasks(ctx, []model.Task{
		{ID: "a", Content: "changed"},
		{ID: "missing", Content: "nope"},
	})
	require.ErrorIs(t, err, model.ErrNotFound)

	got, err := s.GetTask(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "one", got.Content)

	require.NoError(t, s.UpdateTasks(ctx, []model.Task{{ID: "a", Content: "1"}, {ID: "b", Content: "2"}}))
	all, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", all[0].Content)
	assert.Equal(t, "2", all[1].Content)
}

func TestStore_DeleteTask(t *testing.T) {
	s := setupTestStore(t, model.Task{ID: "a", Content: "x"})

	require.NoError(t, s.DeleteTask(ctx, model.Task{ID: "a"}))

	_, err := s.GetTask(ctx, "a")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestStore_PurgeRetention(t *testing.T) {
	now := today.Add(12 * time.Hour)
	s := setupTestStore(t,
		model.Task{ID: "day29", Content: "x", IsDeleted: true, ScheduledDate: now.AddDate(0, 0, -29)},
		model.Task{ID: "day31", Content: "x", IsDeleted: true, ScheduledDate: now.AddDate(0, 0, -31)},
		model.Task{ID: "undated-old", Content: "x", IsDeleted: true, RemovedAt: now.AddDate(0, 0, -40)},
		model.Task{ID: "undated-new", Content: "x", IsDeleted: true, RemovedAt: now.AddDate(0, 0, -2)},
		model.Task{ID: "live-old", Content: "x", ScheduledDate: now.AddDate(0, 0, -90)},
	)

	n, err := s.DeleteSoftDeletedOlderThan(ctx, now.AddDate(0, 0, -30))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	deleted, err := s.ListDeletedTasks(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"day29", "undated-new"}, ids(deleted))

	live, err := s.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"live-old"}, ids(live))
}
