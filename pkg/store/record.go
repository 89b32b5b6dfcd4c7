package store

import (
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// taskRecord is the row layout of the tasks table. Instants are stored as
// unix milliseconds; a zero scheduled value means the task has no date.
type taskRecord struct {
	ID              string `gorm:"primaryKey;size:36"`
	Content         string `gorm:"not null"`
	IsCompleted     bool   `gorm:"not null"`
	IsDeleted       bool   `gorm:"not null;index"`
	CreatedMillis   int64  `gorm:"column:created_ms;not null"`
	ScheduledMillis int64  `gorm:"column:scheduled_ms;not null;index"`
	CalendarEventID string `gorm:"column:calendar_event_id;index"`
	ReminderMillis  *int64 `gorm:"column:reminder_ms"`
	Priority        int    `gorm:"not null"`
	OrderIndex      int    `gorm:"not null"`
	IsRecurring     bool   `gorm:"not null"`
	RemovedMillis   int64  `gorm:"column:removed_ms;not null"`
}

func (taskRecord) TableName() string {
	return "tasks"
}

func toMillis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64, loc *time.Location) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).In(loc)
}

func toRecord(t model.Task) taskRecord {
	rec := taskRecord{
		ID:              t.ID,
		Content:         t.Content,
		IsCompleted:     t.IsCompleted,
		IsDeleted:       t.IsDeleted,
		CreatedMillis:   toMillis(t.CreatedAt),
		ScheduledMillis: toMillis(t.ScheduledDate),
		CalendarEventID: t.CalendarEventID,
		Priority:        int(t.Priority),
		OrderIndex:      t.OrderIndex,
		IsRecurring:     t.IsRecurring,
		RemovedMillis:   toMillis(t.RemovedAt),
	}
	if t.ReminderTime != nil {
		ms := t.ReminderTime.UnixMilli()
		rec.ReminderMillis = &ms
	}
	return rec
}

func (r taskRecord) toTask(loc *time.Location) model.Task {
	t := model.Task{
		ID:              r.ID,
		Content:         r.Content,
		IsCompleted:     r.IsCompleted,
		IsDeleted:       r.IsDeleted,
		CreatedAt:       fromMillis(r.CreatedMillis, loc),
		ScheduledDate:   fromMillis(r.ScheduledMillis, loc),
		CalendarEventID: r.CalendarEventID,
		Priority:        model.Priority(r.Priority),
		OrderIndex:      r.OrderIndex,
		IsRecurring:     r.IsRecurring,
		RemovedAt:       fromMillis(r.RemovedMillis, loc),
	}
	if r.ReminderMillis != nil {
		t.ReminderTime = model.TimePtr(time.UnixMilli(*r.ReminderMillis).In(loc))
	}
	return t
}

func toTasks(recs []taskRecord, loc *time.Location) []model.Task {
	out := make([]model.Task, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toTask(loc))
	}
	return out
}
