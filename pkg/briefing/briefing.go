// Package briefing groups open tasks around the current hour.
package briefing

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

type Briefing struct {
	Overdue     []model.Task
	NextHour    []model.Task
	RestOfDay   []model.Task
	Unscheduled []model.Task
}

// Empty reports whether there is nothing to brief about.
func (b Briefing) Empty() bool {
	return len(b.Overdue)+len(b.NextHour)+len(b.RestOfDay)+len(b.Unscheduled) == 0
}

// Build buckets the active tasks: overdue before now, due within the next
// hour, due later today, and undated.
func Build(now time.Time, tasks []model.Task, loc *time.Location) Briefing {
	hour := now.Add(time.Hour)
	endOfDay := util.EndOfDay(now, loc)

	var b Briefing
	for _, t := range tasks {
		if !t.IsActive() {
			continue
		}
		at := t.ScheduledDate
		switch {
		case !t.IsScheduled():
			b.Unscheduled = append(b.Unscheduled, t)
		case at.Before(now):
			b.Overdue = append(b.Overdue, t)
		case !at.After(hour):
			b.NextHour = append(b.NextHour, t)
		case !at.After(endOfDay):
			b.RestOfDay = append(b.RestOfDay, t)
		}
	}
	byDate(b.Overdue)
	byDate(b.NextHour)
	byDate(b.RestOfDay)
	return b
}

// Load builds the same briefing with range queries against the store.
func Load(ctx context.Context, store model.TaskStore, now time.Time, loc *time.Location) (Briefing, error) {
	var (
		b   Briefing
		err error
	)
	hour := now.Add(time.Hour)
	if b.Overdue, err = store.GetOverdueTasks(ctx, now); err != nil {
		return b, fmt.Errorf("failed to load overdue tasks: %w", err)
	}
	if b.NextHour, err = store.GetTasksInRange(ctx, now, hour); err != nil {
		return b, fmt.Errorf("failed to load upcoming tasks: %w", err)
	}
	if b.RestOfDay, err = store.GetTasksInRange(ctx, hour.Add(time.Millisecond), util.EndOfDay(now, loc)); err != nil {
		return b, fmt.Errorf("failed to load today's tasks: %w", err)
	}
	if b.Unscheduled, err = store.GetUnscheduledTasks(ctx); err != nil {
		return b, fmt.Errorf("failed to load unscheduled tasks: %w", err)
	}
	byDate(b.Overdue)
	byDate(b.NextHour)
	byDate(b.RestOfDay)
	return b, nil
}

func byDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].ScheduledDate.Before(tasks[j].ScheduledDate)
	})
}
