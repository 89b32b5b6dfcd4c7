package scheduler

import (
	"sort"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
)

const (
	// DefaultTaskDuration is the time reserved for every auto-scheduled task.
	DefaultTaskDuration = 15 * time.Minute
	// MinGapSize is the smallest gap that can host a task.
	MinGapSize = DefaultTaskDuration
)

// AutoScheduler places unscheduled tasks into free gaps, highest priority
// first, each at the start of the earliest gap that still fits.
type AutoScheduler struct {
	duration time.Duration
}

func NewAutoScheduler() *AutoScheduler {
	return &AutoScheduler{duration: DefaultTaskDuration}
}

// TaskDuration is the slot length consumed per placed task.
func (s *AutoScheduler) TaskDuration() time.Duration {
	if s == nil || s.duration <= 0 {
		return DefaultTaskDuration
	}
	return s.duration
}

// ScheduleTasks returns copies of the tasks that could be placed, in
// priority order, with ScheduledDate set to targetDate and ReminderTime
// set to the start of the slot they got. Tasks that do not fit are left
// out. Neither input slice is modified.
func (s *AutoScheduler) ScheduleTasks(tasks []model.Task, gaps []TimeSlot, targetDate time.Time) []model.Task {
	d := s.TaskDuration()
	need := d
	if need < MinGapSize {
		need = MinGapSize
	}

	ordered := append([]model.Task(nil), tasks...)
	sort.SliceStable(ordered, func(i, j int) bool {
		wi, wj := ordered[i].Priority.Weight(), ordered[j].Priority.Weight()
		if wi != wj {
			return wi > wj
		}
		return ordered[i].OrderIndex < ordered[j].OrderIndex
	})

	available := gaps
	var scheduled []model.Task
	for _, task := range ordered {
		idx := firstFit(available, need)
		if idx < 0 {
			continue
		}
		gap := available[idx]
		task.ScheduledDate = targetDate
		task.ReminderTime = model.TimePtr(gap.Start)
		scheduled = append(scheduled, task)
		available = consume(available, idx, d)
	}
	return scheduled
}

func firstFit(gaps []TimeSlot, need time.Duration) int {
	for i, g := range gaps {
		if g.Duration() >= need {
			return i
		}
	}
	return -1
}

// consume returns a new gap list with d taken off the front of gaps[idx].
func consume(gaps []TimeSlot, idx int, d time.Duration) []TimeSlot {
	out := make([]TimeSlot, 0, len(gaps))
	out = append(out, gaps[:idx]...)
	rest := TimeSlot{Start: gaps[idx].Start.Add(d), End: gaps[idx].End}
	if !rest.IsEmpty() {
		out = append(out, rest)
	}
	return append(out, gaps[idx+1:]...)
}
