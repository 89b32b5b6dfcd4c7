package tasks

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

type SortOption int

const (
	// SortByDate orders by scheduled day, timed tasks first within a day.
	SortByDate SortOption = iota
	// SortByCreation orders by creation time.
	SortByCreation
	// SortCustom orders by the user's OrderIndex.
	SortCustom
)

func (o SortOption) String() string {
	switch o {
	case SortByCreation:
		return "created"
	case SortCustom:
		return "custom"
	default:
		return "date"
	}
}

func ParseSortOption(s string) (SortOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date":
		return SortByDate, nil
	case "created", "creation":
		return SortByCreation, nil
	case "custom", "order":
		return SortCustom, nil
	}
	return 0, fmt.Errorf("unknown sort option %q (want date, created or custom)", s)
}

// Sort returns a sorted copy of tasks. Open tasks always come before
// completed ones except in custom order.
func Sort(tasks []model.Task, opt SortOption, ascending bool, loc *time.Location) []model.Task {
	out := append([]model.Task(nil), tasks...)
	if opt == SortCustom {
		sort.SliceStable(out, func(i, j int) bool {
			if ascending {
				return out[i].OrderIndex < out[j].OrderIndex
			}
			return out[i].OrderIndex > out[j].OrderIndex
		})
		return out
	}

	less := func(a, b model.Task) bool { return byCreation(a, b, ascending) }
	if opt == SortByDate {
		less = func(a, b model.Task) bool { return byDate(a, b, ascending, loc) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.IsCompleted != b.IsCompleted {
			return !a.IsCompleted
		}
		return less(a, b)
	})
	return out
}

func byCreation(a, b model.Task, ascending bool) bool {
	if ascending {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// dayKey treats undated tasks as the far future.
func dayKey(t model.Task, loc *time.Location) int64 {
	if !t.IsScheduled() {
		return 1<<63 - 1
	}
	return util.StartOfDay(t.ScheduledDate, loc).Unix()
}

func byDate(a, b model.Task, ascending bool, loc *time.Location) bool {
	da, db := dayKey(a, loc), dayKey(b, loc)
	if da != db {
		if ascending {
			return da < db
		}
		return da > db
	}
	ra, rb := a.ReminderTime, b.ReminderTime
	switch {
	case ra != nil && rb == nil:
		return true
	case ra == nil && rb != nil:
		return false
	case ra != nil && rb != nil && !ra.Equal(*rb):
		if ascending {
			return ra.Before(*rb)
		}
		return ra.After(*rb)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
