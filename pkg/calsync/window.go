package calsync

import (
	"time"

	"github.com/harrisonrobin/taskday/pkg/util"
)

const (
	// RolloverStartHour is when the next day's window opens after the deadline.
	RolloverStartHour = 8
	windowEndHour     = 23
	windowEndMinute   = 59
)

// Window is the span a sync pass reconciles and schedules into.
type Window struct {
	Start      time.Time
	End        time.Time
	IsRollover bool
}

// ComputeSyncWindow returns now through the end of today, or tomorrow
// 08:00 through tomorrow 23:59 once now is at or past deadlineHour.
func ComputeSyncWindow(now time.Time, deadlineHour int, loc *time.Location) Window {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	if now.Hour() >= deadlineHour {
		tomorrow := util.StartOfDay(now, loc).AddDate(0, 0, 1)
		return Window{
			Start:      util.AtClock(tomorrow, RolloverStartHour, 0, loc),
			End:        util.AtClock(tomorrow, windowEndHour, windowEndMinute, loc),
			IsRollover: true,
		}
	}
	return Window{
		Start: now,
		End:   util.AtClock(now, windowEndHour, windowEndMinute, loc),
	}
}
