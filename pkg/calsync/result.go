package calsync

import "fmt"

// Result counts what a sync pass did.
type Result struct {
	EventsCount    int
	GapsCount      int
	ScheduledCount int
	ImportedCount  int
	PushedCount    int
}

// Report is a Result together with the window it covered.
type Report struct {
	Result
	Window Window
}

// Message is the one-line summary shown after a sync.
func (r Report) Message() string {
	msg := fmt.Sprintf("Events: %d, Gaps: %d. Scheduled: %d. Imported: %d, Pushed: %d.",
		r.EventsCount, r.GapsCount, r.ScheduledCount, r.ImportedCount, r.PushedCount)
	if r.Window.IsRollover {
		msg += " (Too late for today, scheduled for tomorrow)"
	}
	return msg
}
