package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

func formatWhen(t model.Task, loc *time.Location) string {
	if !t.IsScheduled() {
		return "-"
	}
	if t.ReminderTime != nil {
		return t.ReminderTime.In(loc).Format(util.DateLayout + " " + util.ClockLayout)
	}
	return t.ScheduledDate.In(loc).Format(util.DateLayout)
}

// formatTask renders one list line, e.g.
// "[ ] 1a2b3c4d HIGH   2026-10-14 09:00  Call Bob  (calendar)".
func formatTask(t model.Task, loc *time.Location) string {
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	var tags []string
	if t.IsSynced() {
		tags = append(tags, "calendar")
	}
	if t.IsRecurring {
		tags = append(tags, "recurring")
	}
	if t.IsDeleted {
		tags = append(tags, "deleted")
	}
	line := fmt.Sprintf("%s %-8s %-6s %-16s  %s", box, shortID(t.ID), t.Priority, formatWhen(t, loc), t.Content)
	if len(tags) > 0 {
		line += "  (" + strings.Join(tags, ", ") + ")"
	}
	return line
}

func printTasks(w io.Writer, tasks []model.Task, loc *time.Location) {
	for _, t := range tasks {
		fmt.Fprintln(w, formatTask(t, loc))
	}
}

func printSection(w io.Writer, title string, tasks []model.Task, loc *time.Location) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d)\n", title, len(tasks))
	for _, t := range tasks {
		fmt.Fprintln(w, "  "+formatTask(t, loc))
	}
}
