package taskwarrior

import (
	"fmt"
	"strings"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

const (
	PENDING   = "pending"
	COMPLETED = "completed"
	WAITING   = "waiting"
	DELETED   = "deleted"
	RECURRING = "recurring"
)

const timeLayout = "20060102T150405Z"

// Time is a Taskwarrior timestamp, always UTC on the wire.
type Time struct {
	time.Time
}

func (ct *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "0" {
		ct.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse Taskwarrior time %q: %w", s, err)
	}
	ct.Time = t
	return nil
}

func (ct Time) MarshalJSON() ([]byte, error) {
	if ct.Time.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + ct.Time.UTC().Format(timeLayout) + `"`), nil
}

func (ct *Time) value() time.Time {
	if ct == nil {
		return time.Time{}
	}
	return ct.Time
}

// Task is one entry of `task export`.
type Task struct {
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	Entry       *Time    `json:"entry,omitempty"`
	Due         *Time    `json:"due,omitempty"`
	Scheduled   *Time    `json:"scheduled,omitempty"`
	End         *Time    `json:"end,omitempty"`
	Project     string   `json:"project,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ToTask converts t into a local task. Deleted and recurring templates are
// skipped. The scheduled date wins over due; a timestamp at local midnight
// becomes an all-day task.
func (t Task) ToTask(loc *time.Location) (model.Task, bool) {
	if t.Status == DELETED || t.Status == RECURRING || strings.TrimSpace(t.Description) == "" {
		return model.Task{}, false
	}
	out := model.Task{
		ID:          t.UUID,
		Content:     strings.TrimSpace(t.Description),
		IsCompleted: t.Status == COMPLETED,
		CreatedAt:   t.Entry.value(),
		Priority:    priority(t.Priority),
	}
	when := t.Scheduled.value()
	if when.IsZero() {
		when = t.Due.value()
	}
	if !when.IsZero() {
		out.ScheduledDate = when.In(loc)
		if !when.Equal(util.StartOfDay(when, loc)) {
			out.ReminderTime = model.TimePtr(out.ScheduledDate)
		}
	}
	return out, true
}

func priority(p string) model.Priority {
	switch p {
	case "H":
		return model.PriorityHigh
	case "L":
		return model.PriorityLow
	}
	return model.PriorityMedium
}
