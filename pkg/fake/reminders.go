package fake

import (
	"sync"
	"time"
)

// Reminder is a pending alarm recorded by Reminders.
type Reminder struct {
	Content  string
	At       time.Time
	Priority string
}

// Reminders records the latest pending alarm per task.
type Reminders struct {
	mu      sync.Mutex
	Pending map[string]Reminder
	Cancels int
}

func NewReminders() *Reminders {
	return &Reminders{Pending: make(map[string]Reminder)}
}

func (r *Reminders) ScheduleReminder(taskID, content string, at time.Time, priority string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Pending[taskID] = Reminder{Content: content, At: at, Priority: priority}
}

func (r *Reminders) CancelReminder(taskID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Cancels++
	delete(r.Pending, taskID)
}

// Get returns the pending alarm for a task.
func (r *Reminders) Get(taskID string) (Reminder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem, ok := r.Pending[taskID]
	return rem, ok
}
