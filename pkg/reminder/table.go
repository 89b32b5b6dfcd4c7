// Package reminder keeps the pending task alarms in a JSON file next to the
// config. The remind command sweeps due entries and shows them once.
package reminder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

const fileName = "reminders.json"

type Entry struct {
	TaskID   string    `json:"task_id"`
	Content  string    `json:"content"`
	At       time.Time `json:"at"`
	Priority string    `json:"priority"`
}

// Table holds at most one pending alarm per task. It implements model.Reminders.
type Table struct {
	Entries map[string]Entry `json:"entries"`
	Path    string           `json:"-"`
	mu      sync.RWMutex
	dirty   bool
}

// DefaultPath returns the table location inside the config directory dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, fileName)
}

// NewTable opens the table at path, starting empty if the file does not exist.
func NewTable(path string) (*Table, error) {
	t := &Table{
		Path:    path,
		Entries: make(map[string]Entry),
	}
	if _, err := os.Stat(path); err == nil {
		if err := t.Load(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *Table) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	f, err := os.Open(t.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(t); err != nil {
		return fmt.Errorf("failed to decode reminders %s: %w", t.Path, err)
	}
	if t.Entries == nil {
		t.Entries = make(map[string]Entry)
	}
	return nil
}

// Save writes the table if anything changed since the last load or save.
func (t *Table) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.dirty {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.Path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(t.Path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(t); err != nil {
		return err
	}
	t.dirty = false
	return nil
}

// ScheduleReminder replaces any pending alarm for taskID.
func (t *Table) ScheduleReminder(taskID, content string, at time.Time, priority string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := Entry{TaskID: taskID, Content: content, At: at, Priority: priority}
	if old, ok := t.Entries[taskID]; ok && old.At.Equal(at) && old.Content == content && old.Priority == priority {
		return
	}
	t.Entries[taskID] = next
	t.dirty = true
}

func (t *Table) CancelReminder(taskID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.Entries[taskID]; ok {
		delete(t.Entries, taskID)
		t.dirty = true
	}
}

// Pending returns the pending alarms ordered by time.
func (t *Table) Pending() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e)
	}
	sortEntries(out)
	return out
}

// Sweep removes and returns the alarms due at or before now.
func (t *Table) Sweep(now time.Time) []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	var due []Entry
	for id, e := range t.Entries {
		if !e.At.After(now) {
			due = append(due, e)
			delete(t.Entries, id)
			t.dirty = true
		}
	}
	sortEntries(due)
	return due
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].At.Equal(entries[j].At) {
			return entries[i].At.Before(entries[j].At)
		}
		return entries[i].TaskID < entries[j].TaskID
	})
}
