// Package fake provides in-memory collaborators for tests.
package fake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// Store is an in-memory model.TaskStore.
type Store struct {
	mu    sync.Mutex
	tasks map[string]model.Task
	seq   map[string]int

	// UpdateErr, when set, is returned by UpdateTask and UpdateTasks.
	UpdateErr error
	Updates   int
}

func NewStore(tasks ...model.Task) *Store {
	s := &Store{tasks: make(map[string]model.Task), seq: make(map[string]int)}
	for _, t := range tasks {
		s.put(t)
	}
	return s
}

func (s *Store) put(t model.Task) {
	if _, ok := s.seq[t.ID]; !ok {
		s.seq[t.ID] = len(s.seq)
	}
	s.tasks[t.ID] = t
}

// All returns every stored task including deleted ones, in insertion order.
func (s *Store) All() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(model.Task) bool { return true })
}

// Get returns a stored task by id.
func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

func (s *Store) filter(keep func(model.Task) bool) []model.Task {
	var out []model.Task
	for _, t := range s.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return s.seq[out[i].ID] < s.seq[out[j].ID] })
	return out
}

func (s *Store) first(keep func(model.Task) bool) (*model.Task, error) {
	found := s.filter(keep)
	if len(found) == 0 {
		return nil, model.ErrNotFound
	}
	t := found[0]
	return &t, nil
}

func (s *Store) GetTask(_ context.Context, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &t, nil
}

func (s *Store) ListTasks(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t model.Task) bool { return !t.IsDeleted }), nil
}

func (s *Store) ListDeletedTasks(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t model.Task) bool { return t.IsDeleted }), nil
}

func (s *Store) GetUnscheduledTasks(context.Context) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t model.Task) bool { return t.IsActive() && !t.IsScheduled() }), nil
}

func (s *Store) GetOverdueTasks(_ context.Context, now time.Time) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t model.Task) bool {
		return t.IsActive() && t.IsScheduled() && t.ScheduledDate.Before(now)
	}), nil
}

func (s *Store) GetTasksInRange(_ context.Context, start, end time.Time) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter(func(t model.Task) bool {
		return t.IsActive() && t.IsScheduled() && inRange(t.ScheduledDate, start, end)
	}), nil
}

func (s *Store) FindTaskByTitleAndDate(_ context.Context, title string, start, end time.Time) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first(func(t model.Task) bool {
		return !t.IsDeleted && t.Content == title && t.IsScheduled() && inRange(t.ScheduledDate, start, end)
	})
}

func (s *Store) FindUnscheduledTaskByTitle(_ context.Context, title string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first(func(t model.Task) bool {
		return !t.IsDeleted && t.Content == title && !t.IsScheduled()
	})
}

func (s *Store) GetTaskByCalendarEventID(_ context.Context, eventID string, includeDeleted bool) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.first(func(t model.Task) bool {
		return t.CalendarEventID != "" && t.CalendarEventID == eventID && (includeDeleted || !t.IsDeleted)
	})
}

func (s *Store) InsertTasks(_ context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range tasks {
		s.put(t)
	}
	return nil
}

func (s *Store) UpdateTask(_ context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	if _, ok := s.tasks[task.ID]; !ok {
		return model.ErrNotFound
	}
	s.Updates++
	s.tasks[task.ID] = task
	return nil
}

func (s *Store) UpdateTasks(_ context.Context, tasks []model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	for _, t := range tasks {
		if _, ok := s.tasks[t.ID]; !ok {
			return model.ErrNotFound
		}
	}
	for _, t := range tasks {
		s.Updates++
		s.tasks[t.ID] = t
	}
	return nil
}

func (s *Store) DeleteTask(_ context.Context, task model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, task.ID)
	return nil
}

func (s *Store) DeleteSoftDeletedOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, t := range s.tasks {
		if !t.IsDeleted {
			continue
		}
		ref := t.ScheduledDate
		if ref.IsZero() {
			ref = t.RemovedAt
		}
		if ref.Before(cutoff) {
			delete(s.tasks, id)
			n++
		}
	}
	return n, nil
}

func inRange(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
