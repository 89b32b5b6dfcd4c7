// Package tasks implements the task lifecycle: creation from free text,
// completion, editing, deletion with retention, and restore.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// DefaultRetention is how long soft-deleted tasks are kept.
const DefaultRetention = 30 * 24 * time.Hour

// Splitter turns free-form input into task titles.
type Splitter interface {
	ParseTasks(ctx context.Context, text string, split bool) ([]string, error)
}

type Service struct {
	store     model.TaskStore
	calendar  model.Calendar
	reminders model.Reminders
	splitter  Splitter
	retention time.Duration
	now       func() time.Time
	newID     func() string
	logger    *slog.Logger
}

type Option func(*Service)

func WithRetention(d time.Duration) Option {
	return func(s *Service) { s.retention = d }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithIDGenerator(f func() string) Option {
	return func(s *Service) { s.newID = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires the lifecycle operations. cal may be nil when no
// calendar is configured; only Unlink with deleteEvent needs it.
func NewService(store model.TaskStore, cal model.Calendar, rem model.Reminders, splitter Splitter, opts ...Option) *Service {
	s := &Service{
		store:     store,
		calendar:  cal,
		reminders: rem,
		splitter:  splitter,
		retention: DefaultRetention,
		now:       time.Now,
		newID:     uuid.NewString,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateFromText splits text into tasks and stores them at the end of the
// custom order with MEDIUM priority.
func (s *Service) CreateFromText(ctx context.Context, text string, split bool) ([]model.Task, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	titles, err := s.splitter.ParseTasks(ctx, text, split)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tasks: %w", err)
	}
	if len(titles) == 0 {
		return nil, nil
	}

	existing, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	next := 0
	for _, t := range existing {
		if t.OrderIndex >= next {
			next = t.OrderIndex + 1
		}
	}

	now := s.now()
	created := make([]model.Task, 0, len(titles))
	for i, title := range titles {
		created = append(created, model.Task{
			ID:         s.newID(),
			Content:    title,
			CreatedAt:  now,
			Priority:   model.PriorityMedium,
			OrderIndex: next + i,
		})
	}
	if err := s.store.InsertTasks(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save tasks: %w", err)
	}
	s.logger.Info("tasks created", slog.Int("count", len(created)))
	return created, nil
}

// Import stores tasks read from another tool. Tasks whose id is already
// known are skipped, so importing the same file twice adds nothing.
func (s *Service) Import(ctx context.Context, incoming []model.Task) ([]model.Task, error) {
	existing, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	next := 0
	for _, t := range existing {
		if t.OrderIndex >= next {
			next = t.OrderIndex + 1
		}
	}

	now := s.now()
	seen := make(map[string]bool, len(incoming))
	var added []model.Task
	for _, t := range incoming {
		if t.ID == "" {
			t.ID = s.newID()
		} else if seen[t.ID] {
			continue
		} else if _, err := s.store.GetTask(ctx, t.ID); err == nil {
			continue
		} else if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("failed to look up task %s: %w", t.ID, err)
		}
		seen[t.ID] = true

		if t.CreatedAt.IsZero() {
			t.CreatedAt = now
		}
		if t.Priority == 0 {
			t.Priority = model.PriorityMedium
		}
		t.CalendarEventID = ""
		t.IsDeleted = false
		t.OrderIndex = next
		next++
		added = append(added, t)
	}
	if len(added) == 0 {
		return nil, nil
	}
	if err := s.store.InsertTasks(ctx, added); err != nil {
		return nil, fmt.Errorf("failed to save tasks: %w", err)
	}
	for _, t := range added {
		s.rearm(t)
	}
	s.logger.Info("tasks imported", slog.Int("count", len(added)), slog.Int("skipped", len(incoming)-len(added)))
	return added, nil
}

func (s *Service) get(ctx context.Context, id string) (model.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return model.Task{}, fmt.Errorf("task %s: %w", id, err)
	}
	return *t, nil
}

func (s *Service) update(ctx context.Context, t model.Task) (model.Task, error) {
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return t, fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}
	return t, nil
}

// rearm schedules the reminder again if it is still ahead.
func (s *Service) rearm(t model.Task) {
	if t.IsActive() && t.ReminderTime != nil && t.ReminderTime.After(s.now()) {
		s.reminders.ScheduleReminder(t.ID, t.Content, *t.ReminderTime, t.Priority.String())
	}
}

func (s *Service) SetCompleted(ctx context.Context, id string, done bool) (model.Task, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return t, err
	}
	t.IsCompleted = done
	if t, err = s.update(ctx, t); err != nil {
		return t, err
	}
	if done {
		s.reminders.CancelReminder(t.ID)
	} else {
		s.rearm(t)
	}
	return t, nil
}

func (s *Service) SetPriority(ctx context.Context, id string, p model.Priority) (model.Task, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return t, err
	}
	t.Priority = p
	if t, err = s.update(ctx, t); err != nil {
		return t, err
	}
	s.rearm(t)
	return t, nil
}

func (s *Service) UpdateContent(ctx context.Context, id, content string) (model.Task, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Task{}, errors.New("task content must not be empty")
	}
	t, err := s.get(ctx, id)
	if err != nil {
		return t, err
	}
	t.Content = content
	if t, err = s.update(ctx, t); err != nil {
		return t, err
	}
	s.rearm(t)
	return t, nil
}

// remove soft-deletes linked tasks so the next pull does not re-import
// their event, and hard-deletes the rest.
func (s *Service) remove(ctx context.Context, t model.Task) error {
	if t.IsSynced() {
		t.IsDeleted = true
		t.RemovedAt = s.now()
		if _, err := s.update(ctx, t); err != nil {
			return err
		}
	} else if err := s.store.DeleteTask(ctx, t); err != nil {
		return err
	}
	s.reminders.CancelReminder(t.ID)
	return nil
}

// Delete removes a task. Its calendar event, if any, is left alone.
func (s *Service) Delete(ctx context.Context, id string) error {
	t, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, t)
}

// RemoveCompleted deletes every completed task and returns how many.
func (s *Service) RemoveCompleted(ctx context.Context) (int, error) {
	all, err := s.store.ListTasks(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks: %w", err)
	}
	n := 0
	for _, t := range all {
		if !t.IsCompleted {
			continue
		}
		if err := s.remove(ctx, t); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *Service) Restore(ctx context.Context, id string) (model.Task, error) {
	t, err := s.get(ctx, id)
	if err != nil {
		return t, err
	}
	if !t.IsDeleted {
		return t, nil
	}
	t.IsDeleted = false
	t.RemovedAt = time.Time{}
	if t, err = s.update(ctx, t); err != nil {
		return t, err
	}
	s.rearm(t)
	return t, nil
}

// HardDelete drops the task record for good.
func (s *Service) HardDelete(ctx context.Context, id string) error {
	t, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, t); err != nil {
		return err
	}
	s.reminders.CancelReminder(t.ID)
	return nil
}

// Unlink forgets the task's calendar event, deleting the event first when
// deleteEvent is set. An event that is already gone is not an error.
func (s *Service) Unlink(ctx context.Context, id string, deleteEvent bool) (model.Task, error) {
	t, err := s.get(ctx, id)
	if err != nil || !t.IsSynced() {
		return t, err
	}
	if deleteEvent {
		if s.calendar == nil {
			return t, model.ErrCalendarUnavailable
		}
		err := s.calendar.DeleteCalendarEvent(ctx, t.CalendarEventID)
		if err != nil && !errors.Is(err, model.ErrEventNotFound) {
			return t, fmt.Errorf("failed to delete calendar event: %w", err)
		}
	}
	t.CalendarEventID = ""
	return s.update(ctx, t)
}

// Reorder assigns OrderIndex 0..n-1 following ids.
func (s *Service) Reorder(ctx context.Context, ids []string) error {
	ordered := make([]model.Task, 0, len(ids))
	for i, id := range ids {
		t, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		t.OrderIndex = i
		ordered = append(ordered, t)
	}
	if err := s.store.UpdateTasks(ctx, ordered); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// PurgeExpired drops soft-deleted tasks older than the retention period.
func (s *Service) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.store.DeleteSoftDeletedOlderThan(ctx, now.Add(-s.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged deleted tasks", slog.Int64("count", n))
	}
	return n, nil
}
