// Package store persists tasks in SQLite through GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/harrisonrobin/taskday/pkg/model"
)

// Store implements model.TaskStore on a GORM connection.
type Store struct {
	db  *gorm.DB
	loc *time.Location
}

// Open opens (creating if needed) the SQLite database at path and migrates
// the schema. Use ":memory:" for a throwaway database.
func Open(path string, loc *time.Location) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database handle: %w", err)
	}
	// SQLite allows one writer; an in-memory database also lives on a single connection.
	sqlDB.SetMaxOpenConns(1)

	return New(db, loc)
}

// New wraps an existing connection and migrates the tasks table.
func New(db *gorm.DB, loc *time.Location) (*Store, error) {
	if loc == nil {
		loc = time.Local
	}
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &Store{db: db, loc: loc}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// ordered sorts in insertion order, which is what first-match lookups rely on.
func (s *Store) ordered(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&taskRecord{}).Order("rowid")
}

func (s *Store) find(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) ([]model.Task, error) {
	var recs []taskRecord
	if err := scope(s.ordered(ctx)).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", what, err)
	}
	return toTasks(recs, s.loc), nil
}

func (s *Store) first(ctx context.Context, what string, scope func(*gorm.DB) *gorm.DB) (*model.Task, error) {
	var rec taskRecord
	if err := scope(s.ordered(ctx)).Take(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	t := rec.toTask(s.loc)
	return &t, nil
}

func active(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ? AND is_completed = ?", false, false)
}

func scheduledBetween(start, end time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("scheduled_ms <> 0 AND scheduled_ms BETWEEN ? AND ?", start.UnixMilli(), end.UnixMilli())
	}
}

func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.first(ctx, "task "+id, func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ?", id)
	})
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	return s.find(ctx, "tasks", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", false)
	})
}

func (s *Store) ListDeletedTasks(ctx context.Context) ([]model.Task, error) {
	return s.find(ctx, "deleted tasks", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ?", true)
	})
}

func (s *Store) GetUnscheduledTasks(ctx context.Context) ([]model.Task, error) {
	return s.find(ctx, "unscheduled tasks", func(db *gorm.DB) *gorm.DB {
		return active(db).Where("scheduled_ms = 0")
	})
}

func (s *Store) GetOverdueTasks(ctx context.Context, now time.Time) ([]model.Task, error) {
	return s.find(ctx, "overdue tasks", func(db *gorm.DB) *gorm.DB {
		return active(db).Where("scheduled_ms <> 0 AND scheduled_ms < ?", now.UnixMilli())
	})
}

// GetTasksInRange returns active tasks scheduled within [start, end].
func (s *Store) GetTasksInRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	return s.find(ctx, "tasks in range", func(db *gorm.DB) *gorm.DB {
		return scheduledBetween(start, end)(active(db))
	})
}

func (s *Store) FindTaskByTitleAndDate(ctx context.Context, title string, start, end time.Time) (*model.Task, error) {
	return s.first(ctx, "task by title", func(db *gorm.DB) *gorm.DB {
		db = db.Where("is_deleted = ? AND content = ?", false, title)
		return scheduledBetween(start, end)(db)
	})
}

func (s *Store) FindUnscheduledTaskByTitle(ctx context.Context, title string) (*model.Task, error) {
	return s.first(ctx, "unscheduled task by title", func(db *gorm.DB) *gorm.DB {
		return db.Where("is_deleted = ? AND content = ? AND scheduled_ms = 0", false, title)
	})
}

func (s *Store) GetTaskByCalendarEventID(ctx context.Context, eventID string, includeDeleted bool) (*model.Task, error) {
	if eventID == "" {
		return nil, model.ErrNotFound
	}
	return s.first(ctx, "task by event", func(db *gorm.DB) *gorm.DB {
		db = db.Where("calendar_event_id = ?", eventID)
		if !includeDeleted {
			db = db.Where("is_deleted = ?", false)
		}
		return db
	})
}

// InsertTasks inserts tasks, replacing rows that already use the same id.
func (s *Store) InsertTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	recs := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		recs = append(recs, toRecord(t))
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&recs).Error
	if err != nil {
		return fmt.Errorf("failed to insert tasks: %w", err)
	}
	return nil
}

func updateOne(db *gorm.DB, t model.Task) error {
	rec := toRecord(t)
	result := db.Model(&taskRecord{}).Where("id = ?", t.ID).Select("*").Updates(&rec)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task %s: %w", t.ID, err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update task %s: %w", t.ID, model.ErrNotFound)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, task model.Task) error {
	return updateOne(s.db.WithContext(ctx), task)
}

// UpdateTasks writes every task or none of them.
func (s *Store) UpdateTasks(ctx context.Context, tasks []model.Task) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tasks {
			if err := updateOne(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteTask(ctx context.Context, task model.Task) error {
	if err := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", task.ID).Error; err != nil {
		return fmt.Errorf("failed to delete task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteSoftDeletedOlderThan removes soft-deleted tasks whose scheduled date,
// or removal time for undated tasks, is before cutoff.
func (s *Store) DeleteSoftDeletedOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	ms := cutoff.UnixMilli()
	result := s.db.WithContext(ctx).
		Where("is_deleted = ?", true).
		Where("(scheduled_ms <> 0 AND scheduled_ms < ?) OR (scheduled_ms = 0 AND removed_ms < ?)", ms, ms).
		Delete(&taskRecord{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to purge deleted tasks: %w", err)
	}
	return result.RowsAffected, nil
}
