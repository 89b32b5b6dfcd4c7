package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/auth"
	"github.com/harrisonrobin/taskday/pkg/config"
	"github.com/harrisonrobin/taskday/pkg/google"
	"github.com/harrisonrobin/taskday/pkg/llm"
	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/reminder"
	"github.com/harrisonrobin/taskday/pkg/scheduler"
	"github.com/harrisonrobin/taskday/pkg/store"
	"github.com/harrisonrobin/taskday/pkg/tasks"
)

// app holds what every command needs: settings, the task store and the
// reminder table. The calendar is connected on demand.
type app struct {
	cfg       *config.Config
	dir       string
	loc       *time.Location
	logger    *slog.Logger
	store     *store.Store
	reminders *reminder.Table
}

func openApp() (*app, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("could not find configuration directory: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(cfg.DatabasePath(dir), loc)
	if err != nil {
		return nil, err
	}
	rem, err := reminder.NewTable(reminder.DefaultPath(dir))
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to load reminders: %w", err)
	}
	return &app{cfg: cfg, dir: dir, loc: loc, logger: slog.Default(), store: st, reminders: rem}, nil
}

func (a *app) Close() error {
	saveErr := a.reminders.Save()
	if err := a.store.Close(); err != nil {
		return err
	}
	return saveErr
}

// withApp opens the app around a command.
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		runErr := run(cmd, args, a)
		if err := a.Close(); err != nil && runErr == nil {
			return err
		}
		return runErr
	}
}

func (a *app) calendar(ctx context.Context) (*google.CalendarClient, error) {
	httpClient, err := auth.Client(ctx, a.dir, google.Scopes, a.logger)
	if err != nil {
		return nil, err
	}
	srv, err := google.NewService(ctx, httpClient)
	if err != nil {
		return nil, err
	}
	return google.NewClient(ctx, srv, a.cfg.Calendar, a.loc, a.logger)
}

// calendarFor connects the calendar only when t is linked to an event.
func (a *app) calendarFor(ctx context.Context, t model.Task) (model.Calendar, error) {
	if !t.IsSynced() {
		return nil, nil
	}
	cal, err := a.calendar(ctx)
	if err != nil {
		return nil, err
	}
	return cal, nil
}

func (a *app) splitter(ctx context.Context) tasks.Splitter {
	s, err := llm.NewSplitter(ctx, a.cfg.APIKey(), a.cfg.Gemini.Model, a.logger)
	if errors.Is(err, llm.ErrNoAPIKey) {
		return llm.Lines{}
	}
	if err != nil {
		a.logger.Warn("task splitting falls back to one task per line", slog.Any("err", err))
		return llm.Lines{}
	}
	return s
}

// tasks builds the lifecycle service. cal may be nil.
func (a *app) tasks(ctx context.Context, cal model.Calendar) *tasks.Service {
	return tasks.NewService(a.store, cal, a.reminders, a.splitter(ctx),
		tasks.WithRetention(a.cfg.Retention()),
		tasks.WithLogger(a.logger))
}

func (a *app) scheduleManager(cal model.Calendar) *scheduler.ScheduleManager {
	return scheduler.NewScheduleManager(a.store, cal, a.reminders, a.loc, a.logger)
}

// resolveTask finds the task whose id starts with prefix, deleted tasks included.
func resolveTask(ctx context.Context, st model.TaskStore, prefix string) (model.Task, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Task{}, fmt.Errorf("empty task id")
	}
	if t, err := st.GetTask(ctx, prefix); err == nil {
		return *t, nil
	}

	live, err := st.ListTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	deleted, err := st.ListDeletedTasks(ctx)
	if err != nil {
		return model.Task{}, err
	}
	var found []model.Task
	for _, t := range append(live, deleted...) {
		if strings.HasPrefix(t.ID, prefix) {
			found = append(found, t)
		}
	}
	switch len(found) {
	case 0:
		return model.Task{}, fmt.Errorf("task %s: %w", prefix, model.ErrNotFound)
	case 1:
		return found[0], nil
	}
	return model.Task{}, fmt.Errorf("task id %q is ambiguous (%d matches)", prefix, len(found))
}
