package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/briefing"
	"github.com/harrisonrobin/taskday/pkg/calsync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync tasks with Google Calendar and plan the day",
	Long: `Imports calendar events as tasks, pushes scheduled tasks to the calendar,
then places unscheduled tasks into the free gaps of the day by priority.
After the deadline hour the rest of today is skipped and tomorrow is planned.`,
	Args: cobra.NoArgs,
	RunE: withApp(runSync),
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Show overdue, upcoming and unscheduled tasks",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBrief),
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Show reminders that are due and clear them",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRemind),
}

func init() {
	remindCmd.Flags().Bool("pending", false, "List pending reminders without clearing any")
}

func runSync(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	now := time.Now()

	if _, err := a.tasks(ctx, nil).PurgeExpired(ctx, now); err != nil {
		a.logger.Warn("failed to purge deleted tasks", slog.Any("err", err))
	}

	cal, err := a.calendar(ctx)
	if err != nil {
		return err
	}
	mgr := calsync.NewManager(cal, a.store, a.reminders,
		calsync.WithCalendarID(cal.CalendarID()),
		calsync.WithLocation(a.loc),
		calsync.WithLogger(a.logger))

	report, err := mgr.Run(ctx, calsync.RunRequest{
		Now:                 now,
		DeadlineHour:        a.cfg.DeadlineHour,
		ExcludedCalendarIDs: a.cfg.ExcludedCalendars,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.Message())
	return nil
}

func runBrief(cmd *cobra.Command, args []string, a *app) error {
	b, err := briefing.Load(cmd.Context(), a.store, time.Now(), a.loc)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if b.Empty() {
		fmt.Fprintln(w, "Nothing to do.")
		return nil
	}
	printSection(w, "Overdue", b.Overdue, a.loc)
	printSection(w, "Next hour", b.NextHour, a.loc)
	printSection(w, "Later today", b.RestOfDay, a.loc)
	printSection(w, "Unscheduled", b.Unscheduled, a.loc)
	return nil
}

func runRemind(cmd *cobra.Command, args []string, a *app) error {
	pending, _ := cmd.Flags().GetBool("pending")
	w := cmd.OutOrStdout()

	entries := a.reminders.Pending()
	if !pending {
		entries = a.reminders.Sweep(time.Now())
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reminders.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-6s %s\n", e.At.In(a.loc).Format("2006-01-02 15:04"), e.Priority, e.Content)
	}
	return nil
}
