package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/util"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule ID",
	Short: "Schedule a task on a date, optionally at a time",
	Long: `Schedules a task. Without --time the task becomes an all-day task on the date.
A linked calendar event is moved along with it.`,
	Example: `  taskday schedule 1a2b --date tomorrow --time 14:30
  taskday schedule 1a2b --date 2026-10-20`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runSchedule),
}

var moveCmd = &cobra.Command{
	Use:   "move ID",
	Short: "Move a task to another date, keeping its time of day",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runMove),
}

var linkCmd = &cobra.Command{
	Use:   "link ID",
	Short: "Create a calendar event for a task",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runLink),
}

var openCmd = &cobra.Command{
	Use:   "open ID",
	Short: "Print the calendar link of a task's event",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runOpen),
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink ID",
	Short: "Detach a task from its calendar event",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runUnlink),
}

func init() {
	scheduleCmd.Flags().String("date", "today", "Date: YYYY-MM-DD, today or tomorrow")
	scheduleCmd.Flags().String("time", "", "Time of day (HH:MM)")

	moveCmd.Flags().String("date", "", "Date: YYYY-MM-DD, today or tomorrow")
	_ = moveCmd.MarkFlagRequired("date")

	unlinkCmd.Flags().Bool("delete-event", false, "Also delete the calendar event")
}

func runSchedule(cmd *cobra.Command, args []string, a *app) error {
	dateStr, _ := cmd.Flags().GetString("date")
	clockStr, _ := cmd.Flags().GetString("time")

	date, err := util.ParseDate(dateStr, time.Now(), a.loc)
	if err != nil {
		return err
	}
	var at *time.Time
	if clockStr != "" {
		t, err := util.ParseClock(clockStr, date, a.loc)
		if err != nil {
			return err
		}
		at = &t
	}

	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	cal, err := a.calendarFor(cmd.Context(), t)
	if err != nil {
		return err
	}
	t, err = a.scheduleManager(cal).UpdateTaskSchedule(cmd.Context(), t, date, at)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runMove(cmd *cobra.Command, args []string, a *app) error {
	dateStr, _ := cmd.Flags().GetString("date")
	date, err := util.ParseDate(dateStr, time.Now(), a.loc)
	if err != nil {
		return err
	}

	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	cal, err := a.calendarFor(cmd.Context(), t)
	if err != nil {
		return err
	}
	t, err = a.scheduleManager(cal).UpdateTaskDate(cmd.Context(), t, date)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runLink(cmd *cobra.Command, args []string, a *app) error {
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	if t.IsSynced() {
		return fmt.Errorf("task %s is already linked to a calendar event", shortID(t.ID))
	}
	cal, err := a.calendar(cmd.Context())
	if err != nil {
		return err
	}
	created, err := a.scheduleManager(cal).AddToCalendar(cmd.Context(), t)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to calendar %s\n", t.Content, created.Account)
	return nil
}

func runOpen(cmd *cobra.Command, args []string, a *app) error {
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	if !t.IsSynced() {
		return fmt.Errorf("task %s is not linked to a calendar event", shortID(t.ID))
	}
	cal, err := a.calendar(cmd.Context())
	if err != nil {
		return err
	}
	link, err := a.scheduleManager(cal).OpenCalendarEvent(cmd.Context(), t)
	if errors.Is(err, model.ErrEventNotFound) {
		return fmt.Errorf("the event of task %s was deleted from the calendar; the link has been removed", shortID(t.ID))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link)
	return nil
}

func runUnlink(cmd *cobra.Command, args []string, a *app) error {
	deleteEvent, _ := cmd.Flags().GetBool("delete-event")
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	var cal model.Calendar
	if deleteEvent {
		if cal, err = a.calendarFor(cmd.Context(), t); err != nil {
			return err
		}
	}
	t, err = a.tasks(cmd.Context(), cal).Unlink(cmd.Context(), t.ID, deleteEvent)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}
