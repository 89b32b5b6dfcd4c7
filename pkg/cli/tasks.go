package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/tasks"
)

var addCmd = &cobra.Command{
	Use:   "add TEXT...",
	Short: "Add tasks from free text",
	Long: `Splits the text into tasks with Gemini and adds them unscheduled.
Without a Gemini API key every line becomes one task.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runAdd),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Args:  cobra.NoArgs,
	RunE:  withApp(runList),
}

var doneCmd = &cobra.Command{
	Use:   "done ID",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDone),
}

var priorityCmd = &cobra.Command{
	Use:   "priority ID LEVEL",
	Short: "Set a task's priority (low, medium, high)",
	Args:  cobra.ExactArgs(2),
	RunE:  withApp(runPriority),
}

var editCmd = &cobra.Command{
	Use:   "edit ID TEXT...",
	Short: "Change a task's text",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withApp(runEdit),
}

var rmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a task",
	Long: `Deletes a task. Tasks linked to a calendar event are kept as deleted
so the next sync does not bring them back; their event is left in place.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(runRm),
}

var restoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Restore a deleted task",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runRestore),
}

var clearCompletedCmd = &cobra.Command{
	Use:   "clear-completed",
	Short: "Delete all completed tasks",
	Args:  cobra.NoArgs,
	RunE:  withApp(runClearCompleted),
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop deleted tasks older than the retention period",
	Args:  cobra.NoArgs,
	RunE:  withApp(runPurge),
}

var reorderCmd = &cobra.Command{
	Use:   "reorder ID...",
	Short: "Set the custom order of tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runReorder),
}

func init() {
	addCmd.Flags().Bool("group", false, "Group related items into one task")

	listCmd.Flags().String("sort", "date", "Sort by: date, created, custom")
	listCmd.Flags().Bool("asc", false, "Sort ascending")
	listCmd.Flags().Bool("deleted", false, "List deleted tasks instead")

	doneCmd.Flags().Bool("undo", false, "Reopen the task")
	rmCmd.Flags().Bool("hard", false, "Drop the record even if it is linked")
}

func runAdd(cmd *cobra.Command, args []string, a *app) error {
	group, _ := cmd.Flags().GetBool("group")
	split := a.cfg.SplitTasks && !group

	created, err := a.tasks(cmd.Context(), nil).CreateFromText(cmd.Context(), strings.Join(args, " "), split)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d task(s):\n", len(created))
	printTasks(cmd.OutOrStdout(), created, a.loc)
	return nil
}

func runList(cmd *cobra.Command, args []string, a *app) error {
	sortBy, _ := cmd.Flags().GetString("sort")
	asc, _ := cmd.Flags().GetBool("asc")
	deleted, _ := cmd.Flags().GetBool("deleted")

	opt, err := tasks.ParseSortOption(sortBy)
	if err != nil {
		return err
	}
	var list []model.Task
	if deleted {
		list, err = a.store.ListDeletedTasks(cmd.Context())
	} else {
		list, err = a.store.ListTasks(cmd.Context())
	}
	if err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks.")
		return nil
	}
	printTasks(cmd.OutOrStdout(), tasks.Sort(list, opt, asc, a.loc), a.loc)
	return nil
}

func runDone(cmd *cobra.Command, args []string, a *app) error {
	undo, _ := cmd.Flags().GetBool("undo")
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	t, err = a.tasks(cmd.Context(), nil).SetCompleted(cmd.Context(), t.ID, !undo)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runPriority(cmd *cobra.Command, args []string, a *app) error {
	p, err := model.ParsePriority(args[1])
	if err != nil {
		return err
	}
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	t, err = a.tasks(cmd.Context(), nil).SetPriority(cmd.Context(), t.ID, p)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runEdit(cmd *cobra.Command, args []string, a *app) error {
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	t, err = a.tasks(cmd.Context(), nil).UpdateContent(cmd.Context(), t.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runRm(cmd *cobra.Command, args []string, a *app) error {
	hard, _ := cmd.Flags().GetBool("hard")
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	svc := a.tasks(cmd.Context(), nil)
	if hard {
		err = svc.HardDelete(cmd.Context(), t.ID)
	} else {
		err = svc.Delete(cmd.Context(), t.ID)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", shortID(t.ID), t.Content)
	return nil
}

func runRestore(cmd *cobra.Command, args []string, a *app) error {
	t, err := resolveTask(cmd.Context(), a.store, args[0])
	if err != nil {
		return err
	}
	t, err = a.tasks(cmd.Context(), nil).Restore(cmd.Context(), t.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, a.loc))
	return nil
}

func runClearCompleted(cmd *cobra.Command, args []string, a *app) error {
	n, err := a.tasks(cmd.Context(), nil).RemoveCompleted(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %d completed task(s)\n", n)
	return nil
}

func runPurge(cmd *cobra.Command, args []string, a *app) error {
	n, err := a.tasks(cmd.Context(), nil).PurgeExpired(cmd.Context(), time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d deleted task(s)\n", n)
	return nil
}

func runReorder(cmd *cobra.Command, args []string, a *app) error {
	ids := make([]string, 0, len(args))
	for _, arg := range args {
		t, err := resolveTask(cmd.Context(), a.store, arg)
		if err != nil {
			return err
		}
		ids = append(ids, t.ID)
	}
	if err := a.tasks(cmd.Context(), nil).Reorder(cmd.Context(), ids); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d task(s)\n", len(ids))
	return nil
}
