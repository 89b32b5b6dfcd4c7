// Package cli is the taskday command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	verbose bool
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "taskday",
		Short: "taskday - a task list that plans itself around your calendar",
		Long: `taskday keeps a local task list in step with Google Calendar.

Tasks added from free text are split into items, calendar events become
tasks, scheduled tasks become events, and open tasks are placed into the
free gaps of the day by priority.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(setCalendarCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(priorityCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(clearCompletedCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(reorderCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(briefCmd)
	rootCmd.AddCommand(remindCmd)
}

// Execute runs the root command.
func Execute(version string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.Version = version
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
