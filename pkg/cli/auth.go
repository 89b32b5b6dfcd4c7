package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/auth"
	"github.com/harrisonrobin/taskday/pkg/config"
	"github.com/harrisonrobin/taskday/pkg/google"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with Google Calendar",
	Long: `Runs the OAuth browser flow and stores the token in the config directory.
Place the OAuth client credentials.json from the Google Cloud console there first.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

var setCalendarCmd = &cobra.Command{
	Use:   "set-calendar NAME",
	Short: "Set the calendar tasks are pushed to",
	Args:  cobra.ExactArgs(1),
	RunE:  runSetCalendar,
}

func runAuth(cmd *cobra.Command, args []string) error {
	dir, err := config.Dir()
	if err != nil {
		return fmt.Errorf("could not find configuration directory: %w", err)
	}
	if err := auth.Login(cmd.Context(), dir, google.Scopes, slog.Default()); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Authentication successful! Token saved to %s\n", dir)
	return nil
}

func runSetCalendar(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Calendar = args[0]
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Default calendar set to: %s\n", args[0])
	return nil
}
