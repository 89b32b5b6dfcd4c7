package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrisonrobin/taskday/pkg/model"
	"github.com/harrisonrobin/taskday/pkg/orgmode"
	"github.com/harrisonrobin/taskday/pkg/taskwarrior"
)

var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import tasks from an Org file or a Taskwarrior export",
	Long: `Imports TODO headlines from an Org file, or tasks from a Taskwarrior JSON export.
Without FILE the pending tasks are exported from the local Taskwarrior.
Tasks already imported are skipped.`,
	Example: `  taskday import ~/org/todo.org
  task export > tasks.json && taskday import tasks.json
  taskday import --format taskwarrior`,
	Args: cobra.MaximumNArgs(1),
	RunE: withApp(runImport),
}

func init() {
	importCmd.Flags().String("format", "", "Input format: org or taskwarrior (default from the file extension)")
}

func importFormat(flag string, args []string) (string, error) {
	switch f := strings.ToLower(flag); f {
	case "org", "taskwarrior":
		return f, nil
	case "":
	default:
		return "", fmt.Errorf("unknown import format %q", flag)
	}
	if len(args) == 0 {
		return "taskwarrior", nil
	}
	if strings.EqualFold(filepath.Ext(args[0]), ".org") {
		return "org", nil
	}
	return "taskwarrior", nil
}

func runImport(cmd *cobra.Command, args []string, a *app) error {
	flag, _ := cmd.Flags().GetString("format")
	format, err := importFormat(flag, args)
	if err != nil {
		return err
	}

	var incoming []model.Task
	switch {
	case format == "org" && len(args) == 0:
		return fmt.Errorf("importing Org tasks needs a file")
	case format == "org":
		if incoming, err = orgmode.ParseFile(args[0], a.loc); err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	default:
		var exported []taskwarrior.Task
		client := taskwarrior.NewClient()
		if len(args) == 0 {
			exported, err = client.Export(cmd.Context(), []string{"status:pending"})
		} else {
			var f *os.File
			if f, err = os.Open(args[0]); err != nil {
				return err
			}
			exported, err = client.ParseTasks(f)
			f.Close()
		}
		if err != nil {
			return err
		}
		for _, t := range exported {
			if task, ok := t.ToTask(a.loc); ok {
				incoming = append(incoming, task)
			}
		}
	}

	added, err := a.tasks(cmd.Context(), nil).Import(cmd.Context(), incoming)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d task(s)\n", len(added), len(incoming))
	printTasks(cmd.OutOrStdout(), added, a.loc)
	return nil
}
