package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskday/pkg/fake"
	"github.com/harrisonrobin/taskday/pkg/model"
)

func TestResolveTask(t *testing.T) {
	ctx := context.Background()
	st := fake.NewStore(
		model.Task{ID: "1a2b3c4d-aaaa", Content: "first"},
		model.Task{ID: "1a2b9999-bbbb", Content: "second"},
		model.Task{ID: "7f00dead-cccc", Content: "gone", IsDeleted: true},
	)

	got, err := resolveTask(ctx, st, "1a2b3")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)

	got, err = resolveTask(ctx, st, "1a2b9999-bbbb")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)

	got, err = resolveTask(ctx, st, "7f00")
	require.NoError(t, err, "deleted tasks resolve too")
	assert.True(t, got.IsDeleted)

	_, err = resolveTask(ctx, st, "1a2b")
	assert.ErrorContains(t, err, "ambiguous")

	_, err = resolveTask(ctx, st, "ffff")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = resolveTask(ctx, st, " ")
	assert.Error(t, err)
}

func TestImportFormat(t *testing.T) {
	tests := []struct {
		flag string
		args []string
		want string
	}{
		{"", []string{"todo.org"}, "org"},
		{"", []string{"TODO.ORG"}, "org"},
		{"", []string{"tasks.json"}, "taskwarrior"},
		{"", nil, "taskwarrior"},
		{"org", []string{"notes.txt"}, "org"},
	}
	for _, tt := range tests {
		got, err := importFormat(tt.flag, tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%q %v", tt.flag, tt.args)
	}

	_, err := importFormat("csv", nil)
	assert.Error(t, err)
}

func runCLI(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.ExecuteContext(context.Background()), out.String())
	return out.String()
}

// idOf returns the short id of the first listed task whose line contains content.
func idOf(t *testing.T, listing, content string) string {
	t.Helper()
	for _, line := range strings.Split(listing, "\n") {
		if strings.Contains(line, content) {
			fields := strings.Fields(line)
			require.GreaterOrEqual(t, len(fields), 3)
			return fields[2]
		}
	}
	t.Fatalf("no task %q in:\n%s", content, listing)
	return ""
}

func TestCommands_LocalLifecycle(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("GEMINI_API_KEY", "")

	out := runCLI(t, "add", "Buy milk")
	assert.Contains(t, out, "Added 1 task(s)")

	org := filepath.Join(home, "todo.org")
	require.NoError(t, os.WriteFile(org, []byte("* TODO [#A] Pay rent\n  SCHEDULED: <2026-10-20 Tue>\n"), 0600))
	out = runCLI(t, "import", org)
	assert.Contains(t, out, "Imported 1 of 1 task(s)")
	out = runCLI(t, "import", org)
	assert.Contains(t, out, "Imported 0 of 1 task(s)")

	listing := runCLI(t, "list", "--sort", "created")
	assert.Contains(t, listing, "Buy milk")
	assert.Contains(t, listing, "HIGH   2026-10-20")

	milk := idOf(t, listing, "Buy milk")
	out = runCLI(t, "priority", milk, "low")
	assert.Contains(t, out, "LOW")
	out = runCLI(t, "done", milk)
	assert.Contains(t, out, "[x]")

	out = runCLI(t, "clear-completed")
	assert.Contains(t, out, "Removed 1 completed task(s)")

	listing = runCLI(t, "list")
	assert.NotContains(t, listing, "Buy milk")
	assert.Contains(t, listing, "Pay rent")

	_, err := os.Stat(filepath.Join(home, ".config", "taskday", "tasks.db"))
	assert.NoError(t, err)
}
