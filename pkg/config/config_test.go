package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), configFile))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "Tasks", cfg.Calendar)
	assert.Equal(t, 23, cfg.DeadlineHour)
	assert.Equal(t, 30*24*time.Hour, cfg.Retention())
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), configFile)
	require.NoError(t, os.WriteFile(path, []byte("calendar: Work\ndeadline_hour: 21\nexcluded_calendars: [birthdays]\n"), 0600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Work", cfg.Calendar)
	assert.Equal(t, 21, cfg.DeadlineHour)
	assert.Equal(t, []string{"birthdays"}, cfg.ExcludedCalendars)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.True(t, cfg.SplitTasks)
	assert.Equal(t, DefaultGeminiModel, cfg.Gemini.Model)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := map[string]string{
		"deadline":  "deadline_hour: 25\n",
		"retention": "retention_days: -1\n",
		"timezone":  "timezone: Mars/Olympus\n",
		"syntax":    "calendar: [\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), configFile)
			require.NoError(t, os.WriteFile(path, []byte(body), 0600))
			_, err := LoadFrom(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", configFile)
	cfg := Default()
	cfg.Calendar = "Personal"
	cfg.Timezone = "UTC"
	cfg.SplitTasks = false

	require.NoError(t, SaveTo(path, cfg))
	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	loc, err := got.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestDatabasePathAndAPIKey(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/cfg", "tasks.db"), cfg.DatabasePath("/cfg"))
	cfg.Database = "/data/t.db"
	assert.Equal(t, "/data/t.db", cfg.DatabasePath("/cfg"))

	cfg.Gemini.APIKeyEnv = "TASKDAY_TEST_KEY"
	t.Setenv("TASKDAY_TEST_KEY", "k")
	assert.Equal(t, "k", cfg.APIKey())
}
