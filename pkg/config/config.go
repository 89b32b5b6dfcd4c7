// Package config loads the taskday settings from ~/.config/taskday/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	xdgAppName = "taskday"
	configFile = "config.yaml"

	DefaultCalendar    = "Tasks"
	DefaultGeminiModel = "gemini-2.5-flash"
)

type Gemini struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type Config struct {
	// Calendar is the name of the calendar tasks are pushed to.
	Calendar          string   `yaml:"calendar"`
	ExcludedCalendars []string `yaml:"excluded_calendars,omitempty"`
	// DeadlineHour is the hour from which sync schedules into tomorrow.
	DeadlineHour  int    `yaml:"deadline_hour"`
	Timezone      string `yaml:"timezone,omitempty"`
	Database      string `yaml:"database,omitempty"`
	RetentionDays int    `yaml:"retention_days"`
	SplitTasks    bool   `yaml:"split_tasks"`
	Gemini        Gemini `yaml:"gemini"`
}

// Default returns the settings used when no config file exists.
func Default() *Config {
	return &Config{
		Calendar:      DefaultCalendar,
		DeadlineHour:  23,
		RetentionDays: 30,
		SplitTasks:    true,
		Gemini: Gemini{
			Model:     DefaultGeminiModel,
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// Dir is the directory holding config, database, token and reminders.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", xdgAppName), nil
}

func GetConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

func Load() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if cfg.Calendar == "" {
		cfg.Calendar = DefaultCalendar
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = DefaultGeminiModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DeadlineHour < 0 || c.DeadlineHour > 24 {
		return fmt.Errorf("deadline_hour must be between 0 and 24, got %d", c.DeadlineHour)
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative, got %d", c.RetentionDays)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, defaulting to the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// DatabasePath returns Database, or tasks.db inside dir when unset.
func (c *Config) DatabasePath(dir string) string {
	if c.Database != "" {
		return c.Database
	}
	return filepath.Join(dir, "tasks.db")
}

// Retention is how long soft-deleted tasks are kept.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// APIKey reads the Gemini key from the configured environment variable.
func (c *Config) APIKey() string {
	name := c.Gemini.APIKeyEnv
	if name == "" {
		name = "GEMINI_API_KEY"
	}
	return os.Getenv(name)
}

func Save(cfg *Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, b, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
