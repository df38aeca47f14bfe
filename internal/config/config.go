package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds the optional user preferences persisted in
// <TODO_DIR>/des.yaml.
type Settings struct {
	Editor string `yaml:"editor,omitempty"`
	Render bool   `yaml:"render,omitempty"`
}

// Config is the resolved environment for one invocation, built once at
// startup and handed to each component. Tests construct it directly.
type Config struct {
	TodoDir  string
	TodoFile string
	Editor   string
	Settings Settings
}

// Issue represents a doctor finding.
type Issue struct {
	Severity string // "warning" or "error"
	Message  string
}

// Load builds the configuration from the environment and the optional
// settings file. TODO_DIR must be set; TODO_FILE defaults to
// <TODO_DIR>/todo.txt, matching what todo.sh exports.
func Load() (*Config, error) {
	dir := os.Getenv("TODO_DIR")
	if dir == "" {
		return nil, fmt.Errorf("TODO_DIR is not set (export it or run through todo.sh)")
	}
	file := os.Getenv("TODO_FILE")
	if file == "" {
		file = filepath.Join(dir, "todo.txt")
	}

	// A missing settings file is the normal case. Any other read failure
	// is surfaced instead of silently running without settings.
	var settings Settings
	data, err := os.ReadFile(filepath.Join(dir, "des.yaml"))
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("invalid des.yaml: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("cannot read des.yaml: %w", err)
	}

	return &Config{
		TodoDir:  dir,
		TodoFile: file,
		Editor:   resolveEditor(settings),
		Settings: settings,
	}, nil
}

// resolveEditor picks the first non-empty candidate: EDITOR, then
// TODO_DESCRIPTION_EDITOR, then the editor settings key, then vi.
func resolveEditor(settings Settings) string {
	candidates := []string{
		os.Getenv("EDITOR"),
		os.Getenv("TODO_DESCRIPTION_EDITOR"),
		settings.Editor,
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return "vi"
}

// Save writes the settings file to <TODO_DIR>/des.yaml.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	p := c.Path("des.yaml")
	if err := os.WriteFile(p, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// SetValue sets a settings key and persists the settings file.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "editor":
		c.Settings.Editor = value
	case "render":
		switch value {
		case "true":
			c.Settings.Render = true
		case "false":
			c.Settings.Render = false
		default:
			return fmt.Errorf("render must be true or false")
		}
	default:
		return fmt.Errorf("unknown settings key: %s (valid keys: editor, render)", key)
	}
	return c.Save()
}

// Path resolves a path within TODO_DIR.
func (c *Config) Path(parts ...string) string {
	all := append([]string{c.TodoDir}, parts...)
	return filepath.Join(all...)
}

// CheckHealth verifies the on-disk layout. A missing descriptions
// directory is only a warning since the first add creates it.
func CheckHealth(c *Config) []Issue {
	var issues []Issue

	info, err := os.Stat(c.TodoFile)
	if err != nil {
		issues = append(issues, Issue{"error", fmt.Sprintf("missing task file: %s", c.TodoFile)})
	} else if info.IsDir() {
		issues = append(issues, Issue{"error", fmt.Sprintf("expected file but found directory: %s", c.TodoFile)})
	}

	dir := c.Path("descriptions")
	info, err = os.Stat(dir)
	if err != nil {
		issues = append(issues, Issue{"warning", fmt.Sprintf("missing descriptions directory: %s", dir)})
	} else if !info.IsDir() {
		issues = append(issues, Issue{"error", fmt.Sprintf("%s is not a directory", dir)})
	}

	return issues
}

// FixIssues repairs structural issues. Description files themselves are
// never touched.
func FixIssues(c *Config) []string {
	var fixed []string

	dir := c.Path("descriptions")
	if _, err := os.Stat(dir); err != nil {
		if err := os.MkdirAll(dir, 0755); err == nil {
			fixed = append(fixed, fmt.Sprintf("created missing directory: %s", dir))
		}
	}

	return fixed
}
