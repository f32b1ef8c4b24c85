// Package config loads workmux configuration: a global TOML file under the
// user config directory, overlaid by an optional per-project .workmux.yaml.
// State-directory resolution also lives here so every consumer threads the
// same explicit root into the state store.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the merged view of global and project configuration.
type Config struct {
	// Backend forces a multiplexer ("tmux" or "wezterm"); empty means
	// detect from the environment.
	Backend string `toml:"backend" yaml:"backend"`

	// WindowPrefix is prepended to multiplexer window names for worktree
	// windows. Matching dashboards filter on it.
	WindowPrefix string `toml:"window_prefix" yaml:"window_prefix"`

	// PollIntervalMS is the wait command's re-check interval.
	PollIntervalMS int `toml:"poll_interval_ms" yaml:"poll_interval_ms"`

	// WaitTimeoutSecs bounds wait when --timeout is not given.
	WaitTimeoutSecs int `toml:"wait_timeout_secs" yaml:"wait_timeout_secs"`

	// RunTimeoutSecs bounds run when --timeout is not given.
	RunTimeoutSecs int `toml:"run_timeout_secs" yaml:"run_timeout_secs"`

	// CaptureLines is the default scrollback depth for capture.
	CaptureLines int `toml:"capture_lines" yaml:"capture_lines"`

	Dashboard DashboardConfig `toml:"dashboard" yaml:"dashboard"`
}

// DashboardConfig holds dashboard refresh and preview settings.
type DashboardConfig struct {
	RefreshSecs  int `toml:"refresh_secs" yaml:"refresh_secs"`
	PreviewLines int `toml:"preview_lines" yaml:"preview_lines"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		WindowPrefix:    "wm:",
		PollIntervalMS:  500,
		WaitTimeoutSecs: 600,
		RunTimeoutSecs:  3600,
		CaptureLines:    100,
		Dashboard: DashboardConfig{
			RefreshSecs:  2,
			PreviewLines: 40,
		},
	}
}

// GlobalPath returns the global config file location:
// $XDG_CONFIG_HOME/workmux/config.toml or ~/.config/workmux/config.toml.
func GlobalPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil || home == "" {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "workmux", "config.toml")
}

// Load builds the effective config: defaults, then the global TOML file,
// then projectDir/.workmux.yaml when projectDir is non-empty. Missing files
// are fine; malformed ones are errors.
func Load(projectDir string) (*Config, error) {
	cfg := Default()

	if path := GlobalPath(); path != "" {
		if err := mergeTOML(cfg, path); err != nil {
			return nil, err
		}
	}
	if projectDir != "" {
		if err := mergeYAML(cfg, filepath.Join(projectDir, ".workmux.yaml")); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func mergeTOML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func mergeYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read project config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse project config %s: %w", path, err)
	}
	return nil
}

// StateDir resolves the state store root. Precedence: WORKMUX_STATE_DIR
// (test isolation), then $XDG_STATE_HOME/workmux, then
// ~/.local/state/workmux.
func StateDir() (string, error) {
	if dir := os.Getenv("WORKMUX_STATE_DIR"); dir != "" {
		return dir, nil
	}
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, "workmux"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", errors.New("cannot determine state directory: no home directory")
	}
	return filepath.Join(home, ".local", "state", "workmux"), nil
}
