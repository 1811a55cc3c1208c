package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/persway/persway/internal/util"
)

// Config is the top-level configuration document.
type Config struct {
	Autolayout        bool   `yaml:"autolayout"`
	WorkspaceRenaming bool   `yaml:"workspaceRenaming"`
	Hooks             Hooks  `yaml:"hooks"`
	Socket            string `yaml:"socket"`
	LogLevel          string `yaml:"logLevel"`
	DryRun            bool   `yaml:"dryRun"`
}

// Hooks holds the command templates run on focus changes and on exit.
// An empty template disables the hook.
type Hooks struct {
	OnWindowFocus      string `yaml:"onWindowFocus"`
	OnWindowFocusLeave string `yaml:"onWindowFocusLeave"`
	OnExit             string `yaml:"onExit"`
}

// UnmarshalYAML also accepts the command-line spellings of each key.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	type rawConfig struct {
		Autolayout              bool   `yaml:"autolayout"`
		WorkspaceRenaming       *bool  `yaml:"workspaceRenaming"`
		LegacyWorkspaceRenaming *bool  `yaml:"workspace-renaming"`
		Hooks                   Hooks  `yaml:"hooks"`
		Socket                  string `yaml:"socket"`
		LogLevel                string `yaml:"logLevel"`
		DryRun                  bool   `yaml:"dryRun"`
	}

	var raw rawConfig
	if err := value.Decode(&raw); err != nil {
		return err
	}

	c.Autolayout = raw.Autolayout
	c.Hooks = raw.Hooks
	c.Socket = raw.Socket
	c.LogLevel = raw.LogLevel
	c.DryRun = raw.DryRun

	switch {
	case raw.WorkspaceRenaming != nil:
		c.WorkspaceRenaming = *raw.WorkspaceRenaming
	case raw.LegacyWorkspaceRenaming != nil:
		c.WorkspaceRenaming = *raw.LegacyWorkspaceRenaming
	default:
		c.WorkspaceRenaming = false
	}
	return nil
}

// UnmarshalYAML also accepts the command-line spellings of each hook.
func (h *Hooks) UnmarshalYAML(value *yaml.Node) error {
	type rawHooks struct {
		OnWindowFocus            string `yaml:"onWindowFocus"`
		OnWindowFocusLeave       string `yaml:"onWindowFocusLeave"`
		OnExit                   string `yaml:"onExit"`
		LegacyOnWindowFocus      string `yaml:"on-window-focus"`
		LegacyOnWindowFocusLeave string `yaml:"on-window-focus-leave"`
		LegacyOnExit             string `yaml:"on-exit"`
	}
	var raw rawHooks
	if err := value.Decode(&raw); err != nil {
		return err
	}
	h.OnWindowFocus = firstNonEmpty(raw.OnWindowFocus, raw.LegacyOnWindowFocus)
	h.OnWindowFocusLeave = firstNonEmpty(raw.OnWindowFocusLeave, raw.LegacyOnWindowFocusLeave)
	h.OnExit = firstNonEmpty(raw.OnExit, raw.LegacyOnExit)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/persway/config.yaml, falling back to
// ~/.config.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "persway", "config.yaml")
}

// Load reads and validates a configuration file. When required is false a
// missing file yields the defaults. The raw file contents are returned
// alongside for change detection.
func Load(path string, required bool) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil, nil
		}
		return nil, nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, nil, err
	}
	return cfg, data, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	c.Hooks.OnWindowFocus = strings.TrimSpace(c.Hooks.OnWindowFocus)
	c.Hooks.OnWindowFocusLeave = strings.TrimSpace(c.Hooks.OnWindowFocusLeave)
	c.Hooks.OnExit = strings.TrimSpace(c.Hooks.OnExit)
	c.Socket = strings.TrimSpace(c.Socket)
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
}

// Validate performs basic sanity checks.
func (c *Config) Validate() error {
	hooks := []struct {
		name  string
		value string
	}{
		{"hooks.onWindowFocus", c.Hooks.OnWindowFocus},
		{"hooks.onWindowFocusLeave", c.Hooks.OnWindowFocusLeave},
		{"hooks.onExit", c.Hooks.OnExit},
	}
	for _, h := range hooks {
		if h.value != "" && strings.TrimSpace(h.value) == "" {
			return fmt.Errorf("%s cannot be blank", h.name)
		}
	}
	if c.LogLevel != "" {
		if _, ok := util.LookupLogLevel(c.LogLevel); !ok {
			return fmt.Errorf("unknown logLevel %q", c.LogLevel)
		}
	}
	return nil
}

// Finalize validates c after command-line overrides and normalizes it.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.applyDefaults()
	return nil
}
