// Package config loads the optional YAML configuration used by the lox CLI.
package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvLogLevel overrides the configured log level when set.
const EnvLogLevel = "LOX_LOG"

// DefaultFile is looked up in the home directory when no --config is given.
const DefaultFile = ".lox.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config holds CLI and REPL settings.
type Config struct {
	REPL     REPL   `yaml:"repl"`
	Color    string `yaml:"color"`
	LogLevel string `yaml:"log_level"`
	Stats    bool   `yaml:"stats"`
}

// REPL holds interactive session settings.
type REPL struct {
	Prompt      string `yaml:"prompt"`
	HistoryFile string `yaml:"history_file"`
}

// ValidationError aggregates configuration problems.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("config validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		REPL: REPL{
			Prompt:      "lox> ",
			HistoryFile: "~/.lox_history",
		},
		Color:    ColorAuto,
		LogLevel: "warn",
	}
}

// Load reads path over the defaults. An empty path looks for ~/.lox.yaml
// and falls back to the defaults when it does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg.withEnv(), nil
		}
		path = filepath.Join(home, DefaultFile)
	}

	file, err := os.Open(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg.withEnv(), nil
		}
		return nil, errors.Wrapf(err, "config: open %s", path)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrapf(err, "config: parse %s", path)
	}

	cfg.withEnv()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config: %s", path)
	}
	return cfg, nil
}

func (c *Config) withEnv() *Config {
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		c.LogLevel = lvl
	}
	return c
}

// Validate checks enumerated values.
func (c *Config) Validate() error {
	var errs ValidationError
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs.Issues = append(errs.Issues, "color must be one of auto, always, never; got "+quote(c.Color))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs.Issues = append(errs.Issues, err.Error())
	}
	if c.REPL.Prompt == "" {
		errs.Issues = append(errs.Issues, "repl.prompt must not be empty")
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SlogLevel returns the configured log level. Invalid values fall back to warn.
func (c *Config) SlogLevel() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// HistoryPath returns the REPL history file with a leading ~ expanded.
// An empty result disables history.
func (c *Config) HistoryPath() string {
	p := c.REPL.HistoryFile
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Errorf("log_level must be one of debug, info, warn, error; got %s", quote(s))
	}
	return lvl, nil
}

func quote(s string) string {
	return "'" + s + "'"
}
