package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lox.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	if cfg.SlogLevel() != slog.LevelWarn {
		t.Errorf("expected warn, got %v", cfg.SlogLevel())
	}
	if cfg.REPL.Prompt != "lox> " {
		t.Errorf("unexpected prompt %q", cfg.REPL.Prompt)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	path := writeConfig(t, `
repl:
  prompt: "> "
color: never
log_level: debug
stats: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.REPL.Prompt != "> " || cfg.Color != ColorNever || !cfg.Stats {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("expected debug, got %v", cfg.SlogLevel())
	}
	if cfg.REPL.HistoryFile != "~/.lox_history" {
		t.Errorf("unset keys should keep defaults, got %q", cfg.REPL.HistoryFile)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadUnknownKey(t *testing.T) {
	_, err := Load(writeConfig(t, "colour: never\n"))
	if err == nil {
		t.Fatal("expected an error for an unknown key")
	}
	if !strings.Contains(err.Error(), "colour") {
		t.Errorf("error should name the key, got: %v", err)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	t.Setenv(EnvLogLevel, "")
	_, err := Load(writeConfig(t, "color: sometimes\nlog_level: loud\n"))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	msg := err.Error()
	for _, want := range []string{"color must be one of", "log_level must be one of"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "config: open") {
		t.Errorf("expected an open error, got %v", err)
	}
}

func TestLoadWithoutHomeFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvLogLevel, "")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Color != ColorAuto {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFromHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(EnvLogLevel, "")
	if err := os.WriteFile(filepath.Join(home, DefaultFile), []byte("stats: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Stats {
		t.Error("expected stats from ~/.lox.yaml")
	}
}

func TestEnvOverridesLevel(t *testing.T) {
	t.Setenv(EnvLogLevel, "error")
	cfg, err := Load(writeConfig(t, "log_level: debug\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.SlogLevel() != slog.LevelError {
		t.Errorf("expected error level from %s, got %v", EnvLogLevel, cfg.SlogLevel())
	}
}

func TestHistoryPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	if got, want := cfg.HistoryPath(), filepath.Join(home, ".lox_history"); got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	cfg.REPL.HistoryFile = "/tmp/hist"
	if cfg.HistoryPath() != "/tmp/hist" {
		t.Errorf("absolute paths are kept, got %s", cfg.HistoryPath())
	}

	cfg.REPL.HistoryFile = ""
	if cfg.HistoryPath() != "" {
		t.Error("empty history file disables history")
	}
}
