// Package config loads editor settings from an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

const (
	defaultTabStop        = 8
	maxTabStop            = 32
	defaultMessageTimeout = 5 * time.Second
	defaultEscapeTimeout  = 100 * time.Millisecond
	maxEscapeTimeout      = 25500 * time.Millisecond
)

// Config holds the resolved editor settings.
type Config struct {
	TabStop        int
	MessageTimeout time.Duration
	EscapeTimeout  time.Duration
	LogFile        string
	LogLevel       slog.Level
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TabStop:        defaultTabStop,
		MessageTimeout: defaultMessageTimeout,
		EscapeTimeout:  defaultEscapeTimeout,
		LogLevel:       slog.LevelInfo,
	}
}

type file struct {
	TabStop        *int   `yaml:"tab_stop"`
	MessageTimeout string `yaml:"message_timeout"`
	EscapeTimeout  string `yaml:"escape_timeout"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
}

// Load reads the config file at path. An empty path searches the default
// locations, and finding no file there yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = findDefault()
		if path == "" {
			return cfg, nil
		}
	}
	path, err := expandHome(path)
	if err != nil {
		return cfg, err
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.parse(buf); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) parse(buf []byte) error {
	var f file
	if err := yaml.UnmarshalWithOptions(buf, &f, yaml.Strict()); err != nil {
		return err
	}
	if f.TabStop != nil {
		if *f.TabStop < 1 || *f.TabStop > maxTabStop {
			return fmt.Errorf("tab_stop must be between 1 and %d, got %d", maxTabStop, *f.TabStop)
		}
		c.TabStop = *f.TabStop
	}
	if f.MessageTimeout != "" {
		d, err := parseDuration("message_timeout", f.MessageTimeout, 0)
		if err != nil {
			return err
		}
		c.MessageTimeout = d
	}
	if f.EscapeTimeout != "" {
		d, err := parseDuration("escape_timeout", f.EscapeTimeout, maxEscapeTimeout)
		if err != nil {
			return err
		}
		c.EscapeTimeout = d
	}
	if f.LogFile != "" {
		c.LogFile = f.LogFile
	}
	if f.LogLevel != "" {
		level, err := ParseLevel(f.LogLevel)
		if err != nil {
			return err
		}
		c.LogLevel = level
	}
	return nil
}

func parseDuration(key, s string, limit time.Duration) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, s)
	}
	if limit > 0 && d > limit {
		return 0, fmt.Errorf("%s must be at most %s, got %s", key, limit, s)
	}
	return d, nil
}

// ParseLevel parses a log level name.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
}

func findDefault() string {
	var dirs []string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, xdg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config"))
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, "termedit", "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, fs.ErrNotExist) {
			return path
		}
	}
	return ""
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, path[1:]), nil
}
