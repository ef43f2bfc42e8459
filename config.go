package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"qtermkit/qasm"
	"qtermkit/sim"
)

// Config holds the settings read from the YAML config file.
type Config struct {
	Precision    int       `yaml:"precision"`
	MaxQubits    int       `yaml:"max_qubits"`
	IncludePaths []string  `yaml:"include_paths"`
	Log          LogConfig `yaml:"log"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	File      string `yaml:"file"`
	Level     string `yaml:"level"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

func defaultConfig() Config {
	return Config{
		Precision:    qasm.DefaultPrecision,
		MaxQubits:    sim.DefaultMaxQubits,
		IncludePaths: []string{"."},
		Log: LogConfig{
			File:      "qtermkit.log",
			Level:     "info",
			MaxSizeMB: 10,
		},
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Precision < 0 {
		return fmt.Errorf("precision %d is negative", c.Precision)
	}
	if c.MaxQubits < 1 {
		return fmt.Errorf("max_qubits must be at least 1, got %d", c.MaxQubits)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}
