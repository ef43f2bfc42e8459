package main

import (
	"io"
	"log/slog"

	"github.com/tebeka/atexit"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogger installs a text slog handler writing to the rotating log
// file. The terminal belongs to the TUI, so nothing is logged to stderr.
// An empty file name discards log output.
func setupLogger(cfg LogConfig) (*slog.Logger, error) {
	lvl, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var w io.Writer = io.Discard
	if cfg.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: 3,
		}
		atexit.Register(func() { _ = lj.Close() })
		w = lj
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger, nil
}
