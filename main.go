package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"
	"github.com/urfave/cli/v2"
)

// app carries what the Before hook loads into every command.
type app struct {
	cfg Config
	log *slog.Logger
}

func newApp() *cli.App {
	a := &app{cfg: defaultConfig(), log: slog.Default()}
	return &cli.App{
		Name:  "qtermkit",
		Usage: "parse, render, unroll and simulate OpenQASM 2.0 programs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "qtermkit.yaml",
				Usage:   "YAML config file; missing is fine",
				EnvVars: []string{"QTERMKIT_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log.level (debug, info, warn, error)",
			},
			&cli.StringSliceFlag{
				Name:    "include-path",
				Aliases: []string{"I"},
				Usage:   "directory searched for include files, before the configured ones",
			},
		},
		Before:   a.before,
		Action:   a.tui,
		Commands: a.commands(),
	}
}

func (a *app) before(c *cli.Context) error {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if paths := c.StringSlice("include-path"); len(paths) > 0 {
		cfg.IncludePaths = append(paths, cfg.IncludePaths...)
	}
	logger, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, logger
	a.log.Debug("config loaded", "path", c.String("config"), "precision", cfg.Precision, "max_qubits", cfg.MaxQubits)
	return nil
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "qtermkit:", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
