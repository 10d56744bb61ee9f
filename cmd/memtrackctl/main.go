// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Command memtrackctl is a CLI harness for the memtrack validation
// interposer, grounded on fxnlabs-function-node/cmd/cli's
// urfave/cli.App style and cmd/fxn/tui.go's go-figure banner.
package main

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kjhaus/memtrack/config"
	"github.com/kjhaus/memtrack/diag"
	"github.com/kjhaus/memtrack/internal/logger"
)

func main() {
	var (
		cfg config.Config
		log *zap.Logger
		snk *diag.Sink
	)

	app := &cli.App{
		Name:  "memtrackctl",
		Usage: "drive the memtrack memory-reference tracker",
		Before: func(c *cli.Context) error {
			figure.NewFigure("memtrack", "", true).Print()
			fmt.Println()

			var err error
			if path := c.String("config"); path != "" {
				cfg, err = config.Load(path)
				if err != nil {
					if !os.IsNotExist(err) {
						return err
					}
					cfg = config.Default()
				}
			} else {
				cfg = config.Default()
			}

			log, err = logger.New(cfg.LogFilename)
			if err != nil {
				return err
			}
			sev, err := cfg.Severity()
			if err != nil {
				return err
			}
			snk = diag.New(log, sev, cfg.Action())
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Value:   "",
				Usage:   "load configuration from `FILE`",
				EnvVars: []string{"MEMTRACK_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			scenarioCommand(&snk),
			serveCommand(&snk),
		},
	}

	if err := app.Run(os.Args); err != nil {
		if log != nil {
			log.Fatal("memtrackctl failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
