// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package config loads the tracker's configuration, consulted once at
// initialization per spec.md §6: ReportLevel, DebugAction and
// LogFilename. Grounded on the teacher pack's
// fxnlabs-function-node/internal/config, which loads a single YAML
// document with os.ReadFile + yaml.Unmarshal.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kjhaus/memtrack/diag"
)

// Config is the tracker's top-level configuration document.
type Config struct {
	// ReportLevel is the minimum severity to emit: "error", "warning"
	// or "info".
	ReportLevel string `yaml:"reportLevel"`
	// DebugAction selects which sinks receive diagnostics: any of
	// "logFile", "callback", "breakpoint", "default".
	DebugAction []string `yaml:"debugAction"`
	// LogFilename is the path for the log sink. If empty or
	// unopenable, the sink falls back to standard output.
	LogFilename string `yaml:"logFilename"`
}

// Default returns the configuration used when no file is supplied:
// errors and warnings logged to standard output.
func Default() Config {
	return Config{
		ReportLevel: "warning",
		DebugAction: []string{"logFile"},
	}
}

// Load reads and parses the YAML configuration document at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Severity translates ReportLevel into a diag.Severity.
func (c Config) Severity() (diag.Severity, error) {
	switch c.ReportLevel {
	case "", "warning":
		return diag.Warning, nil
	case "error":
		return diag.Error, nil
	case "info":
		return diag.Info, nil
	default:
		return 0, fmt.Errorf("config: unknown reportLevel %q", c.ReportLevel)
	}
}

// Action translates DebugAction into a diag.Action bitmask.
func (c Config) Action() diag.Action {
	if len(c.DebugAction) == 0 {
		return diag.ActionDefault
	}
	var a diag.Action
	for _, name := range c.DebugAction {
		switch name {
		case "logFile":
			a |= diag.ActionLogFile
		case "callback":
			a |= diag.ActionCallback
		case "breakpoint":
			a |= diag.ActionBreakpoint
		case "default":
			a |= diag.ActionDefault
		}
	}
	return a
}
