package main

import (
	"strings"

	"toolbox/internal/daemonrun"
)

// bootstrapOptions resolves the config path and runtime options from the
// command line, falling back to TOOLBOX_CONFIG and TOOLBOX_LOG_LEVEL.
// Supported arguments are "--config <path>" and "--log-level <level>".
func bootstrapOptions(args []string, getenv func(string) string) (string, daemonrun.Options) {
	path := strings.TrimSpace(getenv("TOOLBOX_CONFIG"))
	opts := daemonrun.Options{LogLevel: strings.TrimSpace(getenv("TOOLBOX_LOG_LEVEL"))}

	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(strings.TrimLeft(args[i], "-"), "=")
		if !hasValue && i+1 < len(args) {
			value = args[i+1]
		}
		switch name {
		case "config", "c":
			path = strings.TrimSpace(value)
		case "log-level":
			opts.LogLevel = strings.TrimSpace(value)
		case "dev":
			opts.Development = true
			continue
		default:
			continue
		}
		if !hasValue {
			i++
		}
	}
	return path, opts
}
