// Package config loads, normalizes, and validates toolbox configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the TOOLBOX_API_TOKEN environment
// fallback. The Config type centralizes every knob the daemon and CLI need:
// temp and data directories, upload limits, rendering parameters for text
// pages, external tool names, and sweeper cadence.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
