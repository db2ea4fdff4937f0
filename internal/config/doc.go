// Package config loads, normalizes, and validates warden configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// WARDEN_SOURCE_ROOT. The Config type centralizes every knob the daemon and
// CLI need: sidecar deployment mode, runtime, entrypoint, port, and log
// routing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical modes, and clear validation errors.
package config
