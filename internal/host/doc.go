// Package host owns the long-running warden process: it enforces
// single-instance execution with a file lock and drives the sidecar
// lifecycle through setup and exit hooks.
package host
