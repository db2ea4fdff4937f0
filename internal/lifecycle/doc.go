// Package lifecycle connects host lifecycle events to the sidecar
// supervisor: the setup event launches the worker and the exit events tear
// it down.
package lifecycle
