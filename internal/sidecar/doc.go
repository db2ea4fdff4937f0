// Package sidecar supervises the local API worker process that runs alongside
// the host application.
//
// It owns the only handle to the spawned worker: a mutex-guarded optional
// process reference with atomic check-then-spawn on start and take-then-kill
// on stop. Path resolution between development and packaged deployments lives
// here too, as a pure Resolver that never fails and defers existence
// enforcement to the spawn path.
//
// Start failures are surfaced for operator diagnostics; Stop is unconditional
// best-effort and must never block or fail application exit.
package sidecar
