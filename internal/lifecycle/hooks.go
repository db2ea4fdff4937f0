package lifecycle

import (
	"context"
	"log/slog"

	"warden/internal/logging"
	"warden/internal/sidecar"
)

// Hooks binds host lifecycle events to the sidecar supervisor. Setup starts
// the worker, exit events tear it down. Stop runs on both the requested-exit
// event and the final shutdown path so the worker never outlives the host.
type Hooks struct {
	supervisor *sidecar.Supervisor
	logger     *slog.Logger
}

// New constructs lifecycle hooks around the supervisor.
func New(sup *sidecar.Supervisor, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Hooks{
		supervisor: sup,
		logger:     logging.NewComponentLogger(logger, "lifecycle"),
	}
}

// HandleSetup launches the sidecar once host initialization completes. A
// failed launch leaves the host running: the error is logged and swallowed so
// the rest of the application stays usable without its local API.
func (h *Hooks) HandleSetup(ctx context.Context) {
	if h == nil || h.supervisor == nil {
		return
	}
	if err := h.supervisor.Start(ctx); err != nil {
		logging.ErrorWithContext(h.logger, "local api sidecar failed to start", "sidecar_start_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check sidecar runtime and entrypoint paths"),
			logging.String(logging.FieldImpact, "host continues without local api"),
		)
		return
	}
	h.logger.Info("local api sidecar started")
}

// HandleExitRequested tears the sidecar down when the host receives a
// shutdown request.
func (h *Hooks) HandleExitRequested() {
	if h == nil || h.supervisor == nil {
		return
	}
	h.logger.Info("shutdown requested, stopping sidecar")
	h.supervisor.Stop()
}

// HandleExit is the final teardown pass. Stop is idempotent, so running it
// after HandleExitRequested is safe.
func (h *Hooks) HandleExit() {
	if h == nil || h.supervisor == nil {
		return
	}
	h.supervisor.Stop()
}
