package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"warden/internal/config"
	"warden/internal/lifecycle"
	"warden/internal/sidecar"
)

// Host coordinates the sidecar lifecycle and enforces single-instance
// execution of the background process.
type Host struct {
	cfg        *config.Config
	logger     *slog.Logger
	supervisor *sidecar.Supervisor
	hooks      *lifecycle.Hooks
	logPath    string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents host runtime information.
type Status struct {
	Running      bool
	Sidecar      sidecar.Status
	LockFilePath string
	LogFilePath  string
}

// New constructs a host with initialized dependencies.
func New(cfg *config.Config, sup *sidecar.Supervisor, logger *slog.Logger) (*Host, error) {
	if cfg == nil || sup == nil || logger == nil {
		return nil, errors.New("host requires config, supervisor, and logger")
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "wardend.lock")
	return &Host{
		cfg:        cfg,
		logger:     logger,
		supervisor: sup,
		hooks:      lifecycle.New(sup, logger),
		logPath:    filepath.Join(cfg.Paths.LogDir, "warden.log"),
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}, nil
}

// Start acquires the host lock and fires the setup hook. A sidecar that
// fails to launch is logged by the hook and does not fail the host.
func (h *Host) Start(ctx context.Context) error {
	if h.running.Load() {
		return errors.New("host already running")
	}

	ok, err := h.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another warden host instance is already running")
	}

	h.ctx, h.cancel = context.WithCancel(ctx)
	h.hooks.HandleSetup(h.ctx)

	h.running.Store(true)
	h.logger.Info("warden host started", slog.String("lock", h.lockPath))
	return nil
}

// Stop tears down the sidecar and releases the host lock.
func (h *Host) Stop() {
	if !h.running.Load() {
		return
	}

	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.hooks.HandleExitRequested()
	if err := h.lock.Unlock(); err != nil {
		h.logger.Warn("failed to release host lock", slog.Any("error", err))
	}
	h.ctx = nil
	h.running.Store(false)
	h.logger.Info("warden host stopped")
}

// Close releases resources held by the host.
func (h *Host) Close() error {
	h.Stop()
	h.hooks.HandleExit()
	return nil
}

// StartSidecar relaunches the sidecar on a running host.
func (h *Host) StartSidecar(ctx context.Context) error {
	if !h.running.Load() {
		return errors.New("host not running")
	}
	return h.supervisor.Start(ctx)
}

// StopSidecar tears down the sidecar while the host keeps running.
func (h *Host) StopSidecar() {
	h.supervisor.Stop()
}

// Status reports current host state.
func (h *Host) Status() Status {
	return Status{
		Running:      h.running.Load(),
		Sidecar:      h.supervisor.Status(),
		LockFilePath: h.lockPath,
		LogFilePath:  h.logPath,
	}
}

// Config exposes the host configuration to control surfaces.
func (h *Host) Config() *config.Config {
	return h.cfg
}

// LogPath returns the path of the host log pointer file.
func (h *Host) LogPath() string {
	return h.logPath
}
