package sidecar

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"warden/internal/config"
	"warden/internal/logging"
	"warden/internal/services"
)

// Environment handed to the sidecar process. The names are part of the
// worker's external contract and must not change independently of it.
const (
	envPort        = "LOCAL_API_PORT"
	envResourceDir = "LOCAL_API_RESOURCE_DIR"
	envMode        = "LOCAL_API_MODE"
	envRunID       = "LOCAL_API_RUN_ID"

	// supervisedMarker tells the worker it was launched by the host rather
	// than run standalone.
	supervisedMarker = "warden-sidecar"

	componentName = "supervisor"
)

// Supervisor owns the lifecycle of a single sidecar process. It holds at most
// one live child handle behind a mutex; Start and Stop are each atomic with
// respect to that handle and both are idempotent.
type Supervisor struct {
	cfg      *config.Config
	logger   *slog.Logger
	resolver Resolver
	runID    string

	mu    sync.Mutex
	child *os.Process
}

// Status reports supervisor runtime information.
type Status struct {
	Running      bool
	PID          int
	Entrypoint   string
	ResourceRoot string
	Mode         Mode
	Port         int
}

// NewSupervisor constructs a supervisor for the configured sidecar. The runID
// is forwarded to the sidecar environment so a supervised invocation can be
// traced back to its host run.
func NewSupervisor(cfg *config.Config, logger *slog.Logger, runID string) *Supervisor {
	return &Supervisor{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, componentName),
		resolver: Resolver{Subpath: cfg.Sidecar.Entrypoint},
		runID:    strings.TrimSpace(runID),
	}
}

// Start spawns the sidecar process if it is not already tracked. Repeated
// calls after a successful spawn are no-ops; the at-most-one-child guarantee
// holds under concurrent callers because the check-then-spawn-then-store
// sequence runs inside the handle lock.
//
// Failures are returned to the caller for diagnostics and leave no handle
// stored; the host is expected to keep running without the sidecar.
func (s *Supervisor) Start(ctx context.Context) error {
	if s == nil {
		return services.Wrap(services.ErrLock, componentName, "start", "supervisor state unavailable", nil)
	}

	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrSpawn, componentName, "start", "host context canceled", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.child != nil {
		s.logger.Debug("sidecar already tracked, skipping spawn",
			logging.Int(logging.FieldPID, s.child.Pid))
		return nil
	}

	paths := s.resolvePaths()
	if _, err := os.Stat(paths.Entrypoint); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return services.Wrap(services.ErrMissingEntrypoint, componentName, "start",
				fmt.Sprintf("sidecar entrypoint missing at %s", paths.Entrypoint), nil)
		}
		return services.Wrap(services.ErrMissingEntrypoint, componentName, "start",
			fmt.Sprintf("stat sidecar entrypoint %s", paths.Entrypoint), err)
	}

	cmd := exec.Command(s.cfg.Sidecar.Runtime, paths.Entrypoint)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", envPort, s.cfg.Sidecar.Port),
		envResourceDir+"="+paths.ResourceRoot,
		envMode+"="+supervisedMarker,
	)
	if s.runID != "" {
		cmd.Env = append(cmd.Env, envRunID+"="+s.runID)
	}
	// Sidecar stdout is noise for the host; stderr is inherited so worker
	// diagnostics surface in the host's own log stream.
	cmd.Stdout = nil
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrSpawn, componentName, "start",
			fmt.Sprintf("launch %s %s", s.cfg.Sidecar.Runtime, paths.Entrypoint), err)
	}

	s.child = cmd.Process
	go s.reap(cmd)

	s.logger.Info("sidecar started",
		logging.String(logging.FieldEventType, "sidecar_started"),
		logging.Int(logging.FieldPID, cmd.Process.Pid),
		logging.String("entrypoint", paths.Entrypoint),
		logging.String("resource_root", paths.ResourceRoot),
		logging.Int("port", s.cfg.Sidecar.Port),
		logging.String("mode", string(s.mode())),
	)
	return nil
}

// Stop terminates the tracked sidecar process. It is best-effort and never
// returns an error: a nil supervisor, an empty handle slot, and a kill
// failure (process already gone) all leave the goal state in place. Taking
// the handle out of the slot first makes Stop idempotent and frees a
// subsequent Start to spawn again.
func (s *Supervisor) Stop() {
	if s == nil {
		return
	}

	s.mu.Lock()
	child := s.child
	s.child = nil
	s.mu.Unlock()

	if child == nil {
		return
	}

	if err := child.Kill(); err != nil {
		s.logger.Debug("sidecar kill failed, process likely exited",
			logging.Int(logging.FieldPID, child.Pid),
			logging.Error(err))
		return
	}
	s.logger.Info("sidecar stopped",
		logging.String(logging.FieldEventType, "sidecar_stopped"),
		logging.Int(logging.FieldPID, child.Pid))
}

// Status returns the supervisor's view of the sidecar without touching it.
func (s *Supervisor) Status() Status {
	if s == nil {
		return Status{}
	}
	paths := s.resolvePaths()
	status := Status{
		Entrypoint:   paths.Entrypoint,
		ResourceRoot: paths.ResourceRoot,
		Mode:         s.mode(),
		Port:         s.cfg.Sidecar.Port,
	}
	s.mu.Lock()
	if s.child != nil {
		status.Running = true
		status.PID = s.child.Pid
	}
	s.mu.Unlock()
	return status
}

func (s *Supervisor) mode() Mode {
	if s.cfg.Development() {
		return ModeDevelopment
	}
	return ModePackaged
}

func (s *Supervisor) resolvePaths() ResolvedPaths {
	resourceDir := s.cfg.Paths.ResourceDir
	if strings.TrimSpace(resourceDir) == "" {
		resourceDir = DetectResourceDir()
	}
	return s.resolver.Resolve(s.mode(), s.cfg.Paths.SourceRoot, resourceDir)
}

// reap collects the child's exit status so a finished sidecar does not linger
// as a zombie. It deliberately leaves the handle slot alone: the slot is only
// ever cleared by Stop, which keeps take-then-act the single transition out
// of the running state.
func (s *Supervisor) reap(cmd *exec.Cmd) {
	err := cmd.Wait()
	if err != nil {
		s.logger.Debug("sidecar exited",
			logging.Int(logging.FieldPID, cmd.Process.Pid),
			logging.Error(err))
		return
	}
	s.logger.Debug("sidecar exited cleanly",
		logging.Int(logging.FieldPID, cmd.Process.Pid))
}
