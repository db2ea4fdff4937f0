package hostrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"warden/internal/config"
	"warden/internal/deps"
	"warden/internal/host"
	"warden/internal/ipc"
	"warden/internal/logging"
	"warden/internal/sidecar"
)

// Options configures host process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
}

// Run starts the warden host runtime loop and blocks until a shutdown
// signal arrives.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runStamp := time.Now().UTC().Format("20060102T150405.000Z")
	runID := uuid.NewString()
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("warden-%s.log", runStamp))

	loggerOpts := logging.Options{
		Level:            opts.LogLevel,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	}
	logger, err := logging.New(loggerOpts)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update warden.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "warden-*.log", Exclude: []string{logPath}},
	)
	pidPath := filepath.Join(cfg.Paths.LogDir, "warden.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	supervisor := sidecar.NewSupervisor(cfg, logger, runID)
	h, err := host.New(cfg, supervisor, logger)
	if err != nil {
		return fmt.Errorf("create host: %w", err)
	}
	defer h.Close()

	socketPath := filepath.Join(cfg.Paths.LogDir, "warden.sock")
	ipcServer, err := ipc.NewServer(signalCtx, socketPath, h, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := h.Start(signalCtx); err != nil {
		logger.Error("host start failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "host_start_failed"),
			logging.String(logging.FieldErrorHint, "check for another warden instance holding the lock"),
			logging.String(logging.FieldImpact, "local api sidecar unavailable"),
		)
		return err
	}

	<-signalCtx.Done()
	logger.Info("warden host shutting down")
	return nil
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "warden.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	for _, status := range deps.CheckBinaries(deps.DefaultRequirements(cfg)) {
		logger.Info("dependency snapshot",
			logging.String(logging.FieldEventType, "dependency_snapshot"),
			logging.String("name", status.Name),
			logging.String("command", status.Command),
			logging.Bool("available", status.Available),
		)
	}
}
