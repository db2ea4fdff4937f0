package host_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"warden/internal/config"
	"warden/internal/host"
	"warden/internal/logging"
	"warden/internal/sidecar"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	root := filepath.Join(t.TempDir(), "app")
	scriptPath := filepath.Join(root, "sidecar", "local-api-server.mjs")
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		t.Fatalf("create sidecar dir: %v", err)
	}
	if err := os.WriteFile(scriptPath, []byte("#!/bin/sh\nexec sleep 60\n"), 0o755); err != nil {
		t.Fatalf("write sidecar script: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.SourceRoot = root
	cfg.Paths.LogDir = t.TempDir()
	cfg.Sidecar.Mode = "development"
	cfg.Sidecar.Runtime = "sh"
	return &cfg
}

func newHost(t *testing.T, cfg *config.Config) *host.Host {
	t.Helper()
	logger := logging.NewNop()
	sup := sidecar.NewSupervisor(cfg, logger, "")
	h, err := host.New(cfg, sup, logger)
	if err != nil {
		t.Fatalf("host.New: %v", err)
	}
	t.Cleanup(func() {
		_ = h.Close()
	})
	return h
}

func TestHostStartStop(t *testing.T) {
	cfg := testConfig(t)
	h := newHost(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	status := h.Status()
	if !status.Running {
		t.Fatal("expected running host")
	}
	if !status.Sidecar.Running {
		t.Fatal("expected running sidecar under host")
	}
	if status.LockFilePath != filepath.Join(cfg.Paths.LogDir, "wardend.lock") {
		t.Fatalf("unexpected lock path %s", status.LockFilePath)
	}

	if err := h.Start(ctx); err == nil {
		t.Fatal("expected error on double start")
	}

	h.Stop()
	status = h.Status()
	if status.Running {
		t.Fatal("expected stopped host")
	}
	if status.Sidecar.Running {
		t.Fatal("expected sidecar stopped with host")
	}
}

func TestHostSingleInstanceLock(t *testing.T) {
	cfg := testConfig(t)
	first := newHost(t, cfg)
	second := newHost(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		t.Fatal("expected lock contention error for second host instance")
	}

	first.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("second host failed to start after lock release: %v", err)
	}
	second.Stop()
}

func TestHostSidecarControls(t *testing.T) {
	cfg := testConfig(t)
	h := newHost(t, cfg)

	if err := h.StartSidecar(context.Background()); err == nil {
		t.Fatal("expected error starting sidecar on stopped host")
	}

	if err := h.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	h.StopSidecar()
	if h.Status().Sidecar.Running {
		t.Fatal("expected sidecar stopped")
	}
	if err := h.StartSidecar(context.Background()); err != nil {
		t.Fatalf("StartSidecar failed: %v", err)
	}
	if !h.Status().Sidecar.Running {
		t.Fatal("expected sidecar restarted")
	}
}
