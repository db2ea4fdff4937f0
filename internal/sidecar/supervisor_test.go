package sidecar_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"warden/internal/config"
	"warden/internal/logging"
	"warden/internal/services"
	"warden/internal/sidecar"
)

func newTestConfig(t *testing.T, script string) *config.Config {
	t.Helper()
	root := filepath.Join(t.TempDir(), "app")
	scriptPath := filepath.Join(root, "sidecar", "local-api-server.mjs")
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		t.Fatalf("create sidecar dir: %v", err)
	}
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("write sidecar script: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.SourceRoot = root
	cfg.Paths.LogDir = t.TempDir()
	cfg.Sidecar.Mode = "development"
	cfg.Sidecar.Runtime = "sh"
	return &cfg
}

func waitForProcessExit(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := unix.Kill(pid, 0); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("process %d still alive after stop", pid)
}

func TestStartIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "run-1")
	t.Cleanup(sup.Stop)

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	first := sup.Status()
	if !first.Running || first.PID == 0 {
		t.Fatalf("expected running sidecar after first start, got %+v", first)
	}

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("second Start failed: %v", err)
	}
	second := sup.Status()
	if second.PID != first.PID {
		t.Fatalf("second start spawned a new process: pid %d then %d", first.PID, second.PID)
	}
}

func TestConcurrentStartSpawnsOnce(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "run-concurrent")
	t.Cleanup(sup.Stop)

	const callers = 8
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- sup.Start(context.Background())
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Start failed: %v", err)
		}
	}

	status := sup.Status()
	if !status.Running || status.PID == 0 {
		t.Fatalf("expected one running sidecar, got %+v", status)
	}
	pid := status.PID

	sup.Stop()
	waitForProcessExit(t, pid)

	// No second child may survive the one tracked handle.
	if after := sup.Status(); after.Running {
		t.Fatalf("supervisor still reports a child after stop: %+v", after)
	}
}

func TestConcurrentStartStop(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "run-churn")
	t.Cleanup(sup.Stop)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_ = sup.Start(context.Background())
			}
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				sup.Stop()
			}
		}()
	}
	wg.Wait()

	sup.Stop()
	if status := sup.Status(); status.Running {
		waitForProcessExit(t, status.PID)
	}
}

func TestStartMissingEntrypoint(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	if err := os.Remove(filepath.Join(cfg.Paths.SourceRoot, "sidecar", "local-api-server.mjs")); err != nil {
		t.Fatalf("remove entrypoint: %v", err)
	}
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "")

	err := sup.Start(context.Background())
	if err == nil {
		t.Fatal("expected error for missing entrypoint")
	}
	if !errors.Is(err, services.ErrMissingEntrypoint) {
		t.Fatalf("expected ErrMissingEntrypoint, got %v", err)
	}
	if sup.Status().Running {
		t.Fatal("expected no tracked process after failed start")
	}
}

func TestStartSpawnFailure(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	cfg.Sidecar.Runtime = "definitely-not-a-real-runtime"
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "")

	err := sup.Start(context.Background())
	if err == nil {
		t.Fatal("expected spawn error")
	}
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn, got %v", err)
	}
	if sup.Status().Running {
		t.Fatal("expected no tracked process after spawn failure")
	}
}

func TestStartStopCycle(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "")
	t.Cleanup(sup.Stop)

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	firstPID := sup.Status().PID

	sup.Stop()
	if sup.Status().Running {
		t.Fatal("expected empty handle slot after stop")
	}
	waitForProcessExit(t, firstPID)

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	secondPID := sup.Status().PID
	if secondPID == 0 || secondPID == firstPID {
		t.Fatalf("expected a fresh process after restart, got pid %d (was %d)", secondPID, firstPID)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "")

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	pid := sup.Status().PID

	sup.Stop()
	sup.Stop()
	if sup.Status().Running {
		t.Fatal("expected no tracked process after double stop")
	}
	waitForProcessExit(t, pid)
}

func TestStopWithoutStateIsNoOp(t *testing.T) {
	var sup *sidecar.Supervisor
	sup.Stop()

	err := sup.Start(context.Background())
	if !errors.Is(err, services.ErrLock) {
		t.Fatalf("expected ErrLock from uninitialized supervisor start, got %v", err)
	}
}

func TestSpawnEnvironmentContract(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "env.txt")
	script := "#!/bin/sh\n" +
		`printf '%s|%s|%s|%s' "$LOCAL_API_PORT" "$LOCAL_API_MODE" "$LOCAL_API_RESOURCE_DIR" "$LOCAL_API_RUN_ID" > ` + outPath + "\n" +
		"exec sleep 60\n"
	cfg := newTestConfig(t, script)
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "run-abc")
	t.Cleanup(sup.Stop)

	if err := sup.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	var data []byte
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		var err error
		data, err = os.ReadFile(outPath)
		if err == nil && len(data) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	fields := strings.Split(string(data), "|")
	if len(fields) != 4 {
		t.Fatalf("expected 4 env fields, got %q", data)
	}
	if fields[0] != "46123" {
		t.Fatalf("unexpected LOCAL_API_PORT: %q", fields[0])
	}
	if fields[1] != "warden-sidecar" {
		t.Fatalf("unexpected LOCAL_API_MODE: %q", fields[1])
	}
	if want := filepath.Dir(cfg.Paths.SourceRoot); fields[2] != want {
		t.Fatalf("unexpected LOCAL_API_RESOURCE_DIR: got %q want %q", fields[2], want)
	}
	if fields[3] != "run-abc" {
		t.Fatalf("unexpected LOCAL_API_RUN_ID: %q", fields[3])
	}
}

func TestStartHonorsCanceledContext(t *testing.T) {
	cfg := newTestConfig(t, "#!/bin/sh\nexec sleep 60\n")
	sup := sidecar.NewSupervisor(cfg, logging.NewNop(), "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := sup.Start(ctx)
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn for canceled context, got %v", err)
	}
	if sup.Status().Running {
		t.Fatal("expected no spawn under canceled context")
	}
}
