package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"warden/internal/logs"
)

func writeRunLog(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "warden-20260830-120000.log")
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write run log: %v", err)
	}
	return path
}

func appendRunLog(t *testing.T, path, line string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open run log for append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line + "\n"); err != nil {
		t.Fatalf("append run log: %v", err)
	}
}

func TestTailReturnsLastLines(t *testing.T) {
	path := writeRunLog(t,
		"INFO host started",
		"INFO sidecar started pid=4242",
		"DEBUG sidecar exited",
		"INFO sidecar stopped",
	)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	want := []string{"DEBUG sidecar exited", "INFO sidecar stopped"}
	if len(result.Lines) != len(want) {
		t.Fatalf("expected %d lines, got %#v", len(want), result.Lines)
	}
	for i, line := range want {
		if result.Lines[i] != line {
			t.Fatalf("line %d: got %q, want %q", i, result.Lines[i], line)
		}
	}
	if result.Offset == 0 {
		t.Fatal("expected cursor at end of file")
	}
}

func TestTailResumesFromCursor(t *testing.T) {
	path := writeRunLog(t, "INFO host started")

	first, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(first.Lines) != 1 {
		t.Fatalf("expected one initial line, got %#v", first.Lines)
	}

	appendRunLog(t, path, "INFO sidecar started pid=4242")

	second, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: first.Offset})
	if err != nil {
		t.Fatalf("resumed tail: %v", err)
	}
	if len(second.Lines) != 1 || second.Lines[0] != "INFO sidecar started pid=4242" {
		t.Fatalf("expected only the appended line, got %#v", second.Lines)
	}
	if second.Offset <= first.Offset {
		t.Fatalf("cursor did not advance: %d then %d", first.Offset, second.Offset)
	}
}

func TestTailMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warden.log")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("tail of missing file: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty window with zero cursor, got %+v", result)
	}
}

func TestTailZeroLimitSkipsToEnd(t *testing.T) {
	path := writeRunLog(t, "INFO host started", "INFO sidecar started pid=4242")

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 0})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines for zero limit, got %#v", result.Lines)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat run log: %v", err)
	}
	if result.Offset != info.Size() {
		t.Fatalf("cursor %d is not at end %d", result.Offset, info.Size())
	}
}

func TestTailClampsStaleCursor(t *testing.T) {
	path := writeRunLog(t, "INFO host started")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat run log: %v", err)
	}

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: info.Size() + 1024})
	if err != nil {
		t.Fatalf("tail with stale cursor: %v", err)
	}
	if len(result.Lines) != 0 {
		t.Fatalf("expected no lines past end of file, got %#v", result.Lines)
	}
	if result.Offset != info.Size() {
		t.Fatalf("expected cursor clamped to %d, got %d", info.Size(), result.Offset)
	}
}

func TestTailWaitPicksUpAppendedLines(t *testing.T) {
	path := writeRunLog(t, "INFO host started")

	initial, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	done := make(chan logs.TailResult, 1)
	go func() {
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: initial.Offset, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("waiting tail: %v", err)
		}
		done <- res
	}()

	time.Sleep(100 * time.Millisecond)
	appendRunLog(t, path, "INFO sidecar stopped")

	select {
	case res := <-done:
		if len(res.Lines) != 1 || res.Lines[0] != "INFO sidecar stopped" {
			t.Fatalf("expected the appended line, got %#v", res.Lines)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("waiting tail never returned")
	}
}
