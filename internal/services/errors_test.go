package services_test

import (
	"errors"
	"os"
	"testing"

	"warden/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	err := services.Wrap(services.ErrMissingEntrypoint, "sidecar", "start", "entrypoint not found", nil)
	if !errors.Is(err, services.ErrMissingEntrypoint) {
		t.Fatalf("expected ErrMissingEntrypoint marker, got %v", err)
	}
	want := "missing entrypoint: sidecar: start: entrypoint not found"
	if err.Error() != want {
		t.Fatalf("unexpected message: got %q want %q", err.Error(), want)
	}
}

func TestWrapPreservesUnderlyingError(t *testing.T) {
	underlying := os.ErrPermission
	err := services.Wrap(services.ErrSpawn, "sidecar", "start", "launch sidecar runtime", underlying)
	if !errors.Is(err, services.ErrSpawn) {
		t.Fatalf("expected ErrSpawn marker, got %v", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected wrapped OS error to remain inspectable, got %v", err)
	}
}

func TestWrapNilMarkerDefaultsToConfiguration(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration fallback, got %v", err)
	}
	if err.Error() != "configuration error: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
