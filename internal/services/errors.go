// Package services defines the shared error taxonomy for supervisor
// components.
//
// Errors are tagged with sentinel markers so callers can classify a failure
// without parsing message text. Start-path failures carry a marker and a
// component/operation prefix; stop-path code never returns errors at all.
package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrConfiguration marks failures to resolve or validate runtime settings.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingEntrypoint marks a sidecar entrypoint absent at its resolved path.
	ErrMissingEntrypoint = errors.New("missing entrypoint")
	// ErrSpawn marks an OS-level failure to create the sidecar process.
	ErrSpawn = errors.New("spawn error")
	// ErrLock marks unavailable supervisor state or lock acquisition failure.
	ErrLock = errors.New("lock error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
