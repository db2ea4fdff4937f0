package sidecar

import (
	"os"
	"path/filepath"
	"strings"
)

// Mode selects how sidecar paths are resolved.
type Mode string

const (
	// ModeDevelopment resolves the entrypoint beneath the application source tree.
	ModeDevelopment Mode = "development"
	// ModePackaged resolves the entrypoint beneath the packaged resource directory.
	ModePackaged Mode = "packaged"
)

// ResolvedPaths holds the sidecar entrypoint and the directory handed to the
// sidecar as its resource root. Computed fresh on every start, never persisted.
type ResolvedPaths struct {
	Entrypoint   string
	ResourceRoot string
}

// Resolver computes sidecar paths for a deployment mode. Resolution is pure
// and never fails: unknown inputs degrade to the working directory so that
// the entrypoint existence check downstream remains the single enforcement
// point.
type Resolver struct {
	// Subpath is the entrypoint location relative to the source root or
	// resource directory.
	Subpath string
}

// Resolve computes the entrypoint and resource root for the given mode.
//
// In development mode the entrypoint lives under sourceRoot and the resource
// root is sourceRoot's parent directory, so the sidecar can reach sibling
// project files. In packaged mode both derive from resourceDir.
func (r Resolver) Resolve(mode Mode, sourceRoot, resourceDir string) ResolvedPaths {
	subpath := filepath.FromSlash(strings.TrimSpace(r.Subpath))

	if mode == ModeDevelopment {
		root := strings.TrimSpace(sourceRoot)
		if root == "" {
			root = "."
		}
		parent := filepath.Dir(root)
		return ResolvedPaths{
			Entrypoint:   filepath.Join(root, subpath),
			ResourceRoot: parent,
		}
	}

	dir := strings.TrimSpace(resourceDir)
	if dir == "" {
		dir = "."
	}
	return ResolvedPaths{
		Entrypoint:   filepath.Join(dir, subpath),
		ResourceRoot: dir,
	}
}

// DetectResourceDir locates the packaged resource directory: a "resources"
// directory next to the running executable. Falls back to the working
// directory when the executable path cannot be determined.
func DetectResourceDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Join(filepath.Dir(exe), "resources")
}
