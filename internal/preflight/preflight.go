package preflight

import (
	"context"

	"warden/internal/config"
	"warden/internal/sidecar"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckEntrypoint(cfg))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	if cfg.Development() {
		results = append(results, CheckDirectoryAccess("Source root", cfg.Paths.SourceRoot))
	} else if cfg.Paths.ResourceDir != "" {
		results = append(results, CheckDirectoryAccess("Resource directory", cfg.Paths.ResourceDir))
	}

	for _, dep := range CheckSystemDeps(ctx, cfg) {
		detail := "available"
		if !dep.Available {
			detail = dep.Detail
		}
		results = append(results, Result{Name: dep.Name, Passed: dep.Available, Detail: detail})
	}

	return results
}

func resolvedEntrypoint(cfg *config.Config) string {
	resolver := sidecar.Resolver{Subpath: cfg.Sidecar.Entrypoint}
	resourceDir := cfg.Paths.ResourceDir
	if resourceDir == "" {
		resourceDir = sidecar.DetectResourceDir()
	}
	paths := resolver.Resolve(sidecar.Mode(cfg.Sidecar.Mode), cfg.Paths.SourceRoot, resourceDir)
	return paths.Entrypoint
}
