// Command wardend runs the warden host in the foreground. The warden CLI
// launches it detached via the hidden "warden daemon" subcommand; running
// wardend directly is useful under service managers and during development.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"warden/internal/config"
	"warden/internal/hostrun"
	"warden/internal/preflight"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	reportPreflight(cfg)

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}

	if err := hostrun.Run(context.Background(), cfg, hostrun.Options{
		LogLevel:    level,
		Development: cfg.Development(),
	}); err != nil {
		log.Fatalf("run host: %v", err)
	}
}

func reportPreflight(cfg *config.Config) {
	for _, result := range preflight.RunAll(context.Background(), cfg) {
		if result.Passed {
			continue
		}
		fmt.Fprintf(os.Stderr, "warn: preflight %s: %s\n", result.Name, result.Detail)
	}
}
