package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSidecar(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSidecar() error {
	switch c.Sidecar.Mode {
	case "development", "packaged":
	default:
		return fmt.Errorf("sidecar.mode must be %q or %q, got %q", "development", "packaged", c.Sidecar.Mode)
	}
	if c.Sidecar.Mode == "development" && strings.TrimSpace(c.Paths.SourceRoot) == "" {
		return errors.New("paths.source_root must be set when sidecar.mode is development (or set WARDEN_SOURCE_ROOT)")
	}
	if strings.TrimSpace(c.Sidecar.Runtime) == "" {
		return errors.New("sidecar.runtime must be set")
	}
	if filepath.IsAbs(c.Sidecar.Entrypoint) {
		return errors.New("sidecar.entrypoint must be a path relative to the source root or resource directory")
	}
	if c.Sidecar.Port < 1 || c.Sidecar.Port > 65535 {
		return fmt.Errorf("sidecar.port must be between 1 and 65535, got %d", c.Sidecar.Port)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be %q or %q, got %q", "console", "json", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
