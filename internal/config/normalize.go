package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSidecar()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.SourceRoot == "" {
		if value, ok := os.LookupEnv("WARDEN_SOURCE_ROOT"); ok {
			c.Paths.SourceRoot = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.SourceRoot) != "" {
		if c.Paths.SourceRoot, err = expandPath(c.Paths.SourceRoot); err != nil {
			return fmt.Errorf("paths.source_root: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.ResourceDir) != "" {
		if c.Paths.ResourceDir, err = expandPath(c.Paths.ResourceDir); err != nil {
			return fmt.Errorf("paths.resource_dir: %w", err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSidecar() {
	c.Sidecar.Mode = strings.ToLower(strings.TrimSpace(c.Sidecar.Mode))
	if c.Sidecar.Mode == "" {
		c.Sidecar.Mode = defaultSidecarMode
	}
	c.Sidecar.Runtime = strings.TrimSpace(c.Sidecar.Runtime)
	if c.Sidecar.Runtime == "" {
		c.Sidecar.Runtime = defaultSidecarRuntime
	}
	c.Sidecar.Entrypoint = strings.Trim(strings.TrimSpace(c.Sidecar.Entrypoint), "/")
	if c.Sidecar.Entrypoint == "" {
		c.Sidecar.Entrypoint = defaultSidecarEntrypoint
	}
	if c.Sidecar.Port == 0 {
		c.Sidecar.Port = defaultSidecarPort
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays == 0 {
		c.Logging.RetentionDays = defaultLogRetentionDays
	}
}
