package config

const (
	defaultLogDir            = "~/.local/share/warden/logs"
	defaultLogRetentionDays  = 60
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultSidecarMode       = "packaged"
	defaultSidecarRuntime    = "node"
	defaultSidecarEntrypoint = "sidecar/local-api-server.mjs"
	defaultSidecarPort       = 46123
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Sidecar: Sidecar{
			Mode:       defaultSidecarMode,
			Runtime:    defaultSidecarRuntime,
			Entrypoint: defaultSidecarEntrypoint,
			Port:       defaultSidecarPort,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
