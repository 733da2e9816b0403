package airride

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the daemon's own settings, distinct from the per-service
// declaration grammar (spec §4.B): where to find declarations, where to
// write logs and the audit database, and the handful of optional subsystems
// (tracing, control-endpoint auth) the core spec leaves as implementation
// detail. Loaded from /etc/airride/airride.yaml if present; every field has
// a working default so a missing or partial file is never fatal.
type Config struct {
	ServicesDir  string `yaml:"services_dir"`
	LogDir       string `yaml:"log_dir"`
	SocketPath   string `yaml:"socket_path"`
	HostnameFile string `yaml:"hostname_file"`

	// HistoryDB, when non-empty, enables the sqlite-backed audit trail
	// (§14.3). Empty disables it.
	HistoryDB string `yaml:"history_db"`

	// OTLPEndpoint, when non-empty, enables span export over OTLP/gRPC
	// (§14.4). Empty keeps tracing a no-op.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// ControlTokenFile, when non-empty, requires clients to send a
	// bcrypt-checked shared secret as the word right after the verb (§14.5).
	ControlTokenFile string `yaml:"control_token_file"`

	// LogLevel sets the supervisor's slog level (§12) when neither the
	// AIRRIDE_LOGLEVEL environment variable nor the airride.loglevel boot
	// parameter is set. Empty (the default) means info, same as an invalid
	// value (parseLogLevel's fallback).
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig matches the paths in spec §6.
func DefaultConfig() Config {
	return Config{
		ServicesDir:  "/etc/airride/services",
		LogDir:       "/var/log/airride",
		SocketPath:   "/run/airride.sock",
		HostnameFile: hostnameFile,
	}
}

const defaultConfigPath = "/etc/airride/airride.yaml"

// LoadConfig reads defaultConfigPath, overlaying any fields it sets onto
// DefaultConfig. A missing file is not an error: the supervisor runs on
// defaults alone, matching the rest of the core's "degrade, don't halt"
// error philosophy (spec §7).
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = defaultConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
