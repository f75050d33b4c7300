package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process-wide engine configuration.
type Config struct {
	Engine  EngineConfig
	Remote  RemoteConfig
	Logging LogConfig
}

// EngineConfig holds defaults for local pipeline execution. Shell is
// loaded but not read by package spawn, which always runs commands with
// /bin/sh.
type EngineConfig struct {
	Verbosity int    `envconfig:"OSH_VERBOSITY" default:"0"`
	Shell     string `envconfig:"OSH_SHELL" default:"/bin/sh"`
}

// RemoteConfig holds defaults for the SSH-backed remote operator. Only
// MaxConcurrentSSH is read by package remote; RemoteExecutable and
// StrictHostChecking are loaded but not read (the remote operator always
// runs "remoteosh" and always disables strict host key checking).
type RemoteConfig struct {
	RemoteExecutable   string `envconfig:"OSH_REMOTE_EXECUTABLE" default:"remoteosh"`
	StrictHostChecking bool   `envconfig:"OSH_STRICT_HOST_CHECKING" default:"false"`
	MaxConcurrentSSH   int    `envconfig:"OSH_MAX_CONCURRENT_SSH" default:"32"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"OSH_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"OSH_LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Verbosity: 0,
			Shell:     "/bin/sh",
		},
		Remote: RemoteConfig{
			RemoteExecutable:   "remoteosh",
			StrictHostChecking: false,
			MaxConcurrentSSH:   32,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
