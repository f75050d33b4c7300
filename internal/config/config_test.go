package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 0, cfg.Engine.Verbosity)
	assert.Equal(t, "/bin/sh", cfg.Engine.Shell)
	assert.Equal(t, "remoteosh", cfg.Remote.RemoteExecutable)
	assert.Equal(t, 32, cfg.Remote.MaxConcurrentSSH)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"OSH_VERBOSITY":          "2",
		"OSH_SHELL":              "/bin/bash",
		"OSH_REMOTE_EXECUTABLE":  "remoteosh-custom",
		"OSH_MAX_CONCURRENT_SSH": "8",
		"OSH_LOG_LEVEL":          "debug",
		"OSH_LOG_DEV":            "true",
	}
	for key, value := range envVars {
		require.NoError(t, os.Setenv(key, value))
		defer os.Unsetenv(key)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Engine.Verbosity)
	assert.Equal(t, "/bin/bash", cfg.Engine.Shell)
	assert.Equal(t, "remoteosh-custom", cfg.Remote.RemoteExecutable)
	assert.Equal(t, 8, cfg.Remote.MaxConcurrentSSH)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
}

func TestLoadOrDefaultFallsBackCleanly(t *testing.T) {
	cfg := LoadOrDefault()
	assert.NotNil(t, cfg)
}
