// Package config provides 12-factor process configuration for the osh engine.
//
// Configuration is loaded from environment variables with sensible defaults,
// mirroring the original osh.config module's verbosity and default-profile
// settings but expressed as typed, environment-driven knobs instead of an
// executed rc file (the dotted-key namespace and cluster definitions that
// oshrc also carried now live in package conf, loaded from YAML).
//
// Configuration Sections:
//   - Engine: default verbosity, and a shell setting that package spawn
//     does not read
//   - Remote: the ssh dispatch rate limit read by package remote, plus
//     remote-executable and host-checking settings that it does not read
//   - Logging: log level and output format
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	logger, _ := logging.New(logging.Config{Level: cfg.Logging.Level})
package config
