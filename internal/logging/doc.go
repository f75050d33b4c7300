// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Fork workers, the spawn framework, and the remote operator all log
// through the process-wide logger returned by Default (replaced with
// SetDefault), tagging each line with the worker identity that produced
// it where one is known (see Logger.Worker).
package logging
