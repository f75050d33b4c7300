// Package errs controls how the engine reports exceptions and stderr output
// surfacing from operators, spawned subprocesses, and remote workers.
//
// Handlers are process-wide and replaceable: SetExceptionHandler and
// SetStderrHandler wrap a caller-supplied function so that a panic inside
// the handler itself is promoted to a Killer, the one error variant that
// Command.Execute lets propagate out of a pipeline run instead of logging
// and continuing.
package errs
