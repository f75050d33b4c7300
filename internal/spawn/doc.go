// Package spawn runs a command as a subprocess (locally, or over ssh for
// a remote fork worker) and drives its stdin/stdout/stderr through
// pluggable providers and consumers.
//
// Spawn coordinates with its stdout/stderr consumer goroutines through a
// condition variable rather than by joining them directly: Wait can
// return before both consumer goroutines have drained their streams and
// noticed EOF, so completion is tracked explicitly and a periodic ticker
// rebroadcasts the condition as a safety net against a missed wakeup.
package spawn
