// Package metrics exposes process-wide counters and gauges for the
// engine's concurrency-heavy components (fork workers, merge throughput,
// spawned subprocesses), mirroring the teacher's
// internal/infrastructure/monitoring use of
// github.com/prometheus/client_golang. Registration is optional: nothing
// in the engine fails if a caller never wires a registry up to an HTTP
// handler.
package metrics
