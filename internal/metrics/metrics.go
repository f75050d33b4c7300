package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and gauges the engine's concurrency-heavy
// components update as they run. Each Metrics owns a private registry
// rather than registering against the global default, so a process that
// builds more than one (as tests do) never hits a duplicate-registration
// panic.
type Metrics struct {
	Registry *prometheus.Registry

	ForkWorkersActive prometheus.Gauge
	ForkWorkersTotal  prometheus.Counter
	ForkWorkerErrors  prometheus.Counter

	MergeTuplesEmitted *prometheus.CounterVec
	MergeActiveSources prometheus.Gauge

	SpawnProcessesActive prometheus.Gauge
	SpawnProcessesTotal  prometheus.Counter
	SpawnKillsTotal      prometheus.Counter
}

// New builds a Metrics with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,

		ForkWorkersActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "osh_fork_workers_active",
			Help: "Number of fork worker goroutines currently executing.",
		}),
		ForkWorkersTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "osh_fork_workers_total",
			Help: "Total number of fork worker goroutines started.",
		}),
		ForkWorkerErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "osh_fork_worker_errors_total",
			Help: "Total number of fork worker errors reported to the exception handler.",
		}),

		MergeTuplesEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "osh_merge_tuples_emitted_total",
			Help: "Total number of tuples a merge operator has emitted downstream, by merge strategy.",
		}, []string{"strategy"}),
		MergeActiveSources: factory.NewGauge(prometheus.GaugeOpts{
			Name: "osh_merge_active_sources",
			Help: "Number of fork worker sources a merge operator is still waiting on.",
		}),

		SpawnProcessesActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "osh_spawn_processes_active",
			Help: "Number of subprocesses currently running under spawn.Spawn.",
		}),
		SpawnProcessesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "osh_spawn_processes_total",
			Help: "Total number of subprocesses started by spawn.Spawn.",
		}),
		SpawnKillsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "osh_spawn_kills_total",
			Help: "Total number of subprocesses killed via spawn.KillAll.",
		}),
	}
}

var (
	defaultMetrics = New()
)

// Default returns the process-wide Metrics instance used by components
// that don't have one threaded in explicitly.
func Default() *Metrics { return defaultMetrics }
