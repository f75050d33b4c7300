package spawn

import (
	"sync"

	"github.com/geophile/osh/internal/metrics"
)

// registry tracks every Spawn currently running, so KillAll can reach
// them from a signal handler.
type registry struct {
	mu    sync.Mutex
	procs []*Spawn
}

var defaultRegistry = &registry{}

func (r *registry) add(s *Spawn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs = append(r.procs, s)
	m := metrics.Default()
	m.SpawnProcessesTotal.Inc()
	m.SpawnProcessesActive.Inc()
}

func (r *registry) remove(s *Spawn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.procs {
		if p == s {
			r.procs = append(r.procs[:i], r.procs[i+1:]...)
			metrics.Default().SpawnProcessesActive.Dec()
			return
		}
	}
}

// KillAll kills every currently-running Spawn'd process. It's meant to be
// wired in as a pipeline.Command's onKill callback.
func KillAll() {
	defaultRegistry.mu.Lock()
	procs := make([]*Spawn, len(defaultRegistry.procs))
	copy(procs, defaultRegistry.procs)
	defaultRegistry.mu.Unlock()
	for _, p := range procs {
		metrics.Default().SpawnKillsTotal.Inc()
		p.Kill()
	}
}
