// Package procinfo snapshots the host's process table: pid, parent pid,
// state, memory usage, command line, and environment, mirroring the
// original engine's direct /proc reader but sourced from
// github.com/shirou/gopsutil/v4 for cross-platform portability instead
// of hand-parsing /proc/<pid>/status.
package procinfo
