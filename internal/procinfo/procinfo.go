package procinfo

import (
	"context"
	"fmt"
	"strings"

	gopsutil "github.com/shirou/gopsutil/v4/process"
)

// Process is a point-in-time view of one entry in the process table. All
// fields are a snapshot: by the time a caller inspects one, the process
// it describes may already have exited or been replaced by the kernel
// reusing its pid.
type Process struct {
	PID         int32
	ParentPID   int32
	State       string
	VMSize      uint64
	RSS         uint64
	Commandline string
	Env         map[string]string
}

func (p *Process) String() string { return fmt.Sprintf("Process(%d)", p.PID) }

// Processes returns a snapshot of every process currently visible to
// this host.
func Processes(ctx context.Context) ([]*Process, error) {
	procs, err := gopsutil.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("procinfo: %w", err)
	}
	result := make([]*Process, 0, len(procs))
	for _, p := range procs {
		result = append(result, fromGopsutil(ctx, p))
	}
	return result, nil
}

// Find returns the process table entry for pid, or ok=false if it no
// longer exists.
func Find(ctx context.Context, pid int32) (*Process, bool) {
	p, err := gopsutil.NewProcessWithContext(ctx, pid)
	if err != nil {
		return nil, false
	}
	return fromGopsutil(ctx, p), true
}

func fromGopsutil(ctx context.Context, p *gopsutil.Process) *Process {
	out := &Process{PID: p.Pid}
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		out.ParentPID = ppid
	}
	if states, err := p.StatusWithContext(ctx); err == nil && len(states) > 0 {
		out.State = states[0]
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		out.VMSize = mem.VMS
		out.RSS = mem.RSS
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
		out.Commandline = cmdline
	}
	if env, err := p.EnvironWithContext(ctx); err == nil {
		out.Env = parseEnviron(env)
	}
	return out
}

func parseEnviron(entries []string) map[string]string {
	env := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, "=")
		if found {
			env[key] = value
		}
	}
	return env
}

// Parent returns this process's parent, or ok=false if it has none (pid
// 0) or the parent has already exited.
func (p *Process) Parent(ctx context.Context) (*Process, bool) {
	if p.ParentPID == 0 {
		return nil, false
	}
	return Find(ctx, p.ParentPID)
}

// Descendants returns every process in all whose ancestry includes p,
// direct or indirect.
func (p *Process) Descendants(all []*Process) []*Process {
	byParent := map[int32][]*Process{}
	for _, candidate := range all {
		byParent[candidate.ParentPID] = append(byParent[candidate.ParentPID], candidate)
	}
	var descendants []*Process
	var walk func(pid int32)
	walk = func(pid int32) {
		for _, child := range byParent[pid] {
			descendants = append(descendants, child)
			walk(child.PID)
		}
	}
	walk(p.PID)
	return descendants
}

// Kill sends signal (a POSIX signal number) to this process, or
// SIGTERM if signal is 0.
func (p *Process) Kill(ctx context.Context, signal int) error {
	proc, err := gopsutil.NewProcessWithContext(ctx, p.PID)
	if err != nil {
		return fmt.Errorf("procinfo: process %d no longer exists: %w", p.PID, err)
	}
	if signal == 0 {
		return proc.TerminateWithContext(ctx)
	}
	return proc.SendSignalWithContext(ctx, syscallSignal(signal))
}
