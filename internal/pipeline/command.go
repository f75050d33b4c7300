package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/geophile/osh/internal/errs"
)

// Verbosity controls how much a Command prints about what it's about to
// run. It is process-wide, set once from configuration or a -v flag
// before Command.Execute runs.
var Verbosity int

// Command drives a single pipeline from setup through completion,
// installing a SIGINT handler for the duration of the run that silences
// further error reporting and kills any spawned subprocesses instead of
// leaving them running after the user interrupts.
type Command struct {
	pipeline *Pipeline
	onKill   func()
	receiver Receiver
}

// NewCommand returns a Command that will run p. onKill, if non-nil, is
// called when SIGINT arrives, so the caller can kill spawned subprocesses
// (including remote ones) before the process exits.
func NewCommand(p *Pipeline, onKill func()) *Command {
	return &Command{pipeline: p, onKill: onKill}
}

// SetReceiver installs r as the pipeline's final receiver. It must be
// called before Execute, which wires it in right after Setup (Setup
// itself overwrites the last operator's receiver with whatever
// PipelineReceiver resolves to, which is nil for a top-level pipeline).
func (c *Command) SetReceiver(r Receiver) { c.receiver = r }

func (c *Command) String() string { return c.pipeline.String() }

// Pipeline returns the command's underlying pipeline.
func (c *Command) Pipeline() *Pipeline { return c.pipeline }

// Execute sets up and runs the pipeline to completion. Errors raised by
// operators are reported through the installed exception handler and do
// not stop the run, except for errs.Killer, which Command.Execute itself
// reports and then returns.
func (c *Command) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		if _, ok := <-sigCh; ok {
			errs.SetStderrHandler(func(string, fmt.Stringer, interface{}, string) {})
			errs.SetExceptionHandler(func(error, fmt.Stringer, interface{}, string) {})
			if c.onKill != nil {
				c.onKill()
			}
			cancel()
		}
	}()

	return c.run(ctx)
}

func (c *Command) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if killer, ok := r.(*errs.Killer); ok {
				fmt.Fprintln(os.Stderr, killer.Cause)
				err = killer
				return
			}
			panic(r)
		}
	}()

	if setupErr := c.pipeline.Setup(ctx); setupErr != nil {
		return setupErr
	}
	if c.receiver != nil {
		c.pipeline.SetReceiver(c.receiver)
	}
	if Verbosity >= 1 {
		fmt.Println(c.pipeline.String())
	}
	if execErr := c.pipeline.Execute(ctx); execErr != nil {
		return execErr
	}
	return c.pipeline.ReceiveComplete(ctx)
}
