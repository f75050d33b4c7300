package remote

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/cluster"
	"github.com/geophile/osh/internal/config"
	"github.com/geophile/osh/internal/errs"
	"github.com/geophile/osh/internal/logging"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/spawn"
	"go.uber.org/zap"
)

const remoteExecutable = "remoteosh"

const badFileDescriptorLine = "[Errno 9] Bad file descriptor"

// dispatchLimiter limits the rate at which the remote operator (and,
// transitively, every fork worker wrapping one) starts ssh processes to
// MaxConcurrentSSH per second, with a burst of the same size, so a fork
// over a few hundred cluster hosts doesn't open them all at once. It does
// not cap how many ssh processes run at the same time. It is built once,
// at package initialization, from config.Default.
var dispatchLimiter = newDispatchLimiter()

func newDispatchLimiter() *rate.Limiter {
	max := config.Default().Remote.MaxConcurrentSSH
	if max <= 0 {
		max = 32
	}
	return rate.NewLimiter(rate.Limit(max), max)
}

// Request is what a Remote operator sends over ssh to the remoteosh
// binary: enough for the remote side to reparse and run the sub-pipeline
// without ever seeing a serialized Go value. Host is the cluster host the
// remote side is running on, which it adopts as its own worker identity
// so downstream ops (e.g. a nested fork or merge) see the same thread
// state they would locally.
type Request struct {
	Verbosity int          `json:"verbosity"`
	Pipeline  []string     `json:"pipeline"`
	Host      cluster.Host `json:"host"`
}

// Remote runs sub on a single host, which comes from the enclosing
// fork's per-worker thread state, and feeds the decoded output stream
// back into this operator's own receiver.
type Remote struct {
	pipeline.Base
	a   *args.Args
	sub *pipeline.Pipeline
}

// New builds a remote operator around sub, an already-parsed
// sub-pipeline that carries its own CLITokens for retransmission.
func New(sub pipeline.Operator) (*Remote, error) {
	r := &Remote{}
	a, err := args.New(r, args.API, "", 1, 1)
	if err != nil {
		return nil, err
	}
	if err := a.AddArg(sub); err != nil {
		return nil, err
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	r.a = a
	return r, nil
}

func (r *Remote) String() string {
	if r.sub == nil {
		return "_remote()"
	}
	return fmt.Sprintf("_remote(%s)", r.sub)
}

func (r *Remote) Setup(ctx context.Context) error {
	v := r.a.Next()
	sub, ok := v.(*pipeline.Pipeline)
	if !ok {
		return fmt.Errorf("remote: expected a pipeline argument, got %v", v)
	}
	r.sub = sub
	return nil
}

// RunLocal is false: a Remote must run on the fork worker goroutine that
// owns the ssh connection for its host, not wherever it happens to be
// scheduled, matching the rest of the pipeline template's behavior when
// wrapped into a fork worker.
func (r *Remote) RunLocal() bool { return false }

func (r *Remote) Execute(ctx context.Context) error {
	host, ok := r.Parent().ThreadState().(cluster.Host)
	if !ok {
		return fmt.Errorf("remote: thread state is not a cluster host")
	}

	correlationID := uuid.New().String()
	log := logging.Default().Worker(host.Name).With(zap.String("dispatch_id", correlationID))

	if err := dispatchLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("remote: waiting to dispatch to %s: %w", host.Name, err)
	}

	request := Request{
		Verbosity: pipeline.Verbosity,
		Pipeline:  r.sub.CLITokens(),
		Host:      host,
	}
	provider := spawn.NewObjectProvider([]interface{}{request})

	outConsumer := spawn.NewObjectConsumer(func(object interface{}) {
		if exc, ok := object.(*errs.PickleableException); ok {
			errs.HandleException(exc.Recreate(), r, nil, host.Name)
			return
		}
		pipeline.Send(ctx, r, object)
	})
	errConsumer := spawn.NewLineConsumer(func(line string) {
		if strings.Contains(line, badFileDescriptorLine) {
			return
		}
		errs.HandleStderr(line, r, nil, host.Name)
	})

	log.Debug("dispatching remote pipeline", zap.Strings("pipeline", request.Pipeline))
	process := spawn.NewSSH(host.User, host.Identity, host.Address,
		remoteCommand(host), provider, outConsumer, errConsumer)
	process.Run()
	if err := process.TerminatingException(); err != nil {
		log.Warn("remote dispatch failed", zap.Error(err))
		return err
	}
	log.Debug("remote dispatch complete")
	return nil
}

func remoteCommand(host cluster.Host) string {
	if host.DBProfile != "" {
		return remoteExecutable + " " + host.DBProfile
	}
	return remoteExecutable
}

// Receive is unreachable: a Remote sits at the head of the sub-pipeline
// it wraps and produces output only from Execute.
func (r *Remote) Receive(ctx context.Context, object interface{}) error {
	return fmt.Errorf("remote: does not accept input")
}

func (r *Remote) ReceiveComplete(ctx context.Context) error {
	pipeline.SendComplete(ctx, r)
	return nil
}

func (r *Remote) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	r.a.ReplaceFunctionByReference(store)
}
func (r *Remote) RestoreFunction(store *pipeline.FunctionStore) {
	r.a.RestoreFunction(store)
}

func (r *Remote) Clone() pipeline.Operator {
	return &Remote{a: r.a.Clone(), sub: r.sub}
}
