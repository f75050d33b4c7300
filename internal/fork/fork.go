package fork

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/clone"
	"github.com/geophile/osh/internal/cluster"
	"github.com/geophile/osh/internal/errs"
	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/logging"
	"github.com/geophile/osh/internal/merge"
	"github.com/geophile/osh/internal/metrics"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/remote"
	"go.uber.org/zap"
)

// Fork runs a copy of a sub-pipeline per worker: one goroutine per label
// from an integer count, a sequence, or a cluster, reassembling their
// output through an internal merge stage.
type Fork struct {
	pipeline.Base
	a               *args.Args
	clusterRequired bool

	template *pipeline.Pipeline
	workers  []*workerThread
}

type workerThread struct {
	label    interface{}
	pipeline *pipeline.Pipeline
	err      error
}

// New builds a fork operator: threadgen determines the worker labels
// (an int count, a []interface{} of labels, a cluster spec string such
// as "cluster1" or "cluster1:web", or a function value that evaluates to
// one of those), command is the per-worker sub-pipeline, and mergeKey
// (may be nil) orders the reassembled output.
func New(threadgen interface{}, command pipeline.Operator, mergeKey interface{}) (*Fork, error) {
	f := &Fork{}
	a, err := args.New(f, args.API, "", 2, 3)
	if err != nil {
		return nil, err
	}
	if err := a.AddArg(threadgen); err != nil {
		return nil, err
	}
	if err := a.AddArg(command); err != nil {
		return nil, err
	}
	if mergeKey != nil {
		if err := a.AddArg(mergeKey); err != nil {
			return nil, err
		}
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	f.a = a
	return f, nil
}

// SetClusterRequired forces resolveThreadGen to fail unless threadgen
// names a cluster, the way the remote() API wrapper requires.
func (f *Fork) SetClusterRequired(required bool) { f.clusterRequired = required }

func (f *Fork) String() string {
	if f.template == nil {
		return "fork()"
	}
	return fmt.Sprintf("fork(%s)", f.template)
}

func (f *Fork) Setup(ctx context.Context) error {
	threadgen := f.a.Next()
	commandArg := f.a.Next()
	mergeKey := f.a.Next()

	sub, err := toSubPipeline(commandArg)
	if err != nil {
		return err
	}

	cl, labels, err := f.resolveThreadGen(threadgen, false)
	if err != nil {
		return err
	}
	if f.clusterRequired && cl == nil {
		return fmt.Errorf("fork: remote() requires a cluster specification, got %v", threadgen)
	}
	if labels == nil {
		return fmt.Errorf("fork: could not resolve thread generator %v", threadgen)
	}

	if err := f.setupPipeline(cl, sub, mergeKey); err != nil {
		return err
	}
	if err := f.setupWorkers(labels); err != nil {
		return err
	}
	f.setupSharedState()
	return nil
}

func toSubPipeline(v interface{}) (*pipeline.Pipeline, error) {
	switch op := v.(type) {
	case *pipeline.Pipeline:
		return op, nil
	case pipeline.Operator:
		return pipeline.NewPipeline(op), nil
	default:
		return nil, fmt.Errorf("fork: expected a pipeline argument, got %v", v)
	}
}

// resolveThreadGen mirrors the original's thread_ids(): threadgen can be
// a literal sequence/count, a digit string, a cluster name (optionally
// "name:pattern"), or a function (spec or value) evaluated to yield one
// of the above. alreadyEvaled prevents an infinite loop when evaluation
// yields another function.
func (f *Fork) resolveThreadGen(threadgen interface{}, alreadyEvaled bool) (*cluster.Cluster, []interface{}, error) {
	switch v := threadgen.(type) {
	case []interface{}:
		return nil, v, nil
	case int:
		return nil, intRange(v), nil
	case int64:
		return nil, intRange(int(v)), nil
	case *function.Function:
		if alreadyEvaled {
			return nil, nil, fmt.Errorf("fork: thread generator function did not resolve to a thread count, sequence, or cluster")
		}
		result, err := v.Call()
		if err != nil {
			return nil, nil, err
		}
		return f.resolveThreadGen(result, true)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return nil, intRange(n), nil
		}
		cl, err := f.clusterNamed(v)
		if err != nil {
			return nil, nil, err
		}
		if cl != nil {
			labels := make([]interface{}, len(cl.Hosts))
			for i, h := range cl.Hosts {
				labels[i] = h
			}
			return cl, labels, nil
		}
		if alreadyEvaled {
			return nil, nil, fmt.Errorf("fork: could not resolve thread generator %q", v)
		}
		fn, err := function.Create(v)
		if err != nil {
			return nil, nil, err
		}
		result, err := fn.Call()
		if err != nil {
			return nil, nil, err
		}
		return f.resolveThreadGen(result, true)
	default:
		return nil, nil, fmt.Errorf("fork: cannot resolve thread generator %v (%T)", v, v)
	}
}

func intRange(n int) []interface{} {
	labels := make([]interface{}, n)
	for i := 0; i < n; i++ {
		labels[i] = i
	}
	return labels
}

func (f *Fork) clusterNamed(spec string) (*cluster.Cluster, error) {
	name, pattern, _ := strings.Cut(spec, ":")
	ns, err := defaultNamespace()
	if err != nil {
		return nil, err
	}
	return cluster.Named(ns, name, pattern)
}

// setupPipeline wraps sub with a remote operator when it will run on a
// cluster host rather than locally, then appends the thread-state
// attachment and merge stages every fork worker pipeline ends with.
func (f *Fork) setupPipeline(cl *cluster.Cluster, sub *pipeline.Pipeline, mergeKey interface{}) error {
	if cl != nil && !sub.RunLocal() {
		remoteOp, err := remote.New(sub)
		if err != nil {
			return err
		}
		sub = pipeline.NewPipeline(remoteOp)
	}
	sub.AppendOp(newAttachThreadState())
	mergeOp, err := merge.New(mergeKey)
	if err != nil {
		return err
	}
	sub.AppendOp(mergeOp)
	f.template = sub
	return nil
}

// setupWorkers clones the template pipeline once per label, hiding
// function arguments for the duration of the copy (see package clone)
// since goja-backed closures can't be deep-copied like ordinary data.
func (f *Fork) setupWorkers(labels []interface{}) error {
	workers := make([]*workerThread, len(labels))
	for i, label := range labels {
		copied := clone.Of(f.template)
		copiedPipeline, ok := copied.(*pipeline.Pipeline)
		if !ok {
			return fmt.Errorf("fork: cloned template is not a pipeline")
		}
		copiedPipeline.SetThreadState(label)
		workers[i] = &workerThread{label: label, pipeline: copiedPipeline}
	}
	f.workers = workers
	return nil
}

// setupSharedState walks the template's operators and each worker's
// cloned operators in lockstep, so every copy of (say) a merge stage
// shares the one State the template's CreateCommandState built.
func (f *Fork) setupSharedState() {
	templateOps := f.template.Ops()
	workerOps := make([][]pipeline.Operator, len(f.workers))
	for i, w := range f.workers {
		workerOps[i] = w.pipeline.Ops()
	}
	for opIndex, templateOp := range templateOps {
		state := templateOp.CreateCommandState(len(f.workers))
		for _, ops := range workerOps {
			ops[opIndex].SetCommandState(state)
		}
	}
}

func (f *Fork) Execute(ctx context.Context) error {
	m := metrics.Default()
	var wg sync.WaitGroup
	for _, w := range f.workers {
		if err := w.pipeline.Setup(ctx); err != nil {
			return err
		}
		w.pipeline.SetReceiver(f.Receiver())
	}
	m.ForkWorkersTotal.Add(float64(len(f.workers)))
	m.ForkWorkersActive.Add(float64(len(f.workers)))
	for _, w := range f.workers {
		wg.Add(1)
		go func(w *workerThread) {
			defer wg.Done()
			defer m.ForkWorkersActive.Dec()
			label := fmt.Sprintf("%v", w.label)
			log := logging.Default().Worker(label)
			log.Debug("fork worker starting")
			w.err = runWorkerPipeline(ctx, w.pipeline)
			if w.err != nil {
				log.Warn("fork worker finished with error", zap.Error(w.err))
			} else {
				log.Debug("fork worker finished")
			}
		}(w)
	}
	wg.Wait()
	for _, w := range f.workers {
		if w.err != nil {
			m.ForkWorkerErrors.Inc()
			errs.HandleException(w.err, f, nil, fmt.Sprintf("%v", w.label))
		}
	}
	return nil
}

// runWorkerPipeline runs a worker's pipeline, recovering a worker-fault
// panic (such as a priorityqueue ordering violation raised while this
// worker's tuples were being merged) into an ordinary returned error so
// it becomes w.err and is reported through the same errs.HandleException
// call as any other worker error, tagged with this worker's label. Any
// other panic (notably errs.Killer) is left to propagate, since Killer
// semantics are unrelated to an individual worker's outcome.
func runWorkerPipeline(ctx context.Context, p *pipeline.Pipeline) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if faultErr, ok := r.(error); ok {
				if _, isFault := faultErr.(interface{ WorkerFault() }); isFault {
					err = faultErr
					return
				}
			}
			panic(r)
		}
	}()
	return p.Execute(ctx)
}

func (f *Fork) Receive(ctx context.Context, object interface{}) error {
	return fmt.Errorf("fork: does not accept input")
}

func (f *Fork) ReceiveComplete(ctx context.Context) error {
	for _, w := range f.workers {
		if err := w.pipeline.ReceiveComplete(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fork) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	f.a.ReplaceFunctionByReference(store)
}
func (f *Fork) RestoreFunction(store *pipeline.FunctionStore) {
	f.a.RestoreFunction(store)
}

func (f *Fork) Clone() pipeline.Operator {
	return &Fork{a: f.a.Clone(), clusterRequired: f.clusterRequired}
}
