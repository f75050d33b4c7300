package fork

import (
	"context"

	"github.com/geophile/osh/internal/conf"
	"github.com/geophile/osh/internal/pipeline"
)

// defaultNamespace is the configuration namespace cluster specs (e.g.
// "cluster1:web" in a thread generator) are resolved against.
func defaultNamespace() (*conf.Namespace, error) {
	return conf.Default()
}

// attachThreadState prepends the enclosing pipeline copy's thread-state
// label (the value this worker was forked over) to every tuple it sees.
// Fork appends one of these, followed by a merge op, to the sub-pipeline
// it runs per worker.
type attachThreadState struct {
	pipeline.Base
	label interface{}
}

func newAttachThreadState() *attachThreadState { return &attachThreadState{} }

func (a *attachThreadState) String() string { return "_attachThreadState()" }

func (a *attachThreadState) Setup(ctx context.Context) error {
	if parent := a.Parent(); parent != nil {
		a.label = parent.ThreadState()
	}
	return nil
}

func (a *attachThreadState) Execute(ctx context.Context) error { return nil }

func (a *attachThreadState) Receive(ctx context.Context, object interface{}) error {
	tuple, ok := object.([]interface{})
	if !ok {
		tuple = []interface{}{object}
	}
	out := make([]interface{}, 0, len(tuple)+1)
	out = append(out, a.label)
	out = append(out, tuple...)
	pipeline.Send(ctx, a, out)
	return nil
}

func (a *attachThreadState) ReceiveComplete(ctx context.Context) error {
	pipeline.SendComplete(ctx, a)
	return nil
}

func (a *attachThreadState) ReplaceFunctionByReference(store *pipeline.FunctionStore) {}
func (a *attachThreadState) RestoreFunction(store *pipeline.FunctionStore)            {}

func (a *attachThreadState) Clone() pipeline.Operator { return &attachThreadState{} }
