package clone_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/clone"
	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/pipeline"
)

// fnOp is a minimal operator holding a single function-valued argument,
// used to exercise the hide/copy/restore cycle without depending on the
// real operator catalogue.
type fnOp struct {
	pipeline.Base
	fn interface{} // *function.Function, or a pipeline.FunctionReference while hidden
}

func (o *fnOp) String() string                                        { return "fnop" }
func (o *fnOp) Setup(ctx context.Context) error                       { return nil }
func (o *fnOp) Execute(ctx context.Context) error                     { return nil }
func (o *fnOp) Receive(ctx context.Context, object interface{}) error { return nil }
func (o *fnOp) ReceiveComplete(ctx context.Context) error             { return nil }

func (o *fnOp) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	o.fn = store.ToReference(o.fn)
}

func (o *fnOp) RestoreFunction(store *pipeline.FunctionStore) {
	o.fn = store.ToFunction(o.fn)
}

func (o *fnOp) Clone() pipeline.Operator {
	return &fnOp{fn: o.fn}
}

func TestOfCopiesFunctionArgument(t *testing.T) {
	fn, err := function.New("x: x + 1")
	require.NoError(t, err)

	tmpl := &fnOp{fn: fn}
	cloned := clone.Of(tmpl)

	copiedOp, ok := cloned.(*fnOp)
	require.True(t, ok)
	assert.Same(t, fn, copiedOp.fn)
	assert.Same(t, fn, tmpl.fn)
}
