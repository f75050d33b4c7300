package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectOp is a minimal Operator used only to exercise wiring; it emits
// its receive_complete-time collected inputs and remembers how many
// objects it received.
type collectOp struct {
	Base
	name     string
	received [][]interface{}
}

func (c *collectOp) String() string                  { return c.name }
func (c *collectOp) Setup(ctx context.Context) error  { return nil }
func (c *collectOp) Execute(ctx context.Context) error {
	Send(ctx, c, 1)
	Send(ctx, c, 2)
	SendComplete(ctx, c)
	return nil
}
func (c *collectOp) Receive(ctx context.Context, object interface{}) error {
	c.received = append(c.received, object.([]interface{}))
	Send(ctx, c, object)
	return nil
}
func (c *collectOp) ReceiveComplete(ctx context.Context) error {
	SendComplete(ctx, c)
	return nil
}
func (c *collectOp) Clone() Operator {
	return &collectOp{name: c.name}
}

func newCollectOp(name string) *collectOp {
	return &collectOp{name: name}
}

func TestPipelineWiresReceiversInOrder(t *testing.T) {
	a := newCollectOp("a")
	b := newCollectOp("b")
	p := NewPipeline(a)
	p.AppendOp(b)

	require.NoError(t, p.Setup(context.Background()))
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, [][]interface{}{{1}, {2}}, b.received)
}

func TestPipelineReceiverWalksUpToParent(t *testing.T) {
	inner := newCollectOp("inner")
	innerPipeline := NewPipeline(inner)

	outer := newCollectOp("outer")
	outerPipeline := NewPipeline(innerPipeline)
	outerPipeline.AppendOp(outer)

	require.NoError(t, outerPipeline.Setup(context.Background()))
	require.NoError(t, outerPipeline.Execute(context.Background()))

	assert.Equal(t, [][]interface{}{{1}, {2}}, outer.received)
}

func TestFunctionStoreRoundTrip(t *testing.T) {
	store := NewFunctionStore()
	fv := fakeFunctionValue{}
	ref := store.ToReference(fv)
	_, isRef := ref.(FunctionReference)
	assert.True(t, isRef)

	restored := store.ToFunction(ref)
	assert.Equal(t, fv, restored)

	// Non-function values pass through untouched.
	assert.Equal(t, 42, store.ToReference(42))
	assert.Equal(t, "x", store.ToFunction("x"))
}

type fakeFunctionValue struct{}

func (fakeFunctionValue) IsFunctionValue() {}

func TestPipelineString(t *testing.T) {
	a := newCollectOp("a")
	b := newCollectOp("b")
	p := NewPipeline(a)
	p.AppendOp(b)
	assert.Equal(t, "pipeline(a ^ b)", p.String())
}
