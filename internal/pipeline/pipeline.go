package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/geophile/osh/internal/errs"
)

// Receiver accepts objects pushed downstream by an upstream operator.
type Receiver interface {
	Receive(ctx context.Context, object interface{}) error
	ReceiveComplete(ctx context.Context) error
}

// Parent is implemented by a Pipeline for the operators it contains, so
// that an operator can find the receiver that should follow it once its
// own next-op chain runs out, and can read state (such as a fork worker's
// thread state) shared by the whole pipeline.
type Parent interface {
	Receiver
	PipelineReceiver() Receiver
	ThreadState() interface{}
}

// FunctionValue is implemented by argument values (such as *function.
// Function) that cannot be copied like ordinary data and so must be
// hidden behind an integer FunctionReference while a pipeline is cloned
// for a fork worker, then restored afterward.
type FunctionValue interface {
	IsFunctionValue()
}

// FunctionReference stands in for a FunctionValue that FunctionStore has
// hidden during a pipeline copy.
type FunctionReference int

// FunctionStore substitutes FunctionValue arguments with integer
// references during pipeline cloning and restores them afterward. A
// pipeline is copied by: hide functions in the template (replacing them
// with references), deep-copy the template, then restore functions on
// both the template and the copy.
type FunctionStore struct {
	functions []FunctionValue
}

// NewFunctionStore returns an empty FunctionStore.
func NewFunctionStore() *FunctionStore {
	return &FunctionStore{}
}

// ToReference replaces x with an integer FunctionReference if x is a
// FunctionValue, otherwise returns x unchanged.
func (s *FunctionStore) ToReference(x interface{}) interface{} {
	if fn, ok := x.(FunctionValue); ok {
		ref := FunctionReference(len(s.functions))
		s.functions = append(s.functions, fn)
		return ref
	}
	return x
}

// ToFunction reverses ToReference: given a FunctionReference it returns
// the FunctionValue it stood in for, otherwise returns x unchanged.
func (s *FunctionStore) ToFunction(x interface{}) interface{} {
	if ref, ok := x.(FunctionReference); ok {
		return s.functions[ref]
	}
	return x
}

// Operator is the interface implemented by every osh command and by
// Pipeline itself, so pipelines can be nested. Output moves through
// Send/SendComplete, which forward to whatever the pipeline wired as
// this operator's receiver; input arrives through Receive/ReceiveComplete.
type Operator interface {
	Receiver
	fmt.Stringer

	Setup(ctx context.Context) error
	Execute(ctx context.Context) error

	// RunLocal reports whether this operator (and, for a Pipeline, every
	// operator it contains) must run on the invoking thread rather than
	// being dispatched to a fork worker or remote host.
	RunLocal() bool

	// CreateCommandState is called once per pipeline template, before any
	// fork workers are started, to build state shared across all copies
	// of this operator (e.g. a merge operator's shared priority queue).
	// workerCount is the number of workers that will receive a copy.
	CreateCommandState(workerCount int) interface{}
	SetCommandState(state interface{})
	CommandState() interface{}

	ReplaceFunctionByReference(store *FunctionStore)
	RestoreFunction(store *FunctionStore)

	// Clone returns a deep copy of this operator, independent of it for
	// everything except values hidden behind a FunctionReference (which
	// the caller is expected to restore on both the original and the
	// copy using the same FunctionStore).
	Clone() Operator

	Parent() Parent
	SetParent(p Parent)
	NextOp() Operator
	SetNextOp(op Operator)
	Receiver() Receiver
	SetReceiver(r Receiver)
}

// Base provides the plumbing every Operator needs (parent/receiver
// wiring, command state, default no-ops for the cloning hooks) for
// embedding into concrete operator types defined in other packages.
type Base struct {
	parent       Parent
	nextOp       Operator
	receiver     Receiver
	commandState interface{}
}

func (b *Base) Parent() Parent              { return b.parent }
func (b *Base) SetParent(p Parent)          { b.parent = p }
func (b *Base) NextOp() Operator            { return b.nextOp }
func (b *Base) SetNextOp(op Operator)       { b.nextOp = op }
func (b *Base) Receiver() Receiver          { return b.receiver }
func (b *Base) SetReceiver(r Receiver)      { b.receiver = r }
func (b *Base) CommandState() interface{}   { return b.commandState }
func (b *Base) SetCommandState(s interface{}) { b.commandState = s }

// CreateCommandState defaults to no shared state; operators that need
// state shared across fork workers (merge) override this.
func (b *Base) CreateCommandState(workerCount int) interface{} { return nil }

// RunLocal defaults to false; generators such as a timer override this.
func (b *Base) RunLocal() bool { return false }

// ReplaceFunctionByReference/RestoreFunction default to no-ops for
// operators with no function-valued arguments.
func (b *Base) ReplaceFunctionByReference(store *FunctionStore) {}
func (b *Base) RestoreFunction(store *FunctionStore)            {}

// Connect appends newOp to the end of op's next-op chain, mirroring
// BaseOp.connect.
func Connect(op, newOp Operator) {
	last := op
	for last.NextOp() != nil {
		last = last.NextOp()
	}
	last.SetNextOp(newOp)
}

// wrapIfNecessary ensures an object sent downstream is a tuple-like
// value: anything not already a slice is wrapped in a single-element one,
// matching how osh commands treat anonymous scalar output as a 1-tuple.
func wrapIfNecessary(object interface{}) interface{} {
	switch object.(type) {
	case []interface{}:
		return object
	default:
		return []interface{}{object}
	}
}

// Send delivers object to self's receiver, wrapping scalars into
// single-element tuples first. An error from downstream is routed to the
// global exception handler instead of propagating to the caller, except
// for errs.Killer, which must unwind every level back to Command.Execute.
func Send(ctx context.Context, self Operator, object interface{}) {
	receiver := self.Receiver()
	if receiver == nil {
		return
	}
	if err := receiver.Receive(ctx, wrapIfNecessary(object)); err != nil {
		reportOrPanic(err, self, object)
	}
}

// SendComplete tells self's receiver that no more output is coming.
func SendComplete(ctx context.Context, self Operator) {
	receiver := self.Receiver()
	if receiver == nil {
		return
	}
	if err := receiver.ReceiveComplete(ctx); err != nil {
		reportOrPanic(err, self, nil)
	}
}

// workerFault is implemented by an error that must bypass per-call
// exception reporting and unwind back to whatever goroutine is driving
// this pipeline (a fork worker, or the top-level Command for an unforked
// run), the same way errs.Killer always unwinds to Command.Execute.
type workerFault interface {
	error
	WorkerFault()
}

func reportOrPanic(err error, self Operator, object interface{}) {
	var killer *errs.Killer
	if errors.As(err, &killer) {
		panic(killer)
	}
	var fault workerFault
	if errors.As(err, &fault) {
		panic(fault)
	}
	errs.HandleException(err, self, object, "")
}

// PipelineReceiver finds the receiver that should follow op once its own
// next-op chain is exhausted, by walking up to op's enclosing Pipeline and
// (recursively) that pipeline's own parent. Returns nil at the outermost
// pipeline.
func PipelineReceiver(op Operator) Receiver {
	next := op.NextOp()
	if next != nil {
		return next
	}
	parent := op.Parent()
	if parent == nil {
		return nil
	}
	return parent.PipelineReceiver()
}
