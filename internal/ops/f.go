package ops

import (
	"context"
	"fmt"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/pipeline"
)

// F applies a function to each input tuple and sends the result: f
// FUNCTION. It can also run as a generator (a zero-argument function with
// nothing upstream), which is why it implements both Execute and Receive.
type F struct {
	pipeline.Base
	a  *args.Args
	fn *function.Function
}

// NewF constructs an f operator around fn.
func NewF(fn *function.Function) (*F, error) {
	f := &F{}
	a, err := args.New(f, args.API, "", 1, 1)
	if err != nil {
		return nil, err
	}
	if err := a.AddArg(fn); err != nil {
		return nil, err
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	f.a = a
	return f, nil
}

// NewFCLI constructs an f operator from raw CLI tokens (the function
// spec, as a single token).
func NewFCLI(tokens []string) (*F, error) {
	f := &F{}
	a, err := args.New(f, args.CLI, "", 1, 1)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		a.AddToken(t)
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	f.a = a
	return f, nil
}

func (f *F) String() string { return fmt.Sprintf("f%s", f.a) }

func (f *F) Setup(ctx context.Context) error {
	fn, err := f.a.NextFunction()
	if err != nil {
		return err
	}
	if fn == nil || f.a.HasNext() {
		return fmt.Errorf("f: expected exactly one function argument")
	}
	f.fn = fn
	return nil
}

func (f *F) Receive(ctx context.Context, object interface{}) error {
	tuple, _ := object.([]interface{})
	result, err := f.fn.Call(tuple...)
	if err != nil {
		return err
	}
	pipeline.Send(ctx, f, result)
	return nil
}

func (f *F) Execute(ctx context.Context) error {
	result, err := f.fn.Call()
	if err != nil {
		return err
	}
	pipeline.Send(ctx, f, result)
	return nil
}

func (f *F) ReceiveComplete(ctx context.Context) error {
	pipeline.SendComplete(ctx, f)
	return nil
}

func (f *F) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	f.a.ReplaceFunctionByReference(store)
}
func (f *F) RestoreFunction(store *pipeline.FunctionStore) {
	f.a.RestoreFunction(store)
}

func (f *F) Clone() pipeline.Operator {
	return &F{a: f.a.Clone(), fn: f.fn}
}
