package ops

import (
	"context"
	"fmt"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/pipeline"
)

// Filter passes through only inputs for which PREDICATE evaluates truthy:
// filter PREDICATE.
type Filter struct {
	pipeline.Base
	a    *args.Args
	pred *function.Function
}

// NewFilter constructs a filter operator around pred.
func NewFilter(pred *function.Function) (*Filter, error) {
	flt := &Filter{}
	a, err := args.New(flt, args.API, "", 1, 1)
	if err != nil {
		return nil, err
	}
	if err := a.AddArg(pred); err != nil {
		return nil, err
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	flt.a = a
	return flt, nil
}

// NewFilterCLI constructs a filter operator from raw CLI tokens (the
// predicate spec, as a single token).
func NewFilterCLI(tokens []string) (*Filter, error) {
	flt := &Filter{}
	a, err := args.New(flt, args.CLI, "", 1, 1)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		a.AddToken(t)
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	flt.a = a
	return flt, nil
}

func (flt *Filter) String() string { return fmt.Sprintf("filter%s", flt.a) }

func (flt *Filter) Setup(ctx context.Context) error {
	pred, err := flt.a.NextFunction()
	if err != nil {
		return err
	}
	if pred == nil || flt.a.HasNext() {
		return fmt.Errorf("filter: expected exactly one predicate argument")
	}
	flt.pred = pred
	return nil
}

func (flt *Filter) Receive(ctx context.Context, object interface{}) error {
	tuple, _ := object.([]interface{})
	result, err := flt.pred.Call(tuple...)
	if err != nil {
		return err
	}
	if truthy(result) {
		pipeline.Send(ctx, flt, object)
	}
	return nil
}

func (flt *Filter) Execute(ctx context.Context) error { return nil }

func (flt *Filter) ReceiveComplete(ctx context.Context) error {
	pipeline.SendComplete(ctx, flt)
	return nil
}

func (flt *Filter) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	flt.a.ReplaceFunctionByReference(store)
}
func (flt *Filter) RestoreFunction(store *pipeline.FunctionStore) {
	flt.a.RestoreFunction(store)
}

func (flt *Filter) Clone() pipeline.Operator {
	return &Filter{a: flt.a.Clone(), pred: flt.pred}
}

func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}
