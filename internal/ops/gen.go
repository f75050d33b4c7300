package ops

import (
	"context"
	"fmt"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/pipeline"
)

// Gen generates a sequence of integers: gen [-p PAD] [COUNT [START]].
// With no arguments the sequence starts at 0 and never terminates. With
// -p PAD, generated integers are formatted as zero-padded strings.
type Gen struct {
	pipeline.Base
	a *args.Args

	count  *int
	start  int
	format string // empty means "no padding"
	pad    int
}

// NewGen constructs a gen operator from already-typed arguments (the API
// surface equivalent of gen(count, start, pad)).
func NewGen(count, start, pad *int) (*Gen, error) {
	g := &Gen{}
	a, err := args.New(g, args.API, "p:", 0, 2)
	if err != nil {
		return nil, err
	}
	g.a = a
	if count != nil {
		if err := a.AddArg(*count); err != nil {
			return nil, err
		}
	}
	if start != nil {
		if err := a.AddArg(*start); err != nil {
			return nil, err
		}
	}
	if pad != nil {
		if err := a.AddArg(args.NewValueOption("-p", *pad)); err != nil {
			return nil, err
		}
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	return g, nil
}

// NewGenCLI constructs a gen operator from raw CLI tokens.
func NewGenCLI(tokens []string) (*Gen, error) {
	g := &Gen{}
	a, err := args.New(g, args.CLI, "p:", 0, 2)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		a.AddToken(t)
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	g.a = a
	return g, nil
}

func (g *Gen) String() string { return fmt.Sprintf("gen%s", g.a) }

func (g *Gen) Setup(ctx context.Context) error {
	count, hasCount := g.a.NextInt()
	if hasCount {
		g.count = &count
	}
	start, hasStart := g.a.NextInt()
	if hasStart {
		g.start = start
	}
	pad, hasPad := g.a.IntArg("-p")
	if hasPad {
		g.pad = pad
		g.format = fmt.Sprintf("%%0%dd", pad)
		if g.count != nil && len(fmt.Sprintf("%d", *g.count+g.start)) > pad {
			return fmt.Errorf("gen: -p %d is too small for count+start", pad)
		}
	}
	if g.a.HasNext() {
		return fmt.Errorf("gen: too many arguments")
	}
	return nil
}

func (g *Gen) Execute(ctx context.Context) error {
	emit := func(n int) {
		if g.format == "" {
			pipeline.Send(ctx, g, n)
		} else {
			pipeline.Send(ctx, g, fmt.Sprintf(g.format, n))
		}
	}
	if g.count == nil {
		for n := g.start; ; n++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			emit(n)
		}
	}
	for n := g.start; n < g.start+*g.count; n++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		emit(n)
	}
	pipeline.SendComplete(ctx, g)
	return nil
}

func (g *Gen) Receive(ctx context.Context, object interface{}) error { return g.Execute(ctx) }
func (g *Gen) ReceiveComplete(ctx context.Context) error {
	pipeline.SendComplete(ctx, g)
	return nil
}

func (g *Gen) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	g.a.ReplaceFunctionByReference(store)
}
func (g *Gen) RestoreFunction(store *pipeline.FunctionStore) {
	g.a.RestoreFunction(store)
}

func (g *Gen) Clone() pipeline.Operator {
	return &Gen{a: g.a.Clone(), count: g.count, start: g.start, format: g.format, pad: g.pad}
}
