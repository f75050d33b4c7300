package cliparser

import (
	"fmt"
	"sync"

	"github.com/geophile/osh/internal/merge"
	"github.com/geophile/osh/internal/ops"
	"github.com/geophile/osh/internal/pipeline"
)

// Constructor builds an operator from its own CLI argument tokens (not
// including the operator name itself).
type Constructor func(tokens []string) (pipeline.Operator, error)

var (
	mu       sync.RWMutex
	registry = map[string]Constructor{}
)

// Register adds name to the operator registry. Registering the same name
// twice replaces the earlier constructor, which is how a caller can
// override or extend the built-in catalogue.
func Register(name string, ctor Constructor) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = ctor
}

func lookup(name string) (Constructor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	ctor, ok := registry[name]
	return ctor, ok
}

func init() {
	Register("gen", func(tokens []string) (pipeline.Operator, error) {
		op, err := ops.NewGenCLI(tokens)
		if err != nil {
			return nil, err
		}
		return op, nil
	})
	Register("f", func(tokens []string) (pipeline.Operator, error) {
		op, err := ops.NewFCLI(tokens)
		if err != nil {
			return nil, err
		}
		return op, nil
	})
	Register("filter", func(tokens []string) (pipeline.Operator, error) {
		op, err := ops.NewFilterCLI(tokens)
		if err != nil {
			return nil, err
		}
		return op, nil
	})
	Register("merge", func(tokens []string) (pipeline.Operator, error) {
		op, err := merge.NewCLI(tokens)
		if err != nil {
			return nil, err
		}
		return op, nil
	})
}

// ErrUnknownOperator reports a name with no registered constructor.
type ErrUnknownOperator struct{ Name string }

func (e *ErrUnknownOperator) Error() string {
	return fmt.Sprintf("unknown operator: %s", e.Name)
}
