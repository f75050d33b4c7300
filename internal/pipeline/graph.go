package pipeline

import (
	"context"
	"strings"
)

// Pipeline is a sequence of operators connected first-to-last. Since
// Pipeline itself implements Operator, pipelines nest: a pipeline can be
// one op among several in an enclosing pipeline (this is how fork and
// remote each run a whole sub-pipeline per worker).
type Pipeline struct {
	Base
	firstOp     Operator
	threadState interface{}
	cliTokens   []string
}

// NewPipeline returns an empty pipeline, optionally seeded with op.
func NewPipeline(op Operator) *Pipeline {
	p := &Pipeline{}
	if op != nil {
		p.AppendOp(op)
	}
	return p
}

func (p *Pipeline) String() string {
	var parts []string
	for op := p.firstOp; op != nil; op = op.NextOp() {
		parts = append(parts, op.String())
	}
	return "pipeline(" + strings.Join(parts, " ^ ") + ")"
}

// AppendOp adds op to the end of the pipeline.
func (p *Pipeline) AppendOp(op Operator) *Pipeline {
	if p.firstOp != nil {
		Connect(p.firstOp, op)
	} else {
		p.firstOp = op
	}
	op.SetParent(p)
	return p
}

// PrependOp adds op to the front of the pipeline.
func (p *Pipeline) PrependOp(op Operator) *Pipeline {
	if p.firstOp != nil {
		Connect(op, p.firstOp)
	}
	p.firstOp = op
	op.SetParent(p)
	return p
}

// FirstOp returns the pipeline's first operator, or nil if empty.
func (p *Pipeline) FirstOp() Operator { return p.firstOp }

// Ops returns every operator in the pipeline, in order.
func (p *Pipeline) Ops() []Operator {
	var ops []Operator
	for op := p.firstOp; op != nil; op = op.NextOp() {
		ops = append(ops, op)
	}
	return ops
}

// SetThreadState records the state of the fork worker (or remote host)
// this pipeline copy is running on, readable by every op in the pipeline
// via its Parent.
func (p *Pipeline) SetThreadState(state interface{}) { p.threadState = state }
func (p *Pipeline) ThreadState() interface{}         { return p.threadState }

// SetCLITokens records the original CLI tokens this pipeline was parsed
// from, so that a remote worker can be sent exactly those tokens to
// reparse and run on its own side; see internal/remote.
func (p *Pipeline) SetCLITokens(tokens []string) { p.cliTokens = tokens }
func (p *Pipeline) CLITokens() []string          { return p.cliTokens }

// SetReceiver makes op the receiver for the pipeline's last operator,
// bypassing PipelineReceiver. Fork uses this to route a worker's pipeline
// copy directly into the enclosing pipeline's receiver.
func (p *Pipeline) SetReceiver(op Receiver) {
	last := p.firstOp
	if last == nil {
		return
	}
	for last.NextOp() != nil {
		last = last.NextOp()
	}
	last.SetReceiver(op)
}

// Setup wires each operator's receiver to the next operator in the chain
// (or, for the last operator, to whatever follows this pipeline), then
// calls Setup on each in order.
func (p *Pipeline) Setup(ctx context.Context) error {
	for op := p.firstOp; op != nil; {
		if err := op.Setup(ctx); err != nil {
			return err
		}
		next := op.NextOp()
		if next != nil {
			op.SetReceiver(next)
		} else {
			op.SetReceiver(PipelineReceiver(op))
		}
		op = next
	}
	return nil
}

func (p *Pipeline) Execute(ctx context.Context) error {
	if p.firstOp == nil {
		return nil
	}
	return p.firstOp.Execute(ctx)
}

func (p *Pipeline) Receive(ctx context.Context, object interface{}) error {
	if p.firstOp == nil {
		return nil
	}
	return p.firstOp.Receive(ctx, object)
}

func (p *Pipeline) ReceiveComplete(ctx context.Context) error {
	if p.firstOp == nil {
		return nil
	}
	return p.firstOp.ReceiveComplete(ctx)
}

// PipelineReceiver implements Parent for the operators this pipeline
// contains: an operator at the end of its own next-op chain continues
// into whatever follows this pipeline in its own parent, recursively.
func (p *Pipeline) PipelineReceiver() Receiver {
	if p.nextOp != nil {
		return p.nextOp
	}
	if p.parent != nil {
		return p.parent.PipelineReceiver()
	}
	return nil
}

// RunLocal reports whether every operator in the pipeline must run on the
// invoking thread.
func (p *Pipeline) RunLocal() bool {
	for op := p.firstOp; op != nil; op = op.NextOp() {
		if !op.RunLocal() {
			return false
		}
	}
	return true
}

func (p *Pipeline) ReplaceFunctionByReference(store *FunctionStore) {
	for op := p.firstOp; op != nil; op = op.NextOp() {
		op.ReplaceFunctionByReference(store)
	}
}

func (p *Pipeline) RestoreFunction(store *FunctionStore) {
	for op := p.firstOp; op != nil; op = op.NextOp() {
		op.RestoreFunction(store)
	}
}

// Clone deep-copies every operator in the pipeline, reconnecting the
// copies in the same order.
func (p *Pipeline) Clone() Operator {
	clone := &Pipeline{threadState: p.threadState, cliTokens: p.cliTokens}
	for op := p.firstOp; op != nil; op = op.NextOp() {
		clone.AppendOp(op.Clone())
	}
	return clone
}
