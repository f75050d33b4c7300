package merge

import (
	"context"
	"fmt"
	"sync"

	"github.com/geophile/osh/internal/args"
	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/metrics"
	"github.com/geophile/osh/internal/pipeline"
	"github.com/geophile/osh/internal/priorityqueue"
)

// Merge combines the streams produced by a fork's worker copies. With no
// key function the merge is unordered: each worker's objects are sent
// downstream as they arrive, and completion waits for every worker to
// finish. With a key function, objects are interleaved in the order the
// key function imposes, using a priorityqueue.Queue fed by each worker
// and drained by a dedicated goroutine.
type Merge struct {
	pipeline.Base
	a      *args.Args
	keyFn  *function.Function
	key    func(object []interface{}) interface{}
}

// New builds a merge operator from an already-created key function value
// (the API surface equivalent of merge(key)). Pass nil for an unordered
// merge.
func New(key interface{}) (*Merge, error) {
	m := &Merge{}
	a, err := args.New(m, args.API, "", 0, 1)
	if err != nil {
		return nil, err
	}
	m.a = a
	if key != nil {
		if err := a.AddArg(key); err != nil {
			return nil, err
		}
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewCLI builds a merge operator from raw CLI tokens (an optional key
// function expression).
func NewCLI(tokens []string) (*Merge, error) {
	m := &Merge{}
	a, err := args.New(m, args.CLI, "", 0, 1)
	if err != nil {
		return nil, err
	}
	for _, t := range tokens {
		a.AddToken(t)
	}
	if err := a.Done(); err != nil {
		return nil, err
	}
	m.a = a
	return m, nil
}

func (m *Merge) String() string { return fmt.Sprintf("merge%s", m.a) }

// CreateCommandState is called once, on the pipeline template, before any
// fork worker copies are made, so every copy shares one State.
func (m *Merge) CreateCommandState(workerCount int) interface{} {
	return newState(workerCount)
}

func (m *Merge) Setup(ctx context.Context) error {
	keyFn, err := m.a.NextFunction()
	if err != nil {
		return err
	}
	m.keyFn = keyFn
	if keyFn != nil {
		m.key = func(object []interface{}) interface{} {
			v, callErr := keyFn.Call(object...)
			if callErr != nil {
				return nil
			}
			return v
		}
	}
	state, _ := m.CommandState().(*State)
	if state == nil {
		return fmt.Errorf("merge: no shared command state")
	}
	state.setup(ctx, m)
	return nil
}

// label returns the thread state a fork worker's pipeline clone was
// stamped with: the worker's label (an int, a sequence element, or a
// cluster.Host), used only as a key to this operator's private source
// index, below.
func (m *Merge) label() interface{} {
	if parent := m.Parent(); parent != nil {
		return parent.ThreadState()
	}
	return nil
}

func (m *Merge) Execute(ctx context.Context) error { return nil }

func (m *Merge) Receive(ctx context.Context, object interface{}) error {
	tuple, ok := object.([]interface{})
	if !ok {
		tuple = []interface{}{object}
	}
	state, _ := m.CommandState().(*State)
	return state.add(m.label(), tuple)
}

func (m *Merge) ReceiveComplete(ctx context.Context) error {
	state, _ := m.CommandState().(*State)
	state.done(m.label())
	return nil
}

func (m *Merge) ReplaceFunctionByReference(store *pipeline.FunctionStore) {
	m.a.ReplaceFunctionByReference(store)
}
func (m *Merge) RestoreFunction(store *pipeline.FunctionStore) {
	m.a.RestoreFunction(store)
}

func (m *Merge) Clone() pipeline.Operator {
	return &Merge{a: m.a.Clone()}
}

// State is the command state shared by every worker copy of a Merge
// operator: it owns whichever merger strategy setup picks (vanilla or
// priority-queue) based on whether a key function was supplied, and maps
// each worker's thread-state label to a small dense source index.
type State struct {
	workerCount int
	once        sync.Once
	merger      merger

	mu           sync.Mutex
	labelToSource map[interface{}]int
}

func newState(workerCount int) *State {
	return &State{workerCount: workerCount, labelToSource: map[interface{}]int{}}
}

func (s *State) setup(ctx context.Context, m *Merge) {
	s.once.Do(func() {
		if m.key != nil {
			s.merger = newPriorityQueueMerger(ctx, m, s.workerCount)
		} else {
			s.merger = newVanillaMerger(m, s.workerCount)
		}
	})
}

// sourceFor returns the dense index (first-seen order) assigned to label.
// Assignment order doesn't need to match worker creation order: each
// label consistently maps to the same source for its whole lifetime,
// which is all a merge needs.
func (s *State) sourceFor(label interface{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx, ok := s.labelToSource[label]; ok {
		return idx
	}
	idx := len(s.labelToSource)
	s.labelToSource[label] = idx
	return idx
}

func (s *State) add(label interface{}, object []interface{}) error {
	return s.merger.add(s.sourceFor(label), object)
}
func (s *State) done(label interface{}) { s.merger.done(s.sourceFor(label)) }

type merger interface {
	add(source int, object []interface{}) error
	done(source int)
}

// vanillaMerger passes objects through unordered, as they arrive, and
// signals completion once every worker has finished.
type vanillaMerger struct {
	mergeOp     *Merge
	mu          sync.Mutex
	ctx         context.Context
	activeCount int
}

func newVanillaMerger(mergeOp *Merge, workerCount int) *vanillaMerger {
	metrics.Default().MergeActiveSources.Add(float64(workerCount))
	return &vanillaMerger{mergeOp: mergeOp, activeCount: workerCount}
}

func (v *vanillaMerger) add(source int, object []interface{}) error {
	metrics.Default().MergeTuplesEmitted.WithLabelValues("vanilla").Inc()
	pipeline.Send(context.Background(), v.mergeOp, object)
	return nil
}

func (v *vanillaMerger) done(source int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	metrics.Default().MergeActiveSources.Dec()
	v.activeCount--
	if v.activeCount == 0 {
		pipeline.SendComplete(context.Background(), v.mergeOp)
	}
}

// priorityQueueMerger interleaves every worker's stream in the order
// imposed by the merge key, using a priorityqueue.Queue fed by add/done
// and drained by a background consumer goroutine.
type priorityQueueMerger struct {
	queue       *priorityqueue.Queue
	mu          sync.Mutex
	workerCount int
	doneCount   int
	wg          sync.WaitGroup
}

func newPriorityQueueMerger(ctx context.Context, mergeOp *Merge, workerCount int) *priorityQueueMerger {
	compare := func(a, b interface{}) int {
		ka := mergeOp.key(a.([]interface{}))
		kb := mergeOp.key(b.([]interface{}))
		return compareKeys(ka, kb)
	}
	pq := &priorityQueueMerger{queue: priorityqueue.New(compare, workerCount), workerCount: workerCount}
	metrics.Default().MergeActiveSources.Add(float64(workerCount))
	pq.wg.Add(1)
	go pq.consume(ctx, mergeOp)
	return pq
}

func (p *priorityQueueMerger) consume(ctx context.Context, mergeOp *Merge) {
	defer p.wg.Done()
	for {
		value, ok := p.queue.Next()
		if !ok {
			break
		}
		metrics.Default().MergeTuplesEmitted.WithLabelValues("priority_queue").Inc()
		pipeline.Send(ctx, mergeOp, value.([]interface{}))
	}
	pipeline.SendComplete(ctx, mergeOp)
}

func (p *priorityQueueMerger) add(source int, object []interface{}) error {
	if err := p.queue.Add(source, object); err != nil {
		return fmt.Errorf("merge: %w", err)
	}
	return nil
}

func (p *priorityQueueMerger) done(source int) {
	_ = p.queue.Done(source)
	p.mu.Lock()
	p.doneCount++
	allDone := p.doneCount == p.workerCount
	p.mu.Unlock()
	metrics.Default().MergeActiveSources.Dec()
	if allDone {
		p.wg.Wait()
		p.queue.Close()
	}
}

// compareKeys orders two merge keys, falling back to a string comparison
// for types that don't compare natively, since a key function may return
// values of mixed numeric and string type across workers.
func compareKeys(a, b interface{}) int {
	switch x := a.(type) {
	case int64:
		if y, ok := toInt64(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	case float64:
		if y, ok := toFloat64(b); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	case string:
		if y, ok := b.(string); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	as, bs := fmt.Sprintf("%v", a), fmt.Sprintf("%v", b)
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return 0
	}
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
