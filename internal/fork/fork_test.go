package fork_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/cluster"
	"github.com/geophile/osh/internal/errs"
	"github.com/geophile/osh/internal/fork"
	"github.com/geophile/osh/internal/ops"
	"github.com/geophile/osh/internal/pipeline"
)

type sink struct {
	mu       sync.Mutex
	objects  [][]interface{}
	complete int
}

func (s *sink) Receive(ctx context.Context, object interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, object.([]interface{}))
	return nil
}

func (s *sink) ReceiveComplete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.complete++
	return nil
}

func newGenCommand(t *testing.T, count int) pipeline.Operator {
	t.Helper()
	gen, err := ops.NewGen(&count, nil, nil)
	require.NoError(t, err)
	return gen
}

func TestForkRunsOneWorkerPerIntegerCount(t *testing.T) {
	command := newGenCommand(t, 2)
	f, err := fork.New(2, command, nil)
	require.NoError(t, err)

	out := &sink{}
	f.SetReceiver(out)

	require.NoError(t, f.Setup(context.Background()))
	require.NoError(t, f.Execute(context.Background()))
	require.NoError(t, f.ReceiveComplete(context.Background()))

	out.mu.Lock()
	defer out.mu.Unlock()
	assert.Len(t, out.objects, 4)
	assert.ElementsMatch(t, [][]interface{}{
		{0, 0}, {0, 1},
		{1, 0}, {1, 1},
	}, out.objects)
	assert.Equal(t, 1, out.complete)
}

func TestForkRunsOneWorkerPerSequenceElement(t *testing.T) {
	command := newGenCommand(t, 1)
	f, err := fork.New([]interface{}{"a", "b", "c"}, command, nil)
	require.NoError(t, err)

	out := &sink{}
	f.SetReceiver(out)

	require.NoError(t, f.Setup(context.Background()))
	require.NoError(t, f.Execute(context.Background()))

	out.mu.Lock()
	defer out.mu.Unlock()
	assert.Len(t, out.objects, 3)
}

func TestForkResolvesNamedCluster(t *testing.T) {
	cluster.Define("forktestcluster", "deploy", []cluster.Host{
		{Name: "h1", Address: "h1.example.com", User: "deploy"},
		{Name: "h2", Address: "h2.example.com", User: "deploy"},
	})

	command := newGenCommand(t, 1)
	f, err := fork.New("forktestcluster", command, nil)
	require.NoError(t, err)

	out := &sink{}
	f.SetReceiver(out)

	require.NoError(t, f.Setup(context.Background()))
	assert.Contains(t, f.String(), "_remote(")
}

func TestForkRejectsUnresolvableThreadGenerator(t *testing.T) {
	command := newGenCommand(t, 1)
	f, err := fork.New("no-such-cluster-or-function", command, nil)
	require.NoError(t, err)

	err = f.Setup(context.Background())
	assert.Error(t, err)
}

func TestForkReceiveIsRejected(t *testing.T) {
	command := newGenCommand(t, 1)
	f, err := fork.New(1, command, nil)
	require.NoError(t, err)
	err = f.Receive(context.Background(), []interface{}{1})
	assert.Error(t, err)
}

// orderViolatingGen emits (3) then (1): with an ascending merge key, the
// second tuple is out of order relative to the first.
type orderViolatingGen struct {
	pipeline.Base
}

func (g *orderViolatingGen) String() string                   { return "_orderViolatingGen()" }
func (g *orderViolatingGen) Setup(ctx context.Context) error   { return nil }
func (g *orderViolatingGen) Execute(ctx context.Context) error {
	pipeline.Send(ctx, g, []interface{}{int64(3)})
	pipeline.Send(ctx, g, []interface{}{int64(1)})
	pipeline.SendComplete(ctx, g)
	return nil
}
func (g *orderViolatingGen) Receive(ctx context.Context, object interface{}) error { return nil }
func (g *orderViolatingGen) ReceiveComplete(ctx context.Context) error             { return nil }
func (g *orderViolatingGen) ReplaceFunctionByReference(store *pipeline.FunctionStore) {}
func (g *orderViolatingGen) RestoreFunction(store *pipeline.FunctionStore)            {}
func (g *orderViolatingGen) Clone() pipeline.Operator                                 { return &orderViolatingGen{} }

// TestForkReportsMergeOrderingViolationAgainstWorker confirms a priority
// queue ordering violation raised while merging a worker's output is
// reported through errs.HandleException tagged with that worker's label,
// instead of being dropped silently at the merge layer.
func TestForkReportsMergeOrderingViolationAgainstWorker(t *testing.T) {
	var mu sync.Mutex
	var reported []string
	errs.SetExceptionHandler(func(err error, op fmt.Stringer, input interface{}, worker string) {
		mu.Lock()
		defer mu.Unlock()
		reported = append(reported, worker)
	})

	f, err := fork.New(1, &orderViolatingGen{}, "a, b: b")
	require.NoError(t, err)

	out := &sink{}
	f.SetReceiver(out)

	require.NoError(t, f.Setup(context.Background()))
	require.NoError(t, f.Execute(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	assert.Equal(t, "0", reported[0])
}
