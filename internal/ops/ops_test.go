package ops_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/function"
	"github.com/geophile/osh/internal/ops"
	"github.com/geophile/osh/internal/pipeline"
)

// sink is a minimal terminal operator that records every tuple it
// receives, for asserting on pipeline output in tests.
type sink struct {
	pipeline.Base
	received []interface{}
}

func (s *sink) String() string                     { return "sink" }
func (s *sink) Setup(ctx context.Context) error     { return nil }
func (s *sink) Execute(ctx context.Context) error   { return nil }
func (s *sink) ReceiveComplete(ctx context.Context) error { return nil }
func (s *sink) Clone() pipeline.Operator            { return &sink{} }
func (s *sink) Receive(ctx context.Context, object interface{}) error {
	tuple := object.([]interface{})
	if len(tuple) == 1 {
		s.received = append(s.received, tuple[0])
	} else {
		s.received = append(s.received, tuple)
	}
	return nil
}

func TestGenCountAndStart(t *testing.T) {
	count, start := 3, 10
	g, err := ops.NewGen(&count, &start, nil)
	require.NoError(t, err)

	s := &sink{}
	p := pipeline.NewPipeline(g)
	p.AppendOp(s)
	require.NoError(t, p.Setup(context.Background()))
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, []interface{}{10, 11, 12}, s.received)
}

func TestGenPadding(t *testing.T) {
	count, start, pad := 2, 9, 3
	g, err := ops.NewGen(&count, &start, &pad)
	require.NoError(t, err)

	s := &sink{}
	p := pipeline.NewPipeline(g)
	p.AppendOp(s)
	require.NoError(t, p.Setup(context.Background()))
	require.NoError(t, p.Execute(context.Background()))

	assert.Equal(t, []interface{}{"009", "010"}, s.received)
}

func TestFAppliesFunction(t *testing.T) {
	fn, err := function.New("x, y: x + y")
	require.NoError(t, err)
	f, err := ops.NewF(fn)
	require.NoError(t, err)

	s := &sink{}
	p := pipeline.NewPipeline(f)
	p.AppendOp(s)
	require.NoError(t, p.Setup(context.Background()))

	require.NoError(t, p.Receive(context.Background(), []interface{}{1, 2}))
	require.NoError(t, p.Receive(context.Background(), []interface{}{3, 4}))

	assert.Equal(t, []interface{}{int64(3), int64(7)}, toInt64s(s.received))
}

func TestFilterPassesOnlyTruthy(t *testing.T) {
	pred, err := function.New("x: x > 2")
	require.NoError(t, err)
	flt, err := ops.NewFilter(pred)
	require.NoError(t, err)

	s := &sink{}
	p := pipeline.NewPipeline(flt)
	p.AppendOp(s)
	require.NoError(t, p.Setup(context.Background()))

	require.NoError(t, p.Receive(context.Background(), []interface{}{1}))
	require.NoError(t, p.Receive(context.Background(), []interface{}{5}))

	assert.Equal(t, []interface{}{int64(5)}, toInt64s(s.received))
}

func toInt64s(vals []interface{}) []interface{} {
	out := make([]interface{}, len(vals))
	for i, v := range vals {
		if n, ok := v.(int); ok {
			out[i] = int64(n)
		} else {
			out[i] = v
		}
	}
	return out
}
