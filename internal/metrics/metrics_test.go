package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/metrics"
)

func TestNewRegistersDistinctInstances(t *testing.T) {
	a := metrics.New()
	b := metrics.New()
	require.NotNil(t, a.Registry)
	require.NotNil(t, b.Registry)
	assert.NotSame(t, a.Registry, b.Registry)
}

func TestForkWorkerCountersIncrement(t *testing.T) {
	m := metrics.New()
	m.ForkWorkersTotal.Add(3)
	m.ForkWorkersActive.Set(2)

	assert.InDelta(t, 3, testutil.ToFloat64(m.ForkWorkersTotal), 0.0001)
	assert.InDelta(t, 2, testutil.ToFloat64(m.ForkWorkersActive), 0.0001)
}

func TestMergeTuplesEmittedIsLabeledByStrategy(t *testing.T) {
	m := metrics.New()
	m.MergeTuplesEmitted.WithLabelValues("vanilla").Inc()
	m.MergeTuplesEmitted.WithLabelValues("priority_queue").Add(4)

	assert.InDelta(t, 1, testutil.ToFloat64(m.MergeTuplesEmitted.WithLabelValues("vanilla")), 0.0001)
	assert.InDelta(t, 4, testutil.ToFloat64(m.MergeTuplesEmitted.WithLabelValues("priority_queue")), 0.0001)
}

func TestDefaultReturnsSharedInstance(t *testing.T) {
	assert.Same(t, metrics.Default(), metrics.Default())
}
