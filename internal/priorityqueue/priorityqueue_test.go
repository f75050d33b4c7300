package priorityqueue_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geophile/osh/internal/priorityqueue"
)

func intCompare(a, b interface{}) int {
	x, y := a.(int), b.(int)
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func drain(t *testing.T, q *priorityqueue.Queue) []int {
	t.Helper()
	var out []int
	for {
		v, ok := q.Next()
		if !ok {
			break
		}
		out = append(out, v.(int))
	}
	return out
}

func TestMergesThreeSortedInputs(t *testing.T) {
	q := priorityqueue.New(intCompare, 3)
	defer q.Close()

	inputs := [][]int{
		{1, 4, 9},
		{2, 3},
		{0, 5, 6, 7},
	}
	for source, values := range inputs {
		for _, v := range values {
			require.NoError(t, q.Add(source, v))
		}
		require.NoError(t, q.Done(source))
	}

	got := drain(t, q)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 9}, got)
}

func TestHandlesNonPowerOfTwoInputCount(t *testing.T) {
	q := priorityqueue.New(intCompare, 3)
	defer q.Close()

	require.NoError(t, q.Add(0, 10))
	require.NoError(t, q.Done(0))
	require.NoError(t, q.Add(1, 20))
	require.NoError(t, q.Done(1))
	require.NoError(t, q.Add(2, 15))
	require.NoError(t, q.Done(2))

	assert.Equal(t, []int{10, 15, 20}, drain(t, q))
}

func TestEmptyInputsYieldNothing(t *testing.T) {
	q := priorityqueue.New(intCompare, 2)
	defer q.Close()

	require.NoError(t, q.Done(0))
	require.NoError(t, q.Done(1))

	_, ok := q.Next()
	assert.False(t, ok)
}

func TestDoneThenAddIsRejected(t *testing.T) {
	q := priorityqueue.New(intCompare, 1)
	defer q.Close()

	require.NoError(t, q.Done(0))
	err := q.Add(0, 1)
	assert.Error(t, err)
}

func TestOutOfOrderInputIsRejected(t *testing.T) {
	q := priorityqueue.New(intCompare, 1)
	defer q.Close()

	require.NoError(t, q.Add(0, 5))
	err := q.Add(0, 3)
	assert.Error(t, err)
}

func TestSingleInputPassesThrough(t *testing.T) {
	q := priorityqueue.New(intCompare, 1)
	defer q.Close()

	for _, v := range []int{1, 2, 3} {
		require.NoError(t, q.Add(0, v))
	}
	require.NoError(t, q.Done(0))

	assert.Equal(t, []int{1, 2, 3}, drain(t, q))
}
