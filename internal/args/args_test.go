package args

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOp struct{ name string }

func (o fakeOp) String() string { return o.name }

func TestAPIModeBooleanAndValueFlags(t *testing.T) {
	a, err := New(fakeOp{"gen"}, API, "v:x", 0, Unbounded)
	require.NoError(t, err)

	require.NoError(t, a.AddArg(NewValueOption("-v", 5)))
	require.NoError(t, a.AddArg(NewOption("-x")))
	require.NoError(t, a.AddArg("hello"))
	require.NoError(t, a.Done())

	n, ok := a.IntArg("-v")
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	assert.True(t, a.Flag("-x"))

	s, ok := a.NextString()
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
	assert.False(t, a.HasNext())
}

func TestMultiflagExpansion(t *testing.T) {
	a, err := New(fakeOp{"ls"}, API, "abc", 0, Unbounded)
	require.NoError(t, err)
	require.NoError(t, a.AddArg(NewOption("-abc")))
	assert.True(t, a.Flag("-a"))
	assert.True(t, a.Flag("-b"))
	assert.True(t, a.Flag("-c"))
}

func TestUnknownFlagRejected(t *testing.T) {
	a, err := New(fakeOp{"gen"}, API, "x", 0, Unbounded)
	require.NoError(t, err)
	assert.Error(t, a.AddArg(NewOption("-z")))
}

func TestArityEnforced(t *testing.T) {
	a, err := New(fakeOp{"f"}, API, "", 1, 1)
	require.NoError(t, err)
	assert.Error(t, a.Done())

	require.NoError(t, a.AddArg("x: x"))
	require.NoError(t, a.Done())

	require.NoError(t, a.AddArg("extra"))
	assert.Error(t, a.Done())
}

func TestIllegalFlagSpecDanglingColon(t *testing.T) {
	_, err := New(fakeOp{"gen"}, API, "v::", 0, 0)
	assert.Error(t, err)
}

func TestCLITokenStateMachine(t *testing.T) {
	a, err := New(fakeOp{"gen"}, CLI, "v:xyz", 0, Unbounded)
	require.NoError(t, err)
	a.AddToken("-v")
	a.AddToken("5")
	a.AddToken("-xy")
	a.AddToken("hello")
	require.NoError(t, a.Done())

	n, ok := a.IntArg("-v")
	assert.True(t, ok)
	assert.Equal(t, 5, n)
	assert.True(t, a.Flag("-x"))
	assert.True(t, a.Flag("-y"))

	s, ok := a.NextString()
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestNextFunctionCreatesCallable(t *testing.T) {
	a, err := New(fakeOp{"select"}, API, "", 1, 1)
	require.NoError(t, err)
	require.NoError(t, a.AddArg("x: x + 1"))
	require.NoError(t, a.Done())

	f, err := a.NextFunction()
	require.NoError(t, err)
	require.NotNil(t, f)
	result, err := f.Call(41)
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
}

func TestRemaining(t *testing.T) {
	a, err := New(fakeOp{"cat"}, API, "", 0, Unbounded)
	require.NoError(t, err)
	require.NoError(t, a.AddArg("a"))
	require.NoError(t, a.AddArg("b"))
	require.NoError(t, a.AddArg("c"))
	require.NoError(t, a.Done())

	_, _ = a.NextString()
	rest := a.Remaining()
	assert.Equal(t, []interface{}{"b", "c"}, rest)
	assert.False(t, a.HasNext())
}
