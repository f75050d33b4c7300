package function

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBareExpression(t *testing.T) {
	f, err := New("1 + 2")
	require.NoError(t, err)
	result, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, int64(3), result)
}

func TestArgsAndExpression(t *testing.T) {
	f, err := New("x: Math.max(x, 10)")
	require.NoError(t, err)

	result, err := f.Call(3)
	require.NoError(t, err)
	assert.Equal(t, int64(10), result)

	result, err = f.Call(20)
	require.NoError(t, err)
	assert.Equal(t, int64(20), result)
}

func TestLambdaPrefix(t *testing.T) {
	f, err := New("lambda x, y: x + y")
	require.NoError(t, err)
	result, err := f.Call(2, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result)
}

func TestLambdaColonZeroArgs(t *testing.T) {
	f, err := New("lambda: 42")
	require.NoError(t, err)
	result, err := f.Call()
	require.NoError(t, err)
	assert.Equal(t, int64(42), result)
}

func TestOperatorShorthand(t *testing.T) {
	cases := []struct {
		op       string
		x, y     int
		expected int64
	}{
		{"+", 2, 3, 5},
		{"*", 2, 3, 6},
		{"max", 2, 3, 3},
		{"min", 2, 3, 2},
	}
	for _, c := range cases {
		f, ok := FromOperator(c.op)
		require.True(t, ok, c.op)
		result, err := f.Call(c.x, c.y)
		require.NoError(t, err)
		assert.Equal(t, c.expected, result, c.op)
	}
}

func TestFromOperatorUnknown(t *testing.T) {
	_, ok := FromOperator("%")
	assert.False(t, ok)
}

func TestCreatePassesThroughExistingFunction(t *testing.T) {
	f, err := New("x: x")
	require.NoError(t, err)
	created, err := Create(f)
	require.NoError(t, err)
	assert.Same(t, f, created)
}

func TestCreateFromOperatorString(t *testing.T) {
	f, err := Create("+")
	require.NoError(t, err)
	result, err := f.Call(1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result)
}

func TestCreateRejectsNonFunction(t *testing.T) {
	_, err := Create(42)
	assert.Error(t, err)
}

func TestEmptyExpressionIsIllegal(t *testing.T) {
	_, err := New("x: ")
	require.Error(t, err)
	var notAFunction *NotAFunctionError
	assert.ErrorAs(t, err, &notAFunction)
}
