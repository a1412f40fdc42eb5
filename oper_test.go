package jitson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyBinaryEquality(t *testing.T) {
	a, err := ParseString(`{"x": 1}`, Strict)
	require.NoError(t, err)
	b, err := ParseString(`{"x": 1}`, Strict)
	require.NoError(t, err)
	c, err := ParseString(`{"x": 2}`, Strict)
	require.NoError(t, err)

	eq, err := ApplyBinary("==", a.Root(), b.Root())
	require.NoError(t, err)
	require.True(t, eq.GetBool())

	neq, err := ApplyBinary("==", a.Root(), c.Root())
	require.NoError(t, err)
	require.False(t, neq.GetBool())
}

func TestApplyBinaryAddition(t *testing.T) {
	a, _ := ParseString(`3`, Strict)
	b, _ := ParseString(`4`, Strict)
	sum, err := ApplyBinary("+", a.Root(), b.Root())
	require.NoError(t, err)
	require.Equal(t, float64(7), sum.GetFloat())
}

func TestApplyBinaryStringConcat(t *testing.T) {
	a, _ := ParseString(`"foo"`, Strict)
	b, _ := ParseString(`"bar"`, Strict)
	out, err := ApplyBinary("+", a.Root(), b.Root())
	require.NoError(t, err)
	require.Equal(t, "foobar", out.GetString())
}

func TestApplyUnaryNegation(t *testing.T) {
	n, _ := ParseString(`5`, Strict)
	neg, err := ApplyUnary("-", n.Root())
	require.NoError(t, err)
	require.Equal(t, float64(-5), neg.GetFloat())
}

func TestApplyUnaryUnsupportedType(t *testing.T) {
	s, _ := ParseString(`"x"`, Strict)
	_, err := ApplyUnary("-", s.Root())
	require.Error(t, err)
}

func TestApplyUnknownOperator(t *testing.T) {
	n, _ := ParseString(`5`, Strict)
	_, err := ApplyUnary("~nonexistent~", n.Root())
	require.Error(t, err)
}

func TestOperatorTypeOverride(t *testing.T) {
	require.NoError(t, RegisterUnary("double", func(v Value) (Value, error) {
		return Value{}, ErrOpNotSupported
	}))
	require.NoError(t, AddUnaryToType("double", TypeNumber, func(v Value) (Value, error) {
		s := NewStack(1)
		s.AddNumber(v.GetFloat() * 2)
		return s.extractValue()
	}))

	n, _ := ParseString(`21`, Strict)
	out, err := ApplyUnary("double", n.Root())
	require.NoError(t, err)
	require.Equal(t, float64(42), out.GetFloat())
}
