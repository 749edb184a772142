package object

import (
	"math"
	"testing"

	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/stretchr/testify/require"
)

func TestZeroValueIsFalse(t *testing.T) {
	var v Value
	require.Equal(t, BOOL, v.Type())
	require.False(t, v.IsTruthy())
	require.Equal(t, False, v)
	require.Equal(t, "false", v.String())
}

func TestString(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{True, "true"},
		{False, "false"},
		{NewInt(42), "42"},
		{NewInt(-7), "-7"},
		{NewFloat(2.5), "2.500000000"},
		{NewFloat(3.14), "3.140000000"},
		{NewFloat(-0.5), "-0.500000000"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.v.String())
	}
}

func TestTruthiness(t *testing.T) {
	require.True(t, NewInt(3).IsTruthy())
	require.False(t, NewInt(0).IsTruthy())
	require.True(t, NewFloat(0.1).IsTruthy())
	require.False(t, NewFloat(0).IsTruthy())
	require.True(t, True.IsTruthy())
}

func TestCoercions(t *testing.T) {
	require.Equal(t, int64(1), True.AsInt())
	require.Equal(t, int64(0), False.AsInt())
	require.Equal(t, int64(2), NewFloat(2.9).AsInt())
	require.Equal(t, 1.0, True.AsFloat())
	require.Equal(t, 5.0, NewInt(5).AsFloat())
}

func TestInterfaceRoundTrip(t *testing.T) {
	for _, v := range []Value{True, NewInt(9), NewFloat(1.25)} {
		got, err := FromInterface(v.Interface())
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
	_, err := FromInterface("nope")
	require.Error(t, err)
}

func TestBinaryOp(t *testing.T) {
	tests := []struct {
		name string
		op   op.BinaryOpType
		a, b Value
		want Value
	}{
		{"int add", op.Add, NewInt(2), NewInt(3), NewInt(5)},
		{"int sub", op.Subtract, NewInt(2), NewInt(3), NewInt(-1)},
		{"int mul", op.Multiply, NewInt(4), NewInt(3), NewInt(12)},
		{"int div truncates", op.Divide, NewInt(7), NewInt(2), NewInt(3)},
		{"int div negative truncates toward zero", op.Divide, NewInt(-7), NewInt(2), NewInt(-3)},
		{"float promotes left", op.Add, NewFloat(1.5), NewInt(1), NewFloat(2.5)},
		{"float promotes right", op.Multiply, NewInt(2), NewFloat(0.25), NewFloat(0.5)},
		{"bool coerces to int", op.Add, True, True, NewInt(2)},
		{"bool with float", op.Add, True, NewFloat(0.5), NewFloat(1.5)},
		{"float div", op.Divide, NewFloat(1), NewFloat(4), NewFloat(0.25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BinaryOp(tt.op, tt.a, tt.b)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBinaryOpDivisionByZero(t *testing.T) {
	_, err := BinaryOp(op.Divide, NewInt(1), NewInt(0))
	require.ErrorIs(t, err, ErrDivisionByZero)

	_, err = BinaryOp(op.Divide, NewInt(1), False)
	require.ErrorIs(t, err, ErrDivisionByZero)

	got, err := BinaryOp(op.Divide, NewFloat(1), NewInt(0))
	require.NoError(t, err)
	require.True(t, math.IsInf(got.Float(), 1))
}

func TestBinaryOpUnknown(t *testing.T) {
	_, err := BinaryOp(op.BinaryOpType(42), NewInt(1), NewInt(1))
	require.ErrorIs(t, err, ErrUnknownOperator)
	_, err = BinaryOp(op.BinaryOpType(42), NewFloat(1), NewInt(1))
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		op   op.CompareOpType
		a, b Value
		want bool
	}{
		{"lt", op.LessThan, NewInt(1), NewInt(2), true},
		{"le equal", op.LessThanOrEqual, NewInt(2), NewInt(2), true},
		{"gt", op.GreaterThan, NewInt(1), NewInt(2), false},
		{"ge", op.GreaterThanOrEqual, NewFloat(2.5), NewInt(2), true},
		{"eq mixed", op.Equal, NewInt(2), NewFloat(2.0), true},
		{"ne", op.NotEqual, NewInt(2), NewInt(3), true},
		{"bool eq int", op.Equal, True, NewInt(1), true},
		{"nan eq", op.Equal, NewFloat(math.NaN()), NewFloat(math.NaN()), false},
		{"nan ne", op.NotEqual, NewFloat(math.NaN()), NewInt(1), true},
		{"nan lt", op.LessThan, NewFloat(math.NaN()), NewInt(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.op, tt.a, tt.b)
			require.NoError(t, err)
			require.Equal(t, BOOL, got.Type())
			require.Equal(t, tt.want, got.Bool())
		})
	}
	_, err := Compare(op.CompareOpType(0), NewInt(1), NewInt(1))
	require.ErrorIs(t, err, ErrUnknownOperator)
}

func TestUnary(t *testing.T) {
	require.Equal(t, True, Not(NewInt(0)))
	require.Equal(t, False, Not(NewFloat(2)))
	require.Equal(t, NewInt(-3), Negate(NewInt(3)))
	require.Equal(t, NewFloat(-1.5), Negate(NewFloat(1.5)))
	require.Equal(t, NewInt(-1), Negate(True))
	require.Equal(t, NewInt(4), Positive(NewInt(4)))
	require.Equal(t, NewFloat(4), Positive(NewFloat(4)))
	require.Equal(t, NewInt(1), Positive(True))
}
