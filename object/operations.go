package object

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/cellscript/op"
)

var (
	// ErrDivisionByZero is returned for integer division by zero.
	ErrDivisionByZero = errors.New("integer division by zero")
	// ErrUnknownOperator is returned for an operator code outside the
	// defined set.
	ErrUnknownOperator = errors.New("unknown operator")
)

// BinaryOp performs an arithmetic operation. If either operand is a float
// both are coerced to float and the result is a float; otherwise booleans are
// coerced to 0/1 and the result is an integer.
func BinaryOp(opType op.BinaryOpType, a, b Value) (Value, error) {
	if a.IsFloat() || b.IsFloat() {
		x, y := a.AsFloat(), b.AsFloat()
		switch opType {
		case op.Add:
			return NewFloat(x + y), nil
		case op.Subtract:
			return NewFloat(x - y), nil
		case op.Multiply:
			return NewFloat(x * y), nil
		case op.Divide:
			return NewFloat(x / y), nil
		}
		return False, fmt.Errorf("%w: binary %d", ErrUnknownOperator, opType)
	}
	x, y := a.AsInt(), b.AsInt()
	switch opType {
	case op.Add:
		return NewInt(x + y), nil
	case op.Subtract:
		return NewInt(x - y), nil
	case op.Multiply:
		return NewInt(x * y), nil
	case op.Divide:
		if y == 0 {
			return False, ErrDivisionByZero
		}
		return NewInt(x / y), nil
	}
	return False, fmt.Errorf("%w: binary %d", ErrUnknownOperator, opType)
}

// Compare applies a comparison operator using the same numeric promotion as
// BinaryOp. The result is always a boolean.
func Compare(opType op.CompareOpType, a, b Value) (Value, error) {
	var c int
	if a.IsFloat() || b.IsFloat() {
		x, y := a.AsFloat(), b.AsFloat()
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		case x != y:
			// NaN compares false to everything except with !=
			return NewBool(opType == op.NotEqual), nil
		}
	} else {
		x, y := a.AsInt(), b.AsInt()
		switch {
		case x < y:
			c = -1
		case x > y:
			c = 1
		}
	}
	switch opType {
	case op.LessThan:
		return NewBool(c < 0), nil
	case op.LessThanOrEqual:
		return NewBool(c <= 0), nil
	case op.Equal:
		return NewBool(c == 0), nil
	case op.NotEqual:
		return NewBool(c != 0), nil
	case op.GreaterThan:
		return NewBool(c > 0), nil
	case op.GreaterThanOrEqual:
		return NewBool(c >= 0), nil
	}
	return False, fmt.Errorf("%w: compare %d", ErrUnknownOperator, opType)
}

// Not returns the logical negation of the value's truthiness.
func Not(v Value) Value {
	return NewBool(!v.IsTruthy())
}

// Negate returns the arithmetic negation. Floats stay floats; integers and
// booleans produce integers.
func Negate(v Value) Value {
	if v.IsFloat() {
		return NewFloat(-v.f)
	}
	return NewInt(-v.AsInt())
}

// Positive returns the value unchanged, except that booleans become 0 or 1.
func Positive(v Value) Value {
	if v.typ == BOOL {
		return NewInt(v.AsInt())
	}
	return v
}
