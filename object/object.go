// Package object provides the runtime value model of cellscript.
//
// A Value is a small tagged union holding a boolean, a 64-bit integer, or a
// 64-bit float. Values are copied, never shared, so the virtual machine needs
// no garbage collection or reference counting.
//
// Functions are not a separate type: a function value is an Int holding the
// entry instruction index of the function body.
package object

import (
	"fmt"
	"strconv"
)

// Type identifies which field of a Value is meaningful.
type Type uint8

// Type constants
const (
	BOOL Type = iota
	INT
	FLOAT
)

func (t Type) String() string {
	switch t {
	case BOOL:
		return "bool"
	case INT:
		return "int"
	case FLOAT:
		return "float"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Value is a cellscript runtime value. The zero Value is false.
type Value struct {
	typ Type
	b   bool
	i   int64
	f   float64
}

var (
	True  = Value{typ: BOOL, b: true}
	False = Value{typ: BOOL}
)

// NewBool returns a boolean value.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewInt returns an integer value.
func NewInt(i int64) Value {
	return Value{typ: INT, i: i}
}

// NewFloat returns a float value.
func NewFloat(f float64) Value {
	return Value{typ: FLOAT, f: f}
}

// Type returns the value's type tag.
func (v Value) Type() Type { return v.typ }

// IsFloat reports whether the value is a float.
func (v Value) IsFloat() bool { return v.typ == FLOAT }

// Bool returns the boolean payload. It is only meaningful for BOOL values.
func (v Value) Bool() bool { return v.b }

// Int returns the integer payload. It is only meaningful for INT values.
func (v Value) Int() int64 { return v.i }

// Float returns the float payload. It is only meaningful for FLOAT values.
func (v Value) Float() float64 { return v.f }

// IsTruthy coerces the value to a boolean: false, 0 and 0.0 are false,
// everything else is true.
func (v Value) IsTruthy() bool {
	switch v.typ {
	case INT:
		return v.i != 0
	case FLOAT:
		return v.f != 0
	default:
		return v.b
	}
}

// AsInt coerces the value to an integer. Booleans become 0 or 1 and floats
// are truncated toward zero.
func (v Value) AsInt() int64 {
	switch v.typ {
	case INT:
		return v.i
	case FLOAT:
		return int64(v.f)
	default:
		if v.b {
			return 1
		}
		return 0
	}
}

// AsFloat coerces the value to a float.
func (v Value) AsFloat() float64 {
	if v.typ == FLOAT {
		return v.f
	}
	return float64(v.AsInt())
}

// String formats the value the way PRINT writes it: true/false, decimal
// integers, and floats with nine fractional digits.
func (v Value) String() string {
	switch v.typ {
	case INT:
		return strconv.FormatInt(v.i, 10)
	case FLOAT:
		return strconv.FormatFloat(v.f, 'f', 9, 64)
	default:
		return strconv.FormatBool(v.b)
	}
}

// Interface returns the payload as a Go value.
func (v Value) Interface() any {
	switch v.typ {
	case INT:
		return v.i
	case FLOAT:
		return v.f
	default:
		return v.b
	}
}

// FromInterface converts a Go bool, integer, or float to a Value.
func FromInterface(x any) (Value, error) {
	switch x := x.(type) {
	case bool:
		return NewBool(x), nil
	case int:
		return NewInt(int64(x)), nil
	case int64:
		return NewInt(x), nil
	case uint64:
		return NewInt(int64(x)), nil
	case float64:
		return NewFloat(x), nil
	default:
		return False, fmt.Errorf("cannot convert %T to a value", x)
	}
}
