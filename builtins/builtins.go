// Package builtins defines the fixed table of built-in functions. Built-ins
// are addressed by their index in the table, which the compiler embeds in
// CALL_BUILTIN instructions.
package builtins

import (
	"context"
	"fmt"

	"github.com/deepnoodle-ai/cellscript/object"
)

// Variadic marks a built-in with no upper bound on its argument count.
const Variadic = -1

// Func is the Go implementation of a built-in.
type Func func(ctx context.Context, args ...object.Value) (object.Value, error)

// Builtin describes one entry of the table.
type Builtin struct {
	Name    string
	Doc     string
	Args    []string
	MinArgs int
	MaxArgs int // Variadic when unbounded
	Fn      Func
}

// CheckArity returns an error when argc is outside the accepted range.
func (b Builtin) CheckArity(argc int) error {
	if argc < b.MinArgs {
		if b.MaxArgs == b.MinArgs {
			return fmt.Errorf("%s: expected %d argument(s), got %d", b.Name, b.MinArgs, argc)
		}
		return fmt.Errorf("%s: expected at least %d argument(s), got %d", b.Name, b.MinArgs, argc)
	}
	if b.MaxArgs != Variadic && argc > b.MaxArgs {
		return fmt.Errorf("%s: expected %d argument(s), got %d", b.Name, b.MaxArgs, argc)
	}
	return nil
}

var table = []Builtin{
	{
		Name:    "abs",
		Doc:     "Return the absolute value of a number, keeping floats as floats",
		Args:    []string{"x"},
		MinArgs: 1,
		MaxArgs: 1,
		Fn:      Abs,
	},
	{
		Name:    "min",
		Doc:     "Return the smallest argument",
		Args:    []string{"x", "..."},
		MinArgs: 1,
		MaxArgs: Variadic,
		Fn:      Min,
	},
	{
		Name:    "max",
		Doc:     "Return the largest argument",
		Args:    []string{"x", "..."},
		MinArgs: 1,
		MaxArgs: Variadic,
		Fn:      Max,
	},
}

var index = func() map[string]int {
	m := make(map[string]int, len(table))
	for i, b := range table {
		m[b.Name] = i
	}
	return m
}()

// Lookup returns the table index of the named built-in.
func Lookup(name string) (int, bool) {
	i, ok := index[name]
	return i, ok
}

// Get returns the built-in at the given index.
func Get(i int) (Builtin, bool) {
	if i < 0 || i >= len(table) {
		return Builtin{}, false
	}
	return table[i], true
}

// Names returns the built-in names in table order.
func Names() []string {
	names := make([]string, len(table))
	for i, b := range table {
		names[i] = b.Name
	}
	return names
}

// All returns a copy of the table.
func All() []Builtin {
	return append([]Builtin(nil), table...)
}

// Abs returns the absolute value of its argument. A float stays a float;
// integers and booleans produce an integer.
func Abs(ctx context.Context, args ...object.Value) (object.Value, error) {
	if len(args) != 1 {
		return object.False, fmt.Errorf("abs: expected 1 argument, got %d", len(args))
	}
	v := args[0]
	if v.IsFloat() {
		f := v.Float()
		if f < 0 {
			f = -f
		}
		return object.NewFloat(f), nil
	}
	i := v.AsInt()
	if i < 0 {
		i = -i
	}
	return object.NewInt(i), nil
}

// Min returns the smallest argument. The result is an integer while every
// argument seen so far is an integer or boolean, and switches to a float at
// the first float argument.
func Min(ctx context.Context, args ...object.Value) (object.Value, error) {
	return reduce("min", args, false)
}

// Max returns the largest argument, with the same promotion rule as Min.
func Max(ctx context.Context, args ...object.Value) (object.Value, error) {
	return reduce("max", args, true)
}

func reduce(name string, args []object.Value, greatest bool) (object.Value, error) {
	if len(args) == 0 {
		return object.False, fmt.Errorf("%s: expected at least 1 argument, got 0", name)
	}
	var (
		isFloat bool
		best    int64
		bestF   float64
	)
	for i, arg := range args {
		if !isFloat && !arg.IsFloat() {
			n := arg.AsInt()
			if i == 0 || (greatest && n > best) || (!greatest && n < best) {
				best = n
			}
			continue
		}
		if !isFloat {
			isFloat = true
			bestF = float64(best)
		}
		g := arg.AsFloat()
		if i == 0 || (greatest && g > bestF) || (!greatest && g < bestF) {
			bestF = g
		}
	}
	if isFloat {
		return object.NewFloat(bestF), nil
	}
	return object.NewInt(best), nil
}
