package compiler

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type instr = op.Instruction

func compileTree(t *testing.T, build func(a *ast.Arena) ast.Ref, opts ...Option) *bytecode.Code {
	t.Helper()
	a := ast.New()
	code, err := Compile(a, build(a), opts...)
	require.NoError(t, err)
	return code
}

func compileErr(t *testing.T, build func(a *ast.Arena) ast.Ref, opts ...Option) *errz.Error {
	t.Helper()
	a := ast.New()
	_, err := Compile(a, build(a), opts...)
	require.Error(t, err)
	var e *errz.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errz.CompilePhase, e.Phase)
	return e
}

func instructions(code *bytecode.Code) []instr {
	out := make([]instr, code.InstructionCount())
	for i := range out {
		out[i] = code.InstructionAt(i)
	}
	return out
}

func constants(code *bytecode.Code) []object.Value {
	out := make([]object.Value, code.ConstantCount())
	for i := range out {
		out[i] = code.ConstantAt(i)
	}
	return out
}

func TestAssignAndPrint(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewAssign("x", a.NewInt("5")),
			a.NewPrint(a.NewBinary(ast.Add, a.NewIdent("x"), a.NewInt("1"))),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.StoreGlobal, A: 0},
		{Op: op.LoadGlobal, A: 0},
		{Op: op.LoadConst, A: 1},
		{Op: op.BinaryOp, A: int16(op.Add)},
		{Op: op.Print},
	}, instructions(code))
	require.Equal(t, []object.Value{object.NewInt(5), object.NewInt(1)}, constants(code))
	require.Equal(t, []string{"x"}, code.GlobalNames())
}

func TestIfElse(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(a.NewIf(
			a.NewBool(true),
			a.NewStatements(a.NewPrint(a.NewInt("1"))),
			a.NewStatements(a.NewPrint(a.NewInt("2"))),
		))
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.PopJumpIfFalse, A: 3},
		{Op: op.LoadConst, A: 1},
		{Op: op.Print},
		{Op: op.Jump, A: 2},
		{Op: op.LoadConst, A: 2},
		{Op: op.Print},
	}, instructions(code))
}

func TestIfWithoutElse(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewIf(a.NewBool(false), a.NewStatements(a.NewPrint(a.NewInt("1"))), ast.NoRef),
			a.NewPrint(a.NewInt("2")),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.PopJumpIfFalse, A: 2},
		{Op: op.LoadConst, A: 1},
		{Op: op.Print},
		{Op: op.LoadConst, A: 2},
		{Op: op.Print},
	}, instructions(code))
}

func TestElseIfChain(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		inner := a.NewIf(a.NewBool(false), a.NewStatements(a.NewPrint(a.NewInt("2"))), ast.NoRef)
		return a.NewStatements(
			a.NewIf(a.NewBool(false), a.NewStatements(a.NewPrint(a.NewInt("1"))), inner),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.PopJumpIfFalse, A: 3},
		{Op: op.LoadConst, A: 1},
		{Op: op.Print},
		{Op: op.Jump, A: 4},
		{Op: op.LoadConst, A: 2},
		{Op: op.PopJumpIfFalse, A: 2},
		{Op: op.LoadConst, A: 3},
		{Op: op.Print},
	}, instructions(code))
}

func TestWhile(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewAssign("i", a.NewInt("0")),
			a.NewWhile(
				a.NewBinary(ast.Lt, a.NewIdent("i"), a.NewInt("3")),
				a.NewStatements(a.NewAssign("i", a.NewBinary(ast.Add, a.NewIdent("i"), a.NewInt("1")))),
			),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.StoreGlobal, A: 0},
		{Op: op.LoadGlobal, A: 0},
		{Op: op.LoadConst, A: 1},
		{Op: op.CompareOp, A: int16(op.LessThan)},
		{Op: op.PopJumpIfFalse, A: 5},
		{Op: op.LoadGlobal, A: 0},
		{Op: op.LoadConst, A: 2},
		{Op: op.BinaryOp, A: int16(op.Add)},
		{Op: op.StoreGlobal, A: 0},
		{Op: op.Jump, A: -9},
	}, instructions(code))
}

func TestShortCircuit(t *testing.T) {
	tests := []struct {
		operator ast.Operator
		jump     op.Code
	}{
		{ast.And, op.JumpIfFalseKeep},
		{ast.Or, op.JumpIfTrueKeep},
	}
	for _, tt := range tests {
		t.Run(tt.operator.String(), func(t *testing.T) {
			code := compileTree(t, func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.NewPrint(a.NewBinary(tt.operator, a.NewBool(true), a.NewBool(false))))
			})
			require.Equal(t, []instr{
				{Op: op.LoadConst, A: 0},
				{Op: tt.jump, A: 2},
				{Op: op.PopTop},
				{Op: op.LoadConst, A: 1},
				{Op: op.Print},
			}, instructions(code))
		})
	}
}

func TestOperators(t *testing.T) {
	tests := []struct {
		operator ast.Operator
		want     instr
	}{
		{ast.Add, instr{Op: op.BinaryOp, A: int16(op.Add)}},
		{ast.Sub, instr{Op: op.BinaryOp, A: int16(op.Subtract)}},
		{ast.Mul, instr{Op: op.BinaryOp, A: int16(op.Multiply)}},
		{ast.Div, instr{Op: op.BinaryOp, A: int16(op.Divide)}},
		{ast.Gt, instr{Op: op.CompareOp, A: int16(op.GreaterThan)}},
		{ast.Ge, instr{Op: op.CompareOp, A: int16(op.GreaterThanOrEqual)}},
		{ast.Eq, instr{Op: op.CompareOp, A: int16(op.Equal)}},
		{ast.Ne, instr{Op: op.CompareOp, A: int16(op.NotEqual)}},
		{ast.Lt, instr{Op: op.CompareOp, A: int16(op.LessThan)}},
		{ast.Le, instr{Op: op.CompareOp, A: int16(op.LessThanOrEqual)}},
	}
	for _, tt := range tests {
		t.Run(tt.operator.String(), func(t *testing.T) {
			code := compileTree(t, func(a *ast.Arena) ast.Ref {
				return a.NewBinary(tt.operator, a.NewInt("1"), a.NewInt("2"))
			})
			require.Equal(t, tt.want, code.InstructionAt(2))
		})
	}
}

func TestUnaryOperators(t *testing.T) {
	tests := []struct {
		operator ast.Operator
		want     op.Code
	}{
		{ast.Not, op.UnaryNot},
		{ast.Pos, op.UnaryPositive},
		{ast.Neg, op.UnaryNegative},
	}
	for _, tt := range tests {
		code := compileTree(t, func(a *ast.Arena) ast.Ref {
			return a.NewUnary(tt.operator, a.NewFloat("1.5"))
		})
		require.Equal(t, []instr{{Op: op.LoadConst}, {Op: tt.want}, {Op: op.Print}}, instructions(code))
		require.Equal(t, object.NewFloat(1.5), code.ConstantAt(0))
	}
}

func TestBareExpressionRootIsPrinted(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewBinary(ast.Add, a.NewInt("1"), a.NewInt("2"))
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.LoadConst, A: 1},
		{Op: op.BinaryOp, A: int16(op.Add)},
		{Op: op.Print},
	}, instructions(code))
}

func TestEmptyProgram(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref { return ast.NoRef })
	require.Equal(t, 0, code.InstructionCount())
	code = compileTree(t, func(a *ast.Arena) ast.Ref { return a.NewStatements() })
	require.Equal(t, 0, code.InstructionCount())
}

func TestBuiltinCall(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewCall("abs", a.NewInt("-1")),
			a.NewPrint(a.NewCall("max", a.NewInt("1"), a.NewInt("2"), a.NewFloat("2.5"))),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.CallBuiltin, A: 0, B: 1},
		{Op: op.PopTop},
		{Op: op.LoadConst, A: 1},
		{Op: op.LoadConst, A: 2},
		{Op: op.LoadConst, A: 3},
		{Op: op.CallBuiltin, A: 2, B: 3},
		{Op: op.Print},
	}, instructions(code))
}

func TestFunctionLayout(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewFunction("f", []string{"a", "b"}, a.NewStatements(
				a.NewReturn(a.NewBinary(ast.Sub, a.NewIdent("a"), a.NewIdent("b"))),
			)),
			a.NewPrint(a.NewCall("f", a.NewInt("10"), a.NewInt("3"))),
		)
	})
	require.Equal(t, []instr{
		{Op: op.Jump, A: 9},
		{Op: op.AllocFrame, A: 2, B: 2},
		{Op: op.BindParam, A: 1},
		{Op: op.BindParam, A: 0},
		{Op: op.LoadLocal, A: 0},
		{Op: op.LoadLocal, A: 1},
		{Op: op.BinaryOp, A: int16(op.Subtract)},
		{Op: op.Jump, A: 1},
		{Op: op.LoadConst, A: 0},
		{Op: op.Return},
		{Op: op.LoadConst, A: 1},
		{Op: op.StoreGlobal, A: 0},
		{Op: op.LoadConst, A: 2},
		{Op: op.LoadConst, A: 3},
		{Op: op.CallGlobal, A: 0, B: 2},
		{Op: op.Print},
	}, instructions(code))
	require.Equal(t, []object.Value{
		object.False, object.NewInt(1), object.NewInt(10), object.NewInt(3),
	}, constants(code))

	fn, ok := code.FunctionByEntry(1)
	require.True(t, ok)
	require.Equal(t, "f", fn.Name())
	require.Equal(t, 10, fn.End())
	require.Equal(t, 2, fn.ParameterCount())
	require.Equal(t, "b", fn.LocalNameAt(1))
}

func TestFunctionLocalsAndFallThrough(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewAssign("g", a.NewInt("1")),
			a.NewFunction("f", nil, a.NewStatements(
				a.NewAssign("t", a.NewIdent("g")),
				a.NewPrint(a.NewIdent("t")),
			)),
		)
	})
	require.Equal(t, []instr{
		{Op: op.LoadConst, A: 0},
		{Op: op.StoreGlobal, A: 0},
		{Op: op.Jump, A: 7},
		{Op: op.AllocFrame, A: 1, B: 0},
		{Op: op.LoadGlobal, A: 0},
		{Op: op.StoreLocal, A: 0},
		{Op: op.LoadLocal, A: 0},
		{Op: op.Print},
		{Op: op.LoadConst, A: 1},
		{Op: op.Return},
		{Op: op.LoadConst, A: 2},
		{Op: op.StoreGlobal, A: 1},
	}, instructions(code))
	require.Equal(t, object.NewInt(3), code.ConstantAt(2))
}

func TestRecursionResolves(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewFunction("fact", []string{"n"}, a.NewStatements(
				a.NewIf(
					a.NewBinary(ast.Le, a.NewIdent("n"), a.NewInt("1")),
					a.NewStatements(a.NewReturn(a.NewInt("1"))),
					ast.NoRef,
				),
				a.NewReturn(a.NewBinary(ast.Mul, a.NewIdent("n"),
					a.NewCall("fact", a.NewBinary(ast.Sub, a.NewIdent("n"), a.NewInt("1"))))),
			)),
		)
	})
	found := false
	for _, in := range instructions(code) {
		if in.Op == op.CallGlobal {
			require.Equal(t, instr{Op: op.CallGlobal, A: 0, B: 1}, in)
			found = true
		}
	}
	require.True(t, found)
}

func TestNestedFunctionStoresLocal(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewFunction("outer", nil, a.NewStatements(
				a.NewFunction("inner", []string{"x"}, a.NewStatements(a.NewReturn(a.NewIdent("x")))),
				a.NewReturn(a.NewCall("inner", a.NewInt("4"))),
			)),
		)
	})
	var calls, localStores int
	for _, in := range instructions(code) {
		switch in.Op {
		case op.CallLocal:
			calls++
			require.Equal(t, instr{Op: op.CallLocal, A: 0, B: 1}, in)
		case op.StoreLocal:
			localStores++
		}
	}
	require.Equal(t, 1, calls)
	require.Equal(t, 1, localStores)
	require.Equal(t, 2, code.FunctionCount())
	outer, ok := code.FunctionByEntry(1)
	require.True(t, ok)
	require.Equal(t, "outer", outer.Name())
	require.Equal(t, 1, outer.LocalCount())
}

func TestReturnWithoutValue(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewFunction("f", nil, a.NewStatements(a.NewReturn(ast.NoRef)))
	})
	require.Equal(t, []instr{
		{Op: op.Jump, A: 5},
		{Op: op.AllocFrame, A: 0, B: 0},
		{Op: op.LoadConst, A: 0},
		{Op: op.Jump, A: 1},
		{Op: op.LoadConst, A: 1},
		{Op: op.Return},
		{Op: op.LoadConst, A: 2},
		{Op: op.StoreGlobal, A: 0},
	}, instructions(code))
	require.Equal(t, object.False, code.ConstantAt(0))
}

func TestNoPlaceholdersRemain(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewFunction("f", []string{"n"}, a.NewStatements(
				a.NewWhile(a.NewBool(true), a.NewStatements(
					a.NewIf(a.NewIdent("n"), a.NewStatements(a.NewReturn(a.NewIdent("n"))), a.NewStatements()),
				)),
			)),
			a.NewPrint(a.NewBinary(ast.Or, a.NewCall("f", a.NewInt("1")), a.NewBool(false))),
		)
	})
	for i, in := range instructions(code) {
		if op.IsJump(in.Op) || in.Op == op.AllocFrame {
			require.NotEqual(t, int16(Placeholder), in.A, "placeholder at %d", i)
		}
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  errz.Kind
		msg   string
		build func(a *ast.Arena) ast.Ref
	}{
		{
			name: "undefined variable",
			kind: errz.UnresolvedName,
			msg:  `compile error: unresolved name: undefined variable "y"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.NewPrint(a.NewIdent("y")))
			},
		},
		{
			name: "undefined function",
			kind: errz.UnresolvedCall,
			msg:  `compile error: unresolved call: undefined function "print_side_effect"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.NewCall("print_side_effect"))
			},
		},
		{
			name: "return outside function",
			kind: errz.InvalidReturn,
			msg:  "compile error: invalid return: return outside of a function",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.NewReturn(a.NewInt("1")))
			},
		},
		{
			name: "invalid int literal",
			kind: errz.InvalidLiteral,
			msg:  `compile error: invalid literal: invalid integer literal "12x"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewPrint(a.NewInt("12x"))
			},
		},
		{
			name: "int literal out of range",
			kind: errz.InvalidLiteral,
			msg:  `compile error: invalid literal: invalid integer literal "99999999999999999999"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewPrint(a.NewInt("99999999999999999999"))
			},
		},
		{
			name: "invalid float literal",
			kind: errz.InvalidLiteral,
			msg:  `compile error: invalid literal: invalid float literal "1.2.3"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewPrint(a.NewFloat("1.2.3"))
			},
		},
		{
			name: "unknown node kind",
			kind: errz.UnknownNode,
			msg:  "compile error: unknown node: unknown node kind Kind(99)",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.Add(ast.Node{Kind: ast.Kind(99)}))
			},
		},
		{
			name: "missing child",
			kind: errz.UnknownNode,
			msg:  "compile error: unknown node: missing node",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.NewPrint(ast.NoRef))
			},
		},
		{
			name: "branch cell at statement level",
			kind: errz.UnknownNode,
			msg:  "compile error: unknown node: unknown node kind Branch",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(a.Add(ast.Node{Kind: ast.Branch}))
			},
		},
		{
			name: "unknown binary operator",
			kind: errz.UnknownOperator,
			msg:  "compile error: unknown operator: unknown binary operator not",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewBinary(ast.Not, a.NewInt("1"), a.NewInt("2"))
			},
		},
		{
			name: "unknown unary operator",
			kind: errz.UnknownOperator,
			msg:  "compile error: unknown operator: unknown unary operator *",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewUnary(ast.Mul, a.NewInt("1"))
			},
		},
		{
			name: "builtin arity",
			kind: errz.ArityMismatch,
			msg:  "compile error: arity mismatch: abs: expected 1 argument(s), got 2",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewCall("abs", a.NewInt("1"), a.NewInt("2"))
			},
		},
		{
			name: "variadic builtin with no arguments",
			kind: errz.ArityMismatch,
			msg:  "compile error: arity mismatch: min: expected at least 1 argument(s), got 0",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewCall("min")
			},
		},
		{
			name: "user function arity",
			kind: errz.ArityMismatch,
			msg:  "compile error: arity mismatch: f: expected 1 argument(s), got 2",
			build: func(a *ast.Arena) ast.Ref {
				return a.NewStatements(
					a.NewFunction("f", []string{"x"}, a.NewStatements()),
					a.NewCall("f", a.NewInt("1"), a.NewInt("2")),
				)
			},
		},
		{
			name: "locals of an enclosing function are not visible",
			kind: errz.UnresolvedName,
			msg:  `compile error: unresolved name: undefined variable "secret"`,
			build: func(a *ast.Arena) ast.Ref {
				return a.NewFunction("outer", nil, a.NewStatements(
					a.NewAssign("secret", a.NewInt("1")),
					a.NewFunction("inner", nil, a.NewStatements(a.NewReturn(a.NewIdent("secret")))),
				))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := compileErr(t, tt.build)
			require.Equal(t, tt.kind, e.Kind)
			require.Equal(t, tt.msg, e.Error())
		})
	}
}

func TestReassignmentClearsArity(t *testing.T) {
	a := ast.New()
	root := a.NewStatements(
		a.NewFunction("f", []string{"x"}, a.NewStatements()),
		a.NewAssign("f", a.NewInt("0")),
		a.NewCall("f", a.NewInt("1"), a.NewInt("2")),
	)
	_, err := Compile(a, root)
	require.NoError(t, err)
}

func TestConditionalRedefinitionClearsArity(t *testing.T) {
	a := ast.New()
	root := a.NewStatements(
		a.NewFunction("f", []string{"a"}, a.NewStatements(a.NewReturn(a.NewIdent("a")))),
		a.NewIf(a.NewBool(false), a.NewStatements(
			a.NewFunction("f", []string{"a", "b"}, a.NewStatements(a.NewReturn(a.NewIdent("a")))),
		), ast.NoRef),
		a.NewPrint(a.NewCall("f", a.NewInt("1"))),
	)
	_, err := Compile(a, root)
	require.NoError(t, err)
}

func TestSuggestions(t *testing.T) {
	e := compileErr(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewAssign("count", a.NewInt("1")),
			a.NewPrint(a.NewIdent("cout")),
		)
	})
	require.Equal(t, errz.UnresolvedName, e.Kind)
	require.Len(t, e.Suggestions, 1)
	require.Equal(t, "count", e.Suggestions[0].Value)

	e = compileErr(t, func(a *ast.Arena) ast.Ref {
		return a.NewCall("mix", a.NewInt("1"))
	})
	require.Equal(t, errz.UnresolvedCall, e.Kind)
	require.Contains(t, e.FriendlyErrorMessage(), "hint: Did you mean one of: 'max', 'min'?")
}

func TestErrorLocation(t *testing.T) {
	source := "x = 1\nprint y"
	e := compileErr(t, func(a *ast.Arena) ast.Ref {
		assign := a.NewAssign("x", a.NewInt("1"))
		a.SetPos(assign, ast.Position{Line: 1, Column: 1})
		ident := a.NewIdent("y")
		a.SetPos(ident, ast.Position{Line: 2, Column: 7})
		printRef := a.NewPrint(ident)
		a.SetPos(printRef, ast.Position{Line: 2, Column: 1})
		return a.NewStatements(assign, printRef)
	}, WithFilename("main.cell"), WithSource(source))
	require.Equal(t, `compile error: unresolved name: undefined variable "y" (main.cell:2:7)`, e.Error())
	require.Equal(t, "print y", e.Location.Source)
	require.Contains(t, e.FriendlyErrorMessage(), " |       ^\n")
}

func TestInstructionLocations(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		lit := a.NewInt("1")
		a.SetPos(lit, ast.Position{Line: 3, Column: 7})
		p := a.NewPrint(lit)
		a.SetPos(p, ast.Position{Line: 3, Column: 1})
		return a.NewStatements(p)
	}, WithFilename("loc.cell"))
	require.Equal(t, bytecode.SourceLocation{Line: 3, Column: 7}, code.LocationAt(0))
	require.Equal(t, bytecode.SourceLocation{Line: 3, Column: 1}, code.LocationAt(1))
	require.Equal(t, "loc.cell", code.Filename())
}

func TestNoLocationsWithoutPositions(t *testing.T) {
	code := compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewPrint(a.NewInt("1"))
	})
	require.Equal(t, 0, code.LocationCount())
}

func TestCapacityLimits(t *testing.T) {
	e := compileErr(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(
			a.NewPrint(a.NewInt("1")),
			a.NewPrint(a.NewInt("2")),
			a.NewPrint(a.NewInt("3")),
		)
	}, WithMaxConstants(2))
	require.Equal(t, errz.CapacityExceeded, e.Kind)
	require.Equal(t, "compile error: capacity exceeded: number of constants exceeds 2", e.Error())

	e = compileErr(t, func(a *ast.Arena) ast.Ref {
		return a.NewStatements(a.NewPrint(a.NewInt("1")), a.NewPrint(a.NewInt("2")))
	}, WithMaxInstructions(3))
	require.Equal(t, errz.CapacityExceeded, e.Kind)

	e = compileErr(t, func(a *ast.Arena) ast.Ref {
		args := make([]ast.Ref, op.MaxArgs+1)
		for i := range args {
			args[i] = a.NewInt(fmt.Sprint(i))
		}
		return a.NewCall("max", args...)
	})
	require.Equal(t, errz.CapacityExceeded, e.Kind)
	require.Contains(t, e.Message, "128 arguments")
}

func TestJumpTooFar(t *testing.T) {
	e := compileErr(t, func(a *ast.Arena) ast.Ref {
		body := make([]ast.Ref, op.MaxA/2+1)
		for i := range body {
			body[i] = a.NewPrint(a.NewBool(true))
		}
		return a.NewStatements(a.NewIf(a.NewBool(true), a.NewStatements(body...), ast.NoRef))
	}, WithMaxConstants(op.MaxA))
	require.Equal(t, errz.CapacityExceeded, e.Kind)
}

func TestCompilerIsSingleUse(t *testing.T) {
	a := ast.New()
	root := a.NewPrint(a.NewInt("1"))
	c := New()
	_, err := c.CompileAST(a, root)
	require.NoError(t, err)
	require.Equal(t, 2, c.Code().InstructionCount())
	_, err = c.CompileAST(a, root)
	require.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	compileTree(t, func(a *ast.Arena) ast.Ref {
		return a.NewFunction("f", []string{"a"}, a.NewStatements())
	}, WithLogger(logger))
	require.Contains(t, buf.String(), `"function":"f"`)
	require.Contains(t, buf.String(), `"message":"compiled function"`)
	require.Contains(t, buf.String(), `"message":"compiled program"`)
}
