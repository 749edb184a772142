// Package ast defines the abstract syntax tree representation of cellscript
// code. Nodes are cells allocated from an Arena and addressed by Ref handles.
package ast

import "fmt"

// Kind identifies what a cell represents. The set is closed; a cell whose
// Kind is outside it is rejected by the compiler.
type Kind uint8

const (
	Invalid Kind = iota
	Statements
	Assign
	If
	Branch // then/else pair hanging off an If
	While
	Print
	Call
	UnaryOp
	BinaryOp
	BoolLiteral
	IntLiteral
	FloatLiteral
	Identifier
	Function
	Return
)

var kindNames = [...]string{
	Invalid:      "Invalid",
	Statements:   "Statements",
	Assign:       "Assign",
	If:           "If",
	Branch:       "Branch",
	While:        "While",
	Print:        "Print",
	Call:         "Call",
	UnaryOp:      "UnaryOp",
	BinaryOp:     "BinaryOp",
	BoolLiteral:  "BoolLiteral",
	IntLiteral:   "IntLiteral",
	FloatLiteral: "FloatLiteral",
	Identifier:   "Identifier",
	Function:     "Function",
	Return:       "Return",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// IsExpression reports whether cells of this kind produce a value.
func (k Kind) IsExpression() bool {
	switch k {
	case Call, UnaryOp, BinaryOp, BoolLiteral, IntLiteral, FloatLiteral, Identifier:
		return true
	}
	return false
}

// Operator is the operator carried by UnaryOp and BinaryOp cells.
type Operator uint8

const (
	NoOp Operator = iota
	Add
	Sub
	Mul
	Div
	Gt
	Ge
	Eq
	Ne
	Lt
	Le
	And
	Or
	Not
	Pos
	Neg
)

var operatorSymbols = [...]string{
	NoOp: "",
	Add:  "+",
	Sub:  "-",
	Mul:  "*",
	Div:  "/",
	Gt:   ">",
	Ge:   ">=",
	Eq:   "==",
	Ne:   "!=",
	Lt:   "<",
	Le:   "<=",
	And:  "and",
	Or:   "or",
	Not:  "not",
	Pos:  "+",
	Neg:  "-",
}

// String returns the source symbol of the operator.
func (o Operator) String() string {
	if int(o) < len(operatorSymbols) {
		return operatorSymbols[o]
	}
	return fmt.Sprintf("Operator(%d)", o)
}

// IsUnary reports whether the operator takes a single operand.
func (o Operator) IsUnary() bool {
	return o == Not || o == Pos || o == Neg
}

// Position points at the 1-based line and column where a cell begins.
// Trees built directly through the constructors have no position.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if the position has been set.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Ref is a handle to a cell in an Arena. Handles are 1-based so that the
// zero value, NoRef, means "absent".
type Ref uint32

// NoRef is the absent handle.
const NoRef Ref = 0

// Node is a value copy of one cell.
//
// Payload use depends on Kind: Text holds identifier names and literal
// digits, Flag holds boolean literals, Left and Right hold children, and Next
// links the cell into a chain (statement lists, call arguments, parameters).
type Node struct {
	Kind  Kind
	Op    Operator
	Text  string
	Flag  bool
	Left  Ref
	Right Ref
	Next  Ref
	Pos   Position
}
