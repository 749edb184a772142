// Package op defines opcodes used by the cellscript compiler and virtual machine.
package op

// Code is an integer opcode that indicates an operation to execute. Codes
// occupy the low eight bits of a packed instruction word.
type Code uint8

const (
	Invalid Code = 0

	// Stack
	PopTop Code = 1
	Dup    Code = 2

	// Load
	LoadConst  Code = 10
	LoadGlobal Code = 11
	LoadLocal  Code = 12

	// Store
	StoreGlobal Code = 20
	StoreLocal  Code = 21

	// Jump
	Jump            Code = 30
	PopJumpIfFalse  Code = 31
	PopJumpIfTrue   Code = 32
	JumpIfFalseKeep Code = 33 // leaves the tested value on the stack when jumping
	JumpIfTrueKeep  Code = 34

	// Calls
	CallBuiltin Code = 40
	CallGlobal  Code = 41
	CallLocal   Code = 42
	AllocFrame  Code = 43
	BindParam   Code = 44
	Return      Code = 45

	// Operations
	BinaryOp      Code = 50
	CompareOp     Code = 51
	UnaryNot      Code = 52
	UnaryPositive Code = 53
	UnaryNegative Code = 54

	// I/O
	Print Code = 60
)

// BinaryOpType describes an arithmetic operation on two operands. It is
// carried in the A operand of a BINARY_OP instruction.
type BinaryOpType int16

const (
	Add      BinaryOpType = 1
	Subtract BinaryOpType = 2
	Multiply BinaryOpType = 3
	Divide   BinaryOpType = 4
)

// String returns a string representation of the binary operation.
// For example "+" for addition.
func (bop BinaryOpType) String() string {
	switch bop {
	case Add:
		return "+"
	case Subtract:
		return "-"
	case Multiply:
		return "*"
	case Divide:
		return "/"
	default:
		return ""
	}
}

// CompareOpType describes a type of comparison operation. It is carried in
// the A operand of a COMPARE_OP instruction.
type CompareOpType int16

const (
	LessThan           CompareOpType = 1
	LessThanOrEqual    CompareOpType = 2
	Equal              CompareOpType = 3
	NotEqual           CompareOpType = 4
	GreaterThan        CompareOpType = 5
	GreaterThanOrEqual CompareOpType = 6
)

// String returns a string representation of the comparison operation.
// For example "<" for less than.
func (cop CompareOpType) String() string {
	switch cop {
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case Equal:
		return "=="
	case NotEqual:
		return "!="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return ""
	}
}

// Shape describes which operand fields of an instruction are meaningful.
type Shape uint8

const (
	// None means the instruction ignores both operands.
	None Shape = iota
	// A means only the 16-bit A operand is used.
	A
	// AB means both the A operand and the 8-bit B operand are used.
	AB
)

// OperandCount returns how many operands the shape carries.
func (s Shape) OperandCount() int {
	switch s {
	case A:
		return 1
	case AB:
		return 2
	default:
		return 0
	}
}

// Info contains information about an opcode.
type Info struct {
	Code  Code
	Name  string
	Shape Shape
}

// Valid reports whether the info describes a known opcode.
func (i Info) Valid() bool {
	return i.Name != ""
}

var infos [256]Info

func init() {
	type opInfo struct {
		op    Code
		name  string
		shape Shape
	}
	ops := []opInfo{
		{AllocFrame, "ALLOC_FRAME", AB},
		{BinaryOp, "BINARY_OP", A},
		{BindParam, "BIND_PARAM", A},
		{CallBuiltin, "CALL_BUILTIN", AB},
		{CallGlobal, "CALL_GLOBAL", AB},
		{CallLocal, "CALL_LOCAL", AB},
		{CompareOp, "COMPARE_OP", A},
		{Dup, "DUP", None},
		{Jump, "JUMP", A},
		{JumpIfFalseKeep, "JUMP_IF_FALSE_KEEP", A},
		{JumpIfTrueKeep, "JUMP_IF_TRUE_KEEP", A},
		{LoadConst, "LOAD_CONST", A},
		{LoadGlobal, "LOAD_GLOBAL", A},
		{LoadLocal, "LOAD_LOCAL", A},
		{PopJumpIfFalse, "POP_JUMP_IF_FALSE", A},
		{PopJumpIfTrue, "POP_JUMP_IF_TRUE", A},
		{PopTop, "POP_TOP", None},
		{Print, "PRINT", None},
		{Return, "RETURN", None},
		{StoreGlobal, "STORE_GLOBAL", A},
		{StoreLocal, "STORE_LOCAL", A},
		{UnaryNegative, "UNARY_NEGATIVE", None},
		{UnaryNot, "UNARY_NOT", None},
		{UnaryPositive, "UNARY_POSITIVE", None},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Name:  o.name,
			Code:  o.op,
			Shape: o.shape,
		}
	}
}

// GetInfo returns information about the given opcode. The returned Info is
// not Valid for unknown codes.
func GetInfo(op Code) Info {
	return infos[op]
}

// IsJump reports whether the opcode carries a relative jump displacement in A.
func IsJump(op Code) bool {
	switch op {
	case Jump, PopJumpIfFalse, PopJumpIfTrue, JumpIfFalseKeep, JumpIfTrueKeep:
		return true
	}
	return false
}

// String returns the opcode mnemonic.
func (c Code) String() string {
	if info := infos[c]; info.Valid() {
		return info.Name
	}
	return "INVALID"
}
