package op

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetInfo(t *testing.T) {
	info := GetInfo(CallGlobal)
	require.Equal(t, "CALL_GLOBAL", info.Name)
	require.Equal(t, AB, info.Shape)
	require.Equal(t, 2, info.Shape.OperandCount())
	require.Equal(t, CallGlobal, info.Code)
}

func TestGetInfoAllOpcodes(t *testing.T) {
	tests := []struct {
		code  Code
		name  string
		shape Shape
	}{
		{PopTop, "POP_TOP", None},
		{Dup, "DUP", None},
		{LoadConst, "LOAD_CONST", A},
		{LoadGlobal, "LOAD_GLOBAL", A},
		{LoadLocal, "LOAD_LOCAL", A},
		{StoreGlobal, "STORE_GLOBAL", A},
		{StoreLocal, "STORE_LOCAL", A},
		{Jump, "JUMP", A},
		{PopJumpIfFalse, "POP_JUMP_IF_FALSE", A},
		{PopJumpIfTrue, "POP_JUMP_IF_TRUE", A},
		{JumpIfFalseKeep, "JUMP_IF_FALSE_KEEP", A},
		{JumpIfTrueKeep, "JUMP_IF_TRUE_KEEP", A},
		{CallBuiltin, "CALL_BUILTIN", AB},
		{CallGlobal, "CALL_GLOBAL", AB},
		{CallLocal, "CALL_LOCAL", AB},
		{AllocFrame, "ALLOC_FRAME", AB},
		{BindParam, "BIND_PARAM", A},
		{Return, "RETURN", None},
		{BinaryOp, "BINARY_OP", A},
		{CompareOp, "COMPARE_OP", A},
		{UnaryNot, "UNARY_NOT", None},
		{UnaryPositive, "UNARY_POSITIVE", None},
		{UnaryNegative, "UNARY_NEGATIVE", None},
		{Print, "PRINT", None},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := GetInfo(tt.code)
			require.True(t, info.Valid())
			require.Equal(t, tt.name, info.Name)
			require.Equal(t, tt.shape, info.Shape)
			require.Equal(t, tt.name, tt.code.String())
		})
	}
}

func TestGetInfoUnknown(t *testing.T) {
	require.False(t, GetInfo(Invalid).Valid())
	require.False(t, GetInfo(Code(255)).Valid())
	require.Equal(t, "INVALID", Code(200).String())
}

func TestOperatorStrings(t *testing.T) {
	require.Equal(t, "+", Add.String())
	require.Equal(t, "/", Divide.String())
	require.Equal(t, "", BinaryOpType(99).String())
	require.Equal(t, "!=", NotEqual.String())
	require.Equal(t, ">=", GreaterThanOrEqual.String())
	require.Equal(t, "", CompareOpType(0).String())
}

func TestIsJump(t *testing.T) {
	require.True(t, IsJump(Jump))
	require.True(t, IsJump(JumpIfTrueKeep))
	require.False(t, IsJump(CallGlobal))
	require.False(t, IsJump(PopTop))
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		in   Instruction
	}{
		{"zero operands", Instruction{Op: Print}},
		{"max a", Instruction{Op: LoadConst, A: math.MaxInt16}},
		{"min a", Instruction{Op: Jump, A: math.MinInt16}},
		{"negative a", Instruction{Op: Jump, A: -7}},
		{"max b", Instruction{Op: CallGlobal, A: 3, B: math.MaxInt8}},
		{"negative b", Instruction{Op: AllocFrame, A: 1, B: -1}},
		{"all bits", Instruction{Op: Code(255), A: -1, B: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.in, Decode(tt.in.Encode()))
		})
	}
}

func TestEncodeLayout(t *testing.T) {
	word := Instruction{Op: CallLocal, A: 0x1234, B: 0x05}.Encode()
	require.Equal(t, uint32(CallLocal), word&0xff)
	require.Equal(t, uint32(0x1234), (word>>8)&0xffff)
	require.Equal(t, uint32(0x05), word>>24)

	neg := Instruction{Op: Jump, A: -1}.Encode()
	require.Equal(t, uint32(0xffff), (neg>>8)&0xffff)
	require.Equal(t, uint32(0), neg>>24)
}

func TestInstructionString(t *testing.T) {
	require.Equal(t, "POP_TOP", Instruction{Op: PopTop}.String())
	require.Equal(t, "JUMP -4", Instruction{Op: Jump, A: -4}.String())
	require.Equal(t, "CALL_BUILTIN 2 3", Instruction{Op: CallBuiltin, A: 2, B: 3}.String())
	require.Equal(t, "INVALID(99)", Instruction{Op: Code(99)}.String())
}

func TestFitsA(t *testing.T) {
	require.True(t, FitsA(0))
	require.True(t, FitsA(MaxA))
	require.True(t, FitsA(MinA))
	require.False(t, FitsA(MaxA+1))
	require.False(t, FitsA(MinA-1))
}
