package op

import (
	"fmt"
	"math"
)

const (
	// MaxA is the largest value the A operand can hold. Constant indexes,
	// slot indexes, and forward jump displacements are bounded by it.
	MaxA = math.MaxInt16
	// MinA is the smallest value the A operand can hold.
	MinA = math.MinInt16
	// MaxArgs is the largest argument count a call can carry in B.
	MaxArgs = math.MaxInt8
)

// Instruction is one decoded bytecode instruction. On the wire it is packed
// into a single 32-bit word: bits 0-7 hold the opcode, bits 8-23 hold A in
// two's complement, and bits 24-31 hold B.
type Instruction struct {
	Op Code
	A  int16
	B  int8
}

// Encode packs the instruction into a 32-bit word.
func (in Instruction) Encode() uint32 {
	return uint32(in.Op) | uint32(uint16(in.A))<<8 | uint32(uint8(in.B))<<24
}

// Decode unpacks a 32-bit word produced by Encode.
func Decode(word uint32) Instruction {
	return Instruction{
		Op: Code(word & 0xff),
		A:  int16(uint16(word >> 8)),
		B:  int8(uint8(word >> 24)),
	}
}

// String renders the instruction as its mnemonic followed by the operands
// its shape uses.
func (in Instruction) String() string {
	info := GetInfo(in.Op)
	if !info.Valid() {
		return fmt.Sprintf("INVALID(%d)", in.Op)
	}
	switch info.Shape {
	case A:
		return fmt.Sprintf("%s %d", info.Name, in.A)
	case AB:
		return fmt.Sprintf("%s %d %d", info.Name, in.A, in.B)
	default:
		return info.Name
	}
}

// FitsA reports whether v can be stored in the A operand.
func FitsA(v int) bool {
	return v >= MinA && v <= MaxA
}
