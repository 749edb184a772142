package compiler

import (
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
)

// Code is the growable buffer a compilation writes into. Instructions stay
// decoded until ToBytecode packs them, so placeholders can be patched in
// place.
type Code struct {
	instructions []op.Instruction
	locations    []bytecode.SourceLocation
	constants    []object.Value
	functions    []*bytecode.Function
}

// InstructionCount returns the number of instructions emitted so far.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// Instruction returns the instruction at the given index.
func (c *Code) Instruction(index int) op.Instruction {
	return c.instructions[index]
}

// ConstantsCount returns the number of constants added so far.
func (c *Code) ConstantsCount() int {
	return len(c.constants)
}

// Constant returns the constant at the given index.
func (c *Code) Constant(index int) object.Value {
	return c.constants[index]
}

// ToBytecode packs the buffer into an immutable program.
func (c *Code) ToBytecode(globals *SymbolTable, filename, source string) *bytecode.Code {
	words := make([]uint32, len(c.instructions))
	for i, in := range c.instructions {
		words[i] = in.Encode()
	}
	var locations []bytecode.SourceLocation
	for _, loc := range c.locations {
		if !loc.IsZero() {
			locations = c.locations
			break
		}
	}
	return bytecode.NewCode(bytecode.CodeParams{
		Instructions: words,
		Constants:    c.constants,
		GlobalNames:  globals.Names(),
		Functions:    c.functions,
		Locations:    locations,
		Source:       source,
		Filename:     filename,
	})
}
