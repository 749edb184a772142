package bytecode

import (
	"strings"

	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
)

// Code is a compiled program. It is immutable after creation and safe for
// concurrent use.
type Code struct {
	instructions []uint32
	constants    []object.Value
	globalNames  []string
	functions    []*Function
	locations    []SourceLocation
	source       string
	filename     string
}

// CodeParams contains parameters for creating a new Code.
type CodeParams struct {
	Instructions []uint32 // packed words, see op.Instruction.Encode
	Constants    []object.Value
	GlobalNames  []string // indexed by global slot
	Functions    []*Function
	Locations    []SourceLocation // one per instruction, may be empty
	Source       string
	Filename     string
}

// NewCode creates a new immutable Code from the given parameters.
// Input slices are copied.
func NewCode(params CodeParams) *Code {
	return &Code{
		instructions: copySlice(params.Instructions),
		constants:    copySlice(params.Constants),
		globalNames:  copySlice(params.GlobalNames),
		functions:    copySlice(params.Functions),
		locations:    copySlice(params.Locations),
		source:       params.Source,
		filename:     params.Filename,
	}
}

// InstructionCount returns the number of instructions.
func (c *Code) InstructionCount() int {
	return len(c.instructions)
}

// WordAt returns the packed instruction word at the given index.
func (c *Code) WordAt(index int) uint32 {
	return c.instructions[index]
}

// InstructionAt returns the decoded instruction at the given index.
func (c *Code) InstructionAt(index int) op.Instruction {
	return op.Decode(c.instructions[index])
}

// ConstantCount returns the number of constants.
func (c *Code) ConstantCount() int {
	return len(c.constants)
}

// ConstantAt returns the constant at the given index.
func (c *Code) ConstantAt(index int) object.Value {
	return c.constants[index]
}

// GlobalCount returns the number of global slots.
func (c *Code) GlobalCount() int {
	return len(c.globalNames)
}

// GlobalNameAt returns the name of the global slot at the given index.
// Returns an empty string if the index is out of range.
func (c *Code) GlobalNameAt(index int) string {
	if index < 0 || index >= len(c.globalNames) {
		return ""
	}
	return c.globalNames[index]
}

// GlobalIndex returns the slot of the named global.
func (c *Code) GlobalIndex(name string) (int, bool) {
	for i, n := range c.globalNames {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// GlobalNames returns a copy of all global names.
func (c *Code) GlobalNames() []string {
	return copySlice(c.globalNames)
}

// FunctionCount returns the number of compiled functions.
func (c *Code) FunctionCount() int {
	return len(c.functions)
}

// FunctionAt returns the function at the given index, in declaration order.
func (c *Code) FunctionAt(index int) *Function {
	return c.functions[index]
}

// FunctionByEntry returns the function whose body begins at entry.
func (c *Code) FunctionByEntry(entry int) (*Function, bool) {
	for _, fn := range c.functions {
		if fn.Entry() == entry {
			return fn, true
		}
	}
	return nil, false
}

// FunctionContaining returns the innermost function whose body spans ip.
func (c *Code) FunctionContaining(ip int) (*Function, bool) {
	var found *Function
	for _, fn := range c.functions {
		if ip >= fn.Entry() && ip < fn.End() {
			if found == nil || fn.Entry() > found.Entry() {
				found = fn
			}
		}
	}
	return found, found != nil
}

// FunctionNames returns the names of all compiled functions.
func (c *Code) FunctionNames() []string {
	names := make([]string, 0, len(c.functions))
	for _, fn := range c.functions {
		names = append(names, fn.Name())
	}
	return names
}

// LocationAt returns the source location for the instruction at the given index.
func (c *Code) LocationAt(ip int) SourceLocation {
	if ip < 0 || ip >= len(c.locations) {
		return SourceLocation{}
	}
	return c.locations[ip]
}

// LocationCount returns the number of recorded source locations.
func (c *Code) LocationCount() int {
	return len(c.locations)
}

// Source returns the source code the program was compiled from, if known.
func (c *Code) Source() string {
	return c.source
}

// Filename returns the source filename.
func (c *Code) Filename() string {
	return c.filename
}

// GetSourceLine returns the source code line at the given 1-based line number.
func (c *Code) GetSourceLine(lineNum int) string {
	if lineNum < 1 || c.source == "" {
		return ""
	}
	lines := strings.Split(c.source, "\n")
	if lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// ErrorLocation returns the full error location of the instruction at ip,
// including the filename and the source line when they are known.
func (c *Code) ErrorLocation(ip int) errz.SourceLocation {
	loc := c.LocationAt(ip)
	if loc.IsZero() {
		return errz.SourceLocation{}
	}
	return errz.SourceLocation{
		Filename: c.filename,
		Line:     loc.Line,
		Column:   loc.Column,
		Source:   c.GetSourceLine(loc.Line),
	}
}

// Stats returns statistics about this program.
func (c *Code) Stats() Stats {
	return Stats{
		InstructionCount: len(c.instructions),
		ConstantCount:    len(c.constants),
		GlobalCount:      len(c.globalNames),
		FunctionCount:    len(c.functions),
		SourceBytes:      len(c.source),
	}
}
