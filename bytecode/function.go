package bytecode

import (
	"fmt"
	"strings"
)

// Function describes one compiled function. The body occupies instructions
// [Entry, End) of the program; Entry is the ALLOC_FRAME instruction and the
// value stored in the function's variable slot.
type Function struct {
	name       string
	entry      int
	end        int
	parameters []string
	localNames []string
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name       string
	Entry      int
	End        int
	Parameters []string
	LocalNames []string // indexed by local slot; parameters come first
}

// NewFunction creates a new immutable Function from the given parameters.
func NewFunction(params FunctionParams) *Function {
	return &Function{
		name:       params.Name,
		entry:      params.Entry,
		end:        params.End,
		parameters: copySlice(params.Parameters),
		localNames: copySlice(params.LocalNames),
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// Entry returns the index of the function's first instruction.
func (f *Function) Entry() int {
	return f.entry
}

// End returns the index just past the function's RETURN instruction.
func (f *Function) End() int {
	return f.end
}

// ParameterCount returns the number of parameters.
func (f *Function) ParameterCount() int {
	return len(f.parameters)
}

// Parameter returns the name of the parameter at the given index.
func (f *Function) Parameter(index int) string {
	return f.parameters[index]
}

// LocalCount returns the number of local slots, parameters included.
func (f *Function) LocalCount() int {
	return len(f.localNames)
}

// LocalNameAt returns the name of the local slot at the given index.
// Returns an empty string if the index is out of range.
func (f *Function) LocalNameAt(index int) string {
	if index < 0 || index >= len(f.localNames) {
		return ""
	}
	return f.localNames[index]
}

// String returns the function signature, for example "func add(a, b) @3".
func (f *Function) String() string {
	return fmt.Sprintf("func %s(%s) @%d", f.name, strings.Join(f.parameters, ", "), f.entry)
}
