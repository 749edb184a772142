// Package dis supports analysis of cellscript bytecode by disassembling it.
package dis

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/cellscript/builtins"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/internal/table"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/fatih/color"
)

// Instruction represents a single bytecode instruction and its operands.
type Instruction struct {
	Offset     int           `json:"offset"`
	Name       string        `json:"name"`
	Opcode     op.Code       `json:"opcode"`
	Operands   []int         `json:"operands,omitempty"`
	Annotation string        `json:"annotation,omitempty"`
	Constant   *object.Value `json:"-"`
	Function   string        `json:"function,omitempty"` // set on a function's entry instruction
}

// Disassemble returns a parsed representation of the given bytecode.
func Disassemble(code *bytecode.Code) ([]Instruction, error) {
	instructions := make([]Instruction, 0, code.InstructionCount())
	for offset := range code.InstructionCount() {
		in := code.InstructionAt(offset)
		info := op.GetInfo(in.Op)
		if !info.Valid() {
			return nil, fmt.Errorf("invalid opcode %d at offset %d", uint8(in.Op), offset)
		}
		instr := Instruction{
			Offset: offset,
			Name:   info.Name,
			Opcode: in.Op,
		}
		switch info.Shape {
		case op.A:
			instr.Operands = []int{int(in.A)}
		case op.AB:
			instr.Operands = []int{int(in.A), int(in.B)}
		}
		if fn, ok := code.FunctionByEntry(offset); ok {
			instr.Function = fn.Name()
		}
		var err error
		switch in.Op {
		case op.LoadConst:
			var constant object.Value
			constant, err = getConstantValue(code, int(in.A))
			instr.Constant = &constant
			instr.Annotation = constant.String()
		case op.LoadGlobal, op.StoreGlobal, op.CallGlobal:
			instr.Annotation, err = getGlobalVariableName(code, int(in.A))
		case op.LoadLocal, op.StoreLocal, op.CallLocal, op.BindParam:
			instr.Annotation, err = getLocalVariableName(code, offset, int(in.A))
		case op.CallBuiltin:
			b, ok := builtins.Get(int(in.A))
			if !ok {
				err = fmt.Errorf("builtin index out of range: %d", in.A)
			}
			instr.Annotation = b.Name
		case op.BinaryOp:
			instr.Annotation = op.BinaryOpType(in.A).String()
		case op.CompareOp:
			instr.Annotation = op.CompareOpType(in.A).String()
		case op.AllocFrame:
			if instr.Function != "" {
				instr.Annotation = "func " + instr.Function
			}
		default:
			if op.IsJump(in.Op) {
				instr.Annotation = fmt.Sprintf("-> %d", offset+1+int(in.A))
			}
		}
		if err != nil {
			return nil, err
		}
		instructions = append(instructions, instr)
	}
	return instructions, nil
}

var (
	boldColor     = color.New(color.Bold)
	constantColor = color.New(color.FgYellow)
	functionColor = color.New(color.FgMagenta)
	infoColor     = color.New(color.FgHiCyan)
)

// Print a string representation of the given instructions to the given
// writer. Colors follow fatih/color's global NoColor setting.
func Print(instructions []Instruction, writer io.Writer) error {
	var lines [][]string
	for _, instr := range instructions {
		var values []string
		values = append(values, fmt.Sprintf("%d", instr.Offset))
		values = append(values, boldColor.Sprint(instr.Name))
		values = append(values, formatOperands(instr.Operands))
		switch {
		case instr.Constant != nil:
			values = append(values, constantColor.Sprint(instr.Annotation))
		case instr.Function != "":
			values = append(values, functionColor.Sprint(instr.Annotation))
		case instr.Annotation != "":
			values = append(values, infoColor.Sprint(instr.Annotation))
		default:
			values = append(values, "")
		}
		lines = append(lines, values)
	}

	return table.NewTable(writer).
		WithHeader([]string{"OFFSET", "OPCODE", "OPERANDS", "INFO"}).
		WithColumnAlignment([]table.Alignment{
			table.AlignRight,
			table.AlignLeft,
			table.AlignRight,
			table.AlignLeft,
		}).
		WithHeaderAlignment([]table.Alignment{
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
			table.AlignCenter,
		}).
		WithRows(lines).
		Render()
}

func formatOperands(operands []int) string {
	var sb strings.Builder
	for i, operand := range operands {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%d", operand)
	}
	return sb.String()
}

func getLocalVariableName(code *bytecode.Code, offset, index int) (string, error) {
	fn, ok := code.FunctionContaining(offset)
	if !ok {
		return "", fmt.Errorf("local variable %d used outside of a function at offset %d", index, offset)
	}
	if fn.LocalCount() <= index {
		return "", fmt.Errorf("local variable index out of range: %d", index)
	}
	return fn.LocalNameAt(index), nil
}

func getGlobalVariableName(code *bytecode.Code, index int) (string, error) {
	if index < 0 || code.GlobalCount() <= index {
		return "", fmt.Errorf("global variable index out of range: %d", index)
	}
	return code.GlobalNameAt(index), nil
}

func getConstantValue(code *bytecode.Code, index int) (object.Value, error) {
	if index < 0 || code.ConstantCount() <= index {
		return object.False, fmt.Errorf("constant index out of range: %d", index)
	}
	return code.ConstantAt(index), nil
}
