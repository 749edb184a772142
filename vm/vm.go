// Package vm provides a VirtualMachine that executes compiled cellscript
// bytecode.
//
// The machine keeps a value stack, a global store sized to the program's
// global slot count, and an explicit stack of call frames. Each frame owns
// its local slots along with the return address, the argument count, and
// the value stack height at the time of the call. Both stacks have fixed
// capacities; overflowing either is a CapacityExceeded error.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/deepnoodle-ai/cellscript/builtins"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/rs/zerolog"
)

const (
	DefaultMaxStackDepth = 1024
	DefaultMaxFrameDepth = 1024

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("vm: a VirtualMachine may only be run once")

// VirtualMachine executes one compiled program. It is single-use and not
// safe for concurrent use.
type VirtualMachine struct {
	ip      int // instruction pointer
	fp      int // index of the active frame, -1 at the top level
	code    *bytecode.Code
	stack   []object.Value
	globals []object.Value
	frames  []frame
	steps   int64
	ran     bool

	output               io.Writer
	logger               zerolog.Logger
	maxStackDepth        int
	maxFrameDepth        int
	contextCheckInterval int

	// observer receives callbacks for execution events. If nil, no
	// callbacks are made.
	observer       Observer
	observerConfig ObserverConfig
	lastLine       int
}

// New creates a new Virtual Machine for the given program.
func New(code *bytecode.Code, options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		fp:                   -1,
		code:                 code,
		output:               os.Stdout,
		logger:               zerolog.Nop(),
		maxStackDepth:        DefaultMaxStackDepth,
		maxFrameDepth:        DefaultMaxFrameDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(vm)
	}
	vm.globals = make([]object.Value, code.GlobalCount())
	vm.stack = make([]object.Value, 0, min(vm.maxStackDepth, 64))
	return vm
}

// Run executes the program from its first instruction until it falls off
// the end. The first error aborts the run and is returned; it is always an
// *errz.Error unless writing output failed.
func (vm *VirtualMachine) Run(ctx context.Context) error {
	if vm.ran {
		return ErrAlreadyRun
	}
	vm.ran = true
	if vm.observer != nil {
		vm.observerConfig = NormalizeConfig(vm.observer.Config())
	}
	vm.logger.Debug().
		Int("instructions", vm.code.InstructionCount()).
		Int("globals", vm.code.GlobalCount()).
		Msg("run started")

	err := vm.eval(ctx)

	event := vm.logger.Debug().Int64("steps", vm.steps)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg("run finished")
	return err
}

// StackDepth returns the number of values on the value stack.
func (vm *VirtualMachine) StackDepth() int {
	return len(vm.stack)
}

// FrameDepth returns the number of active call frames.
func (vm *VirtualMachine) FrameDepth() int {
	return vm.fp + 1
}

// Steps returns the number of instructions executed so far.
func (vm *VirtualMachine) Steps() int64 {
	return vm.steps
}

// Global returns the current value of the named global variable.
func (vm *VirtualMachine) Global(name string) (object.Value, bool) {
	index, ok := vm.code.GlobalIndex(name)
	if !ok {
		return object.False, false
	}
	return vm.globals[index], true
}

// Globals returns the current value of every global, keyed by name.
func (vm *VirtualMachine) Globals() map[string]object.Value {
	result := make(map[string]object.Value, len(vm.globals))
	for i, value := range vm.globals {
		result[vm.code.GlobalNameAt(i)] = value
	}
	return result
}

func (vm *VirtualMachine) eval(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return vm.cancelled(err)
	}
	var instructionCount int
	checkInterval := vm.contextCheckInterval
	doneChan := ctx.Done()
	count := vm.code.InstructionCount()

	for vm.ip < count {
		// Deterministic check of ctx.Done() every N instructions
		if checkInterval > 0 && doneChan != nil {
			instructionCount++
			if instructionCount >= checkInterval {
				instructionCount = 0
				select {
				case <-doneChan:
					return vm.cancelled(ctx.Err())
				default:
				}
			}
		}

		instr := vm.code.InstructionAt(vm.ip)
		if vm.observer != nil && !vm.step(instr) {
			return vm.halted()
		}

		// Advance the instruction pointer before executing, so relative
		// jumps are taken from the next instruction.
		vm.ip++
		vm.steps++

		if err := vm.exec(ctx, instr); err != nil {
			return err
		}
	}

	if vm.fp >= 0 {
		return vm.runtimeError(errz.StackImbalance,
			"program ended inside a call to %s", vm.frames[vm.fp].name())
	}
	if len(vm.stack) != 0 {
		return vm.runtimeError(errz.StackImbalance,
			"%d value(s) left on the stack at exit", len(vm.stack))
	}
	return nil
}

func (vm *VirtualMachine) exec(ctx context.Context, instr op.Instruction) error {
	switch instr.Op {
	case op.PopTop:
		_, err := vm.pop()
		return err
	case op.Dup:
		top, err := vm.top()
		if err != nil {
			return err
		}
		return vm.push(top)
	case op.LoadConst:
		index := int(instr.A)
		if index < 0 || index >= vm.code.ConstantCount() {
			return vm.runtimeError(errz.TypeError, "constant %d out of range", index)
		}
		return vm.push(vm.code.ConstantAt(index))
	case op.LoadGlobal:
		slot, err := vm.globalSlot(instr.A)
		if err != nil {
			return err
		}
		return vm.push(*slot)
	case op.StoreGlobal:
		slot, err := vm.globalSlot(instr.A)
		if err != nil {
			return err
		}
		value, err := vm.pop()
		if err != nil {
			return err
		}
		*slot = value
	case op.LoadLocal:
		slot, err := vm.localSlot(instr.A)
		if err != nil {
			return err
		}
		return vm.push(*slot)
	case op.StoreLocal, op.BindParam:
		slot, err := vm.localSlot(instr.A)
		if err != nil {
			return err
		}
		value, err := vm.pop()
		if err != nil {
			return err
		}
		*slot = value
	case op.Jump:
		return vm.jump(instr.A)
	case op.PopJumpIfFalse, op.PopJumpIfTrue:
		cond, err := vm.pop()
		if err != nil {
			return err
		}
		if cond.IsTruthy() == (instr.Op == op.PopJumpIfTrue) {
			return vm.jump(instr.A)
		}
	case op.JumpIfFalseKeep, op.JumpIfTrueKeep:
		cond, err := vm.top()
		if err != nil {
			return err
		}
		if cond.IsTruthy() == (instr.Op == op.JumpIfTrueKeep) {
			return vm.jump(instr.A)
		}
	case op.CallGlobal:
		slot, err := vm.globalSlot(instr.A)
		if err != nil {
			return err
		}
		return vm.call(*slot, int(instr.B))
	case op.CallLocal:
		slot, err := vm.localSlot(instr.A)
		if err != nil {
			return err
		}
		return vm.call(*slot, int(instr.B))
	case op.CallBuiltin:
		return vm.callBuiltin(ctx, int(instr.A), int(instr.B))
	case op.AllocFrame:
		return vm.allocFrame(int(instr.A), int(instr.B))
	case op.Return:
		return vm.ret()
	case op.BinaryOp:
		b, a, err := vm.pop2()
		if err != nil {
			return err
		}
		result, err := object.BinaryOp(op.BinaryOpType(instr.A), a, b)
		if err != nil {
			return vm.operationError(err)
		}
		return vm.push(result)
	case op.CompareOp:
		b, a, err := vm.pop2()
		if err != nil {
			return err
		}
		result, err := object.Compare(op.CompareOpType(instr.A), a, b)
		if err != nil {
			return vm.operationError(err)
		}
		return vm.push(result)
	case op.UnaryNot, op.UnaryPositive, op.UnaryNegative:
		value, err := vm.pop()
		if err != nil {
			return err
		}
		switch instr.Op {
		case op.UnaryNot:
			value = object.Not(value)
		case op.UnaryPositive:
			value = object.Positive(value)
		default:
			value = object.Negate(value)
		}
		return vm.push(value)
	case op.Print:
		value, err := vm.pop()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(vm.output, value.String()); err != nil {
			return fmt.Errorf("print: %w", err)
		}
	default:
		return vm.runtimeError(errz.UnknownOpcode, "opcode %d", uint8(instr.Op))
	}
	return nil
}

// call transfers control to the function whose entry index is held in
// callee. The argc arguments are already on the stack.
func (vm *VirtualMachine) call(callee object.Value, argc int) error {
	if callee.Type() != object.INT {
		return vm.runtimeError(errz.TypeError, "cannot call a %s value", callee.Type())
	}
	entry := callee.Int()
	if entry < 0 || entry >= int64(vm.code.InstructionCount()) ||
		vm.code.InstructionAt(int(entry)).Op != op.AllocFrame {
		return vm.runtimeError(errz.TypeError, "%d is not a function entry", entry)
	}
	if argc > len(vm.stack) {
		return vm.runtimeError(errz.StackImbalance, "call expects %d argument(s) on a stack of %d", argc, len(vm.stack))
	}
	if vm.fp+1 >= vm.maxFrameDepth {
		return vm.runtimeError(errz.CapacityExceeded, "call depth exceeded %d frames", vm.maxFrameDepth)
	}
	fn, _ := vm.code.FunctionByEntry(int(entry))
	vm.fp++
	if vm.fp == len(vm.frames) {
		vm.frames = append(vm.frames, frame{})
	}
	f := &vm.frames[vm.fp]
	f.activate(fn, vm.ip-1, vm.ip, argc, len(vm.stack)-argc)
	if vm.observer != nil && vm.observerConfig.ObserveCalls {
		event := CallEvent{
			FunctionName: f.name(),
			Entry:        int(entry),
			ArgCount:     argc,
			Location:     vm.code.LocationAt(vm.ip - 1),
			FrameDepth:   vm.fp + 1,
		}
		if !vm.observer.OnCall(event) {
			return vm.halted()
		}
	}
	vm.ip = int(entry)
	return nil
}

func (vm *VirtualMachine) allocFrame(locals, params int) error {
	if vm.fp < 0 {
		return vm.runtimeError(errz.TypeError, "function entered without a call")
	}
	f := &vm.frames[vm.fp]
	if f.argc != params {
		return vm.runtimeError(errz.ArityMismatch,
			"%s takes %d argument(s), %d given", f.name(), params, f.argc)
	}
	if locals < params {
		return vm.runtimeError(errz.TypeError,
			"frame of %d local(s) cannot hold %d parameter(s)", locals, params)
	}
	f.allocLocals(locals)
	return nil
}

func (vm *VirtualMachine) ret() error {
	if vm.fp < 0 {
		return vm.runtimeError(errz.StackImbalance, "return outside of a call")
	}
	f := &vm.frames[vm.fp]
	if len(vm.stack) != f.base+1 {
		return vm.runtimeError(errz.StackImbalance,
			"%s returned with %d value(s) on its stack, want 1", f.name(), len(vm.stack)-f.base)
	}
	vm.ip = f.returnAddr
	vm.fp--
	if vm.observer != nil && vm.observerConfig.ObserveReturns {
		event := ReturnEvent{
			FunctionName: f.name(),
			Result:       vm.stack[len(vm.stack)-1].String(),
			Location:     vm.code.LocationAt(f.callSiteIP),
			FrameDepth:   vm.fp + 1,
		}
		if !vm.observer.OnReturn(event) {
			return vm.halted()
		}
	}
	return nil
}

func (vm *VirtualMachine) callBuiltin(ctx context.Context, index, argc int) error {
	b, ok := builtins.Get(index)
	if !ok {
		return vm.runtimeError(errz.TypeError, "no builtin at index %d", index)
	}
	if err := b.CheckArity(argc); err != nil {
		return vm.runtimeError(errz.ArityMismatch, "%s", err).WithCause(err)
	}
	if argc > len(vm.stack) {
		return vm.runtimeError(errz.StackImbalance, "%s expects %d argument(s) on a stack of %d", b.Name, argc, len(vm.stack))
	}
	start := len(vm.stack) - argc
	args := make([]object.Value, argc)
	copy(args, vm.stack[start:])
	vm.stack = vm.stack[:start]
	result, err := b.Fn(ctx, args...)
	if err != nil {
		return vm.runtimeError(errz.TypeError, "%s", err).WithCause(err)
	}
	return vm.push(result)
}

func (vm *VirtualMachine) jump(delta int16) error {
	target := vm.ip + int(delta)
	if target < 0 || target > vm.code.InstructionCount() {
		return vm.runtimeError(errz.TypeError, "jump target %d out of range", target)
	}
	vm.ip = target
	return nil
}

func (vm *VirtualMachine) globalSlot(index int16) (*object.Value, error) {
	if index < 0 || int(index) >= len(vm.globals) {
		return nil, vm.runtimeError(errz.TypeError, "global slot %d out of range", index)
	}
	return &vm.globals[index], nil
}

func (vm *VirtualMachine) localSlot(index int16) (*object.Value, error) {
	if vm.fp < 0 {
		return nil, vm.runtimeError(errz.TypeError, "local slot %d used outside of a call", index)
	}
	locals := vm.frames[vm.fp].locals
	if index < 0 || int(index) >= len(locals) {
		return nil, vm.runtimeError(errz.TypeError, "local slot %d out of range", index)
	}
	return &locals[index], nil
}

func (vm *VirtualMachine) push(value object.Value) error {
	if len(vm.stack) >= vm.maxStackDepth {
		return vm.runtimeError(errz.CapacityExceeded, "value stack exceeded %d entries", vm.maxStackDepth)
	}
	vm.stack = append(vm.stack, value)
	return nil
}

func (vm *VirtualMachine) pop() (object.Value, error) {
	n := len(vm.stack)
	if n == 0 || (vm.fp >= 0 && n <= vm.frames[vm.fp].base && vm.frames[vm.fp].locals != nil) {
		return object.False, vm.runtimeError(errz.StackImbalance, "stack underflow")
	}
	value := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return value, nil
}

// pop2 pops the right operand then the left one.
func (vm *VirtualMachine) pop2() (object.Value, object.Value, error) {
	b, err := vm.pop()
	if err != nil {
		return b, b, err
	}
	a, err := vm.pop()
	return b, a, err
}

func (vm *VirtualMachine) top() (object.Value, error) {
	if len(vm.stack) == 0 {
		return object.False, vm.runtimeError(errz.StackImbalance, "stack underflow")
	}
	return vm.stack[len(vm.stack)-1], nil
}

// step reports the instruction at vm.ip to the observer according to its
// step mode.
func (vm *VirtualMachine) step(instr op.Instruction) bool {
	cfg := vm.observerConfig
	switch cfg.StepMode {
	case StepNone:
		return true
	case StepSampled:
		if vm.steps%int64(cfg.SampleInterval) != 0 {
			return true
		}
	case StepOnLine:
		line := vm.code.LocationAt(vm.ip).Line
		if line == 0 || line == vm.lastLine {
			return true
		}
		vm.lastLine = line
	}
	return vm.observer.OnStep(StepEvent{
		IP:          vm.ip,
		Instruction: instr,
		OpcodeName:  instr.Op.String(),
		Location:    vm.code.LocationAt(vm.ip),
		StackDepth:  len(vm.stack),
		FrameDepth:  vm.fp + 1,
	})
}

func (vm *VirtualMachine) operationError(err error) *errz.Error {
	if errors.Is(err, object.ErrDivisionByZero) {
		return vm.runtimeError(errz.DivisionByZero, "%s", err)
	}
	if errors.Is(err, object.ErrUnknownOperator) {
		return vm.runtimeError(errz.UnknownOperator, "%s", err).WithCause(err)
	}
	return vm.runtimeError(errz.TypeError, "%s", err).WithCause(err)
}

func (vm *VirtualMachine) cancelled(cause error) *errz.Error {
	return vm.runtimeError(errz.Cancelled, "%s", cause).WithCause(cause)
}

func (vm *VirtualMachine) halted() *errz.Error {
	return vm.runtimeError(errz.Cancelled, "execution halted by observer")
}

// runtimeError creates an error located at the instruction being executed.
func (vm *VirtualMachine) runtimeError(kind errz.Kind, format string, args ...any) *errz.Error {
	pc := max(vm.ip-1, 0)
	return errz.Runtimef(kind, pc, vm.code.ErrorLocation(pc), format, args...)
}
