package vm

import (
	"io"

	"github.com/rs/zerolog"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithOutput sets the writer PRINT writes to. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithLogger sets the logger used for run start and finish events.
func WithLogger(logger zerolog.Logger) Option {
	return func(vm *VirtualMachine) {
		vm.logger = logger
	}
}

// WithMaxStackDepth sets the capacity of the value stack. Pushing past it
// raises a CapacityExceeded error.
func WithMaxStackDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth > 0 {
			vm.maxStackDepth = depth
		}
	}
}

// WithMaxFrameDepth sets the maximum number of nested calls.
func WithMaxFrameDepth(depth int) Option {
	return func(vm *VirtualMachine) {
		if depth > 0 {
			vm.maxFrameDepth = depth
		}
	}
}

// WithContextCheckInterval sets how often the VM checks ctx.Done() during
// execution. The interval is specified in number of instructions. A value of 0
// disables checking, in which case cancellation is only noticed before the
// first instruction. The default is DefaultContextCheckInterval (1000).
//
// Lower values provide more responsive cancellation at a small cost per
// instruction.
func WithContextCheckInterval(interval int) Option {
	return func(vm *VirtualMachine) {
		if interval >= 0 {
			vm.contextCheckInterval = interval
		}
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives callbacks for instruction steps, function calls,
// and function returns. This enables profilers, debuggers, coverage tools,
// and execution tracers.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
