package vm

import (
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/object"
)

const (
	// DefaultFrameLocals is the number of local variables that can be stored
	// directly in the frame's fixed storage array, avoiding heap allocation.
	DefaultFrameLocals = 8

	// MinExtendedLocalsCapacity is the minimum capacity allocated for extended
	// locals when heap allocation is needed.
	MinExtendedLocalsCapacity = 32
)

// frame is one activation of a user function. Frames are reused across
// calls at the same depth.
type frame struct {
	returnAddr     int // ip to resume at in the caller
	callSiteIP     int // ip of the CALL_* instruction
	argc           int // arguments pushed by the caller
	base           int // value stack height before the arguments were pushed
	fn             *bytecode.Function
	storage        [DefaultFrameLocals]object.Value
	locals         []object.Value
	extendedLocals []object.Value
}

func (f *frame) activate(fn *bytecode.Function, callSiteIP, returnAddr, argc, base int) {
	f.fn = fn
	f.callSiteIP = callSiteIP
	f.returnAddr = returnAddr
	f.argc = argc
	f.base = base
	f.locals = nil
}

// allocLocals sizes the local slots for the active call. Every slot starts
// out false.
func (f *frame) allocLocals(count int) {
	if count > DefaultFrameLocals {
		if cap(f.extendedLocals) >= count {
			f.extendedLocals = f.extendedLocals[:count]
			clear(f.extendedLocals)
		} else {
			f.extendedLocals = make([]object.Value, count, max(count, MinExtendedLocalsCapacity))
		}
		f.locals = f.extendedLocals
		return
	}
	clear(f.storage[:count])
	f.locals = f.storage[:count]
}

func (f *frame) name() string {
	if f.fn == nil {
		return "<anonymous>"
	}
	return f.fn.Name()
}
