package vm

import (
	"context"

	"github.com/deepnoodle-ai/cellscript/bytecode"
)

// Run executes the given program in a new Virtual Machine.
func Run(ctx context.Context, main *bytecode.Code, options ...Option) error {
	return New(main, options...).Run(ctx)
}
