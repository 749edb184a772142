// Package cellscript parses, compiles, and runs cellscript programs.
//
// Source text is parsed into an arena of cells, compiled into a packed
// bytecode stream, and executed by a stack-based virtual machine:
//
//	err := cellscript.Eval(ctx, "print 1 + 2", cellscript.WithOutput(w))
//
// Compile and Run may also be used separately. Compiled code is immutable,
// so one *bytecode.Code can be run any number of times.
package cellscript

import (
	"context"

	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/compiler"
	"github.com/deepnoodle-ai/cellscript/parser"
	"github.com/deepnoodle-ai/cellscript/vm"
	"github.com/gofrs/uuid"
)

// Parse parses source code and returns the arena holding the tree together
// with the handle of its root cell.
func Parse(ctx context.Context, source string, opts ...Option) (*ast.Arena, ast.Ref, error) {
	cfg := newConfig(opts...)
	return parser.Parse(ctx, source, cfg.parserOpts()...)
}

// Compile parses and compiles source code into executable bytecode.
func Compile(ctx context.Context, source string, opts ...Option) (*bytecode.Code, error) {
	cfg := newConfig(opts...)
	arena, root, err := parser.Parse(ctx, source, cfg.parserOpts()...)
	if err != nil {
		return nil, err
	}
	defer arena.Release()
	return compiler.Compile(arena, root, cfg.compilerOpts(source)...)
}

// Run executes compiled bytecode on a fresh virtual machine.
func Run(ctx context.Context, code *bytecode.Code, opts ...Option) error {
	cfg := newConfig(opts...)
	id := cfg.sessionID
	if id == "" {
		id = NewSessionID()
	}
	logger := cfg.logger.With().Str("session", id).Logger()
	return vm.Run(ctx, code, cfg.vmOpts(logger)...)
}

// Eval is a convenience function that compiles and runs source code.
// It is equivalent to Compile() followed by Run().
func Eval(ctx context.Context, source string, opts ...Option) error {
	code, err := Compile(ctx, source, opts...)
	if err != nil {
		return err
	}
	return Run(ctx, code, opts...)
}

// NewSessionID returns a random id used to correlate the log events of one
// run.
func NewSessionID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
