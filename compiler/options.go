package compiler

import (
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxConstants is the constant pool limit imposed by the width of
	// the A operand.
	DefaultMaxConstants = op.MaxA + 1

	// DefaultMaxInstructions bounds the length of a compiled program.
	DefaultMaxInstructions = 1 << 20
)

// Option is a configuration function for a Compiler.
type Option func(*Compiler)

// WithFilename sets the filename reported in error locations.
func WithFilename(filename string) Option {
	return func(c *Compiler) {
		c.filename = filename
	}
}

// WithSource provides the source text the tree was parsed from. It is used
// for error snippets and carried into the compiled program.
func WithSource(source string) Option {
	return func(c *Compiler) {
		c.source = source
	}
}

// WithLogger sets the logger used for debug events.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// WithMaxConstants lowers the constant pool limit. Values above
// DefaultMaxConstants are clamped.
func WithMaxConstants(n int) Option {
	return func(c *Compiler) {
		c.maxConstants = min(n, DefaultMaxConstants)
	}
}

// WithMaxInstructions sets the maximum program length.
func WithMaxInstructions(n int) Option {
	return func(c *Compiler) {
		c.maxInstructions = n
	}
}
