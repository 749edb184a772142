// Package bytecode provides the immutable representation of a compiled
// cellscript program.
//
// A [Code] holds one flat instruction stream: the top-level statements and
// every function body live side by side, and function bodies are entered by
// jumping to their entry index. Each instruction is a packed 32-bit word (see
// [op.Instruction]).
//
// # Key Types
//
//   - [Code]: instructions, constant pool, global names, function metadata,
//     and a per-instruction source map
//   - [Function]: metadata about one compiled function (entry, parameters,
//     local slot count)
//   - [SourceLocation]: maps an instruction to a source position
//
// # Immutability Guarantees
//
// Constructors copy their input slices and no mutation methods exist, so a
// Code may be shared by any number of virtual machines. Collections are
// exposed through index-based accessors:
//
//	code.InstructionAt(0)
//	code.ConstantAt(i)
//	code.FunctionAt(j)
//
// # Serialization
//
// [Marshal] and [Unmarshal] convert a Code to and from a canonical CBOR
// document tagged with [FormatVersion]. Documents written by a different
// format version are rejected.
package bytecode
