// Package errz defines the closed set of error kinds raised while parsing,
// compiling, and executing cellscript programs.
package errz

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the category of an error. The set is closed: every failure
// the parser, compiler, or virtual machine can produce maps to one Kind.
type Kind int

const (
	// Syntax indicates the source text could not be parsed.
	Syntax Kind = iota + 1
	// UnknownNode indicates an AST cell with an unrecognized kind.
	UnknownNode
	// UnknownOperator indicates an unrecognized unary or binary operator, in
	// a tree cell or in the operand of a loaded instruction.
	UnknownOperator
	// UnresolvedName indicates a reference to an identifier that was never assigned.
	UnresolvedName
	// UnresolvedCall indicates a call to a name that is neither a variable
	// nor a builtin.
	UnresolvedCall
	// InvalidLiteral indicates a numeric literal whose digits do not parse.
	InvalidLiteral
	// InvalidReturn indicates a return statement outside of a function body.
	InvalidReturn
	// ArityMismatch indicates a call with the wrong number of arguments.
	ArityMismatch
	// CapacityExceeded indicates a fixed limit was hit: constants, slots,
	// jump distance, value stack, or call frames.
	CapacityExceeded
	// UnknownOpcode indicates the VM decoded an opcode it does not implement.
	UnknownOpcode
	// StackImbalance indicates values were left on (or missing from) the
	// value stack where the compiler guarantees neutrality.
	StackImbalance
	// DivisionByZero indicates an integer division by zero.
	DivisionByZero
	// TypeError indicates a value of the wrong kind was used, such as calling
	// a slot that does not hold a function entry.
	TypeError
	// Cancelled indicates the host cancelled execution through its context.
	Cancelled
)

var kindNames = map[Kind]string{
	Syntax:           "syntax error",
	UnknownNode:      "unknown node",
	UnknownOperator:  "unknown operator",
	UnresolvedName:   "unresolved name",
	UnresolvedCall:   "unresolved call",
	InvalidLiteral:   "invalid literal",
	InvalidReturn:    "invalid return",
	ArityMismatch:    "arity mismatch",
	CapacityExceeded: "capacity exceeded",
	UnknownOpcode:    "unknown opcode",
	StackImbalance:   "stack imbalance",
	DivisionByZero:   "division by zero",
	TypeError:        "type error",
	Cancelled:        "cancelled",
}

// String returns the string representation of the error kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "error"
}

// Phase describes which stage of the pipeline raised an error.
type Phase int

const (
	ParsePhase Phase = iota + 1
	CompilePhase
	RuntimePhase
)

func (p Phase) String() string {
	switch p {
	case ParsePhase:
		return "parse"
	case CompilePhase:
		return "compile"
	case RuntimePhase:
		return "runtime"
	default:
		return "unknown"
	}
}

// SourceLocation points at a position in source code. Programs built
// directly as ASTs have no locations; IsZero reports that case.
type SourceLocation struct {
	Filename string
	Line     int    // 1-based line number
	Column   int    // 1-based column number
	Source   string // The line of source code
}

// String returns a formatted string representation of the source location.
func (s SourceLocation) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsZero returns true if the location has not been set.
func (s SourceLocation) IsZero() bool {
	return s.Line == 0 && s.Column == 0
}

// Error is the single error type produced by this module. Every error is
// fatal to the run that raised it; nothing in the pipeline recovers.
type Error struct {
	Kind        Kind
	Phase       Phase
	Message     string
	Location    SourceLocation
	PC          int // instruction index for runtime errors, -1 otherwise
	Suggestions []Suggestion
	Cause       error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Phase.String())
	b.WriteString(" error: ")
	b.WriteString(e.Kind.String())
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if !e.Location.IsZero() {
		fmt.Fprintf(&b, " (%s)", e.Location)
	} else if e.PC >= 0 {
		fmt.Fprintf(&b, " (pc %d)", e.PC)
	}
	return b.String()
}

// Unwrap returns the underlying cause of the error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause wraps the error with a cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// FriendlyErrorMessage returns the error with a source snippet, a caret
// under the offending column, and any "did you mean" hint.
func (e *Error) FriendlyErrorMessage() string {
	var msg bytes.Buffer
	msg.WriteString(e.Error())
	msg.WriteString("\n")
	if e.Location.Source != "" {
		msg.WriteString(" | ")
		msg.WriteString(e.Location.Source)
		msg.WriteString("\n")
		if e.Location.Column > 0 {
			msg.WriteString(" | ")
			msg.WriteString(strings.Repeat(" ", e.Location.Column-1))
			msg.WriteString("^\n")
		}
	}
	if hint := FormatSuggestions(e.Suggestions); hint != "" {
		msg.WriteString("hint: ")
		msg.WriteString(hint)
		msg.WriteString("\n")
	}
	return msg.String()
}

// Syntaxf creates a parse-phase error.
func Syntaxf(loc SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:     Syntax,
		Phase:    ParsePhase,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		PC:       -1,
	}
}

// Compilef creates a compile-phase error of the given kind.
func Compilef(kind Kind, loc SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Phase:    CompilePhase,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		PC:       -1,
	}
}

// Runtimef creates a runtime error of the given kind raised at pc.
func Runtimef(kind Kind, pc int, loc SourceLocation, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Phase:    RuntimePhase,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
		PC:       pc,
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// PhaseOf returns the Phase of the first *Error in err's chain.
func PhaseOf(err error) (Phase, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Phase, true
	}
	return 0, false
}
