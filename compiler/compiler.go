// Package compiler is used to compile a cellscript abstract syntax tree (AST)
// into the corresponding bytecode.
//
// # Single Recursive Walk
//
// The compiler makes one pass over the tree. Every compile step returns the
// number of instructions it emitted, and control-flow constructs use those
// counts to compute relative jump displacements. A forward jump is emitted
// with a placeholder operand and patched once the length of the code it
// skips is known, so no second pass over the instruction stream is needed.
//
// # Symbol Scopes
//
// The compiler tracks two variable scopes:
//
//   - Global: program-level variables, accessed via LOAD_GLOBAL/STORE_GLOBAL
//   - Local: function-local variables, accessed via LOAD_LOCAL/STORE_LOCAL
//
// Each function body gets a fresh local table. Bodies see their own locals
// and the globals; there are no closures over an enclosing function's locals.
//
// # Functions
//
// Function bodies are emitted inline, behind an unconditional jump that skips
// them. The function's variable slot is then assigned an integer constant
// holding the entry index of the body. A call pushes its arguments left to
// right and transfers control to that entry:
//
//	JUMP +n                  ; skip the body
//	ALLOC_FRAME locals params
//	BIND_PARAM k-1 ... 0     ; last declared parameter binds first
//	<body>
//	LOAD_CONST false         ; result when the body falls through
//	RETURN
//	LOAD_CONST <entry>
//	STORE_GLOBAL|STORE_LOCAL slot
package compiler

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/builtins"
	"github.com/deepnoodle-ai/cellscript/bytecode"
	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/object"
	"github.com/deepnoodle-ai/cellscript/op"
	"github.com/rs/zerolog"
)

// Placeholder is a temporary jump operand written during compilation, which
// is always replaced before compilation is complete.
const Placeholder = math.MaxInt16

// ErrAlreadyUsed is returned when CompileAST is called a second time.
var ErrAlreadyUsed = errors.New("compiler: a Compiler may only be used once")

// function holds the state of the function body being compiled.
type function struct {
	name        string
	locals      *SymbolTable
	returnJumps []int
}

// Compiler compiles one AST into bytecode. A Compiler is single-use and not
// safe for concurrent use.
type Compiler struct {
	arena   *ast.Arena
	code    *Code
	globals *SymbolTable
	fn      *function // nil at the top level

	// Set on a capacity failure detected while emitting
	failure error

	// Position of the cell being compiled, recorded for each instruction
	pos ast.Position

	filename        string
	source          string
	logger          zerolog.Logger
	maxConstants    int
	maxInstructions int
	used            bool
}

// New creates and returns a new Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		code:            &Code{},
		globals:         NewSymbolTable(),
		logger:          zerolog.Nop(),
		maxConstants:    DefaultMaxConstants,
		maxInstructions: DefaultMaxInstructions,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile compiles the tree rooted at root and returns immutable bytecode.
func Compile(arena *ast.Arena, root ast.Ref, opts ...Option) (*bytecode.Code, error) {
	return New(opts...).CompileAST(arena, root)
}

// CompileAST compiles the tree rooted at root. A bare expression at the root
// is compiled as if it were wrapped in a print statement.
func (c *Compiler) CompileAST(arena *ast.Arena, root ast.Ref) (*bytecode.Code, error) {
	if c.used {
		return nil, ErrAlreadyUsed
	}
	c.used = true
	c.arena = arena

	if root != ast.NoRef {
		node := arena.Get(root)
		var err error
		if node.Kind.IsExpression() {
			_, err = c.compilePrintOf(root)
		} else {
			_, err = c.compileStatement(root)
		}
		if err != nil {
			return nil, err
		}
	}
	if c.failure != nil {
		return nil, c.failure
	}
	c.logger.Debug().
		Str("filename", c.filename).
		Int("instructions", len(c.code.instructions)).
		Int("constants", len(c.code.constants)).
		Int("globals", c.globals.Count()).
		Int("functions", len(c.code.functions)).
		Msg("compiled program")
	return c.code.ToBytecode(c.globals, c.filename, c.source), nil
}

// Code returns the buffer being compiled into.
func (c *Compiler) Code() *Code {
	return c.code
}

// Globals returns the global symbol table.
func (c *Compiler) Globals() *SymbolTable {
	return c.globals
}

// compile emits the code for one cell and returns how many instructions it
// emitted.
func (c *Compiler) compile(ref ast.Ref) (int, error) {
	if c.failure != nil {
		return 0, c.failure
	}
	node := c.arena.Get(ref)
	prevPos := c.pos
	if node.Pos.IsValid() {
		c.pos = node.Pos
	}
	defer func() { c.pos = prevPos }()

	start := len(c.code.instructions)
	var err error
	switch node.Kind {
	case ast.Statements:
		err = c.compileStatements(node)
	case ast.Assign:
		err = c.compileAssign(ref, node)
	case ast.If:
		err = c.compileIf(node)
	case ast.While:
		err = c.compileWhile(node)
	case ast.Print:
		err = c.compilePrint(node)
	case ast.Call:
		err = c.compileCall(ref, node)
	case ast.UnaryOp:
		err = c.compileUnary(ref, node)
	case ast.BinaryOp:
		err = c.compileBinary(ref, node)
	case ast.BoolLiteral:
		c.emitConstant(object.NewBool(node.Flag))
	case ast.IntLiteral:
		err = c.compileInt(ref, node)
	case ast.FloatLiteral:
		err = c.compileFloat(ref, node)
	case ast.Identifier:
		err = c.compileIdent(ref, node)
	case ast.Function:
		err = c.compileFunc(ref, node)
	case ast.Return:
		err = c.compileReturn(ref, node)
	default:
		if ref == ast.NoRef {
			err = c.errorf(errz.UnknownNode, ref, "missing node")
		} else {
			err = c.errorf(errz.UnknownNode, ref, "unknown node kind %s", node.Kind)
		}
	}
	if err == nil {
		err = c.failure
	}
	if err != nil {
		return 0, err
	}
	return len(c.code.instructions) - start, nil
}

// compileStatement compiles a cell in statement position. Expressions leave a
// value behind, which is discarded so that every statement is stack-neutral.
func (c *Compiler) compileStatement(ref ast.Ref) (int, error) {
	n, err := c.compile(ref)
	if err != nil {
		return 0, err
	}
	if c.arena.Get(ref).Kind.IsExpression() {
		c.emit(op.PopTop)
		n++
	}
	return n, nil
}

func (c *Compiler) compileStatements(node ast.Node) error {
	for stmt := range c.arena.Chain(node.Left) {
		if _, err := c.compileStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) compilePrintOf(expr ast.Ref) (int, error) {
	n, err := c.compile(expr)
	if err != nil {
		return 0, err
	}
	c.emit(op.Print)
	return n + 1, nil
}

func (c *Compiler) compilePrint(node ast.Node) error {
	_, err := c.compilePrintOf(node.Left)
	return err
}

// activeTable returns the table assignments declare into.
func (c *Compiler) activeTable() *SymbolTable {
	if c.fn != nil {
		return c.fn.locals
	}
	return c.globals
}

func (c *Compiler) compileAssign(ref ast.Ref, node ast.Node) error {
	sym, err := c.declare(ref, node.Text)
	if err != nil {
		return err
	}
	if _, err := c.compile(node.Left); err != nil {
		return err
	}
	sym.arity = -1
	c.emitStore(sym)
	return nil
}

func (c *Compiler) declare(ref ast.Ref, name string) (*Symbol, error) {
	sym, err := c.activeTable().Declare(name)
	if err != nil {
		return nil, c.errorf(errz.CapacityExceeded, ref, "%s: cannot declare %q", err, name)
	}
	return sym, nil
}

func (c *Compiler) compileIf(node ast.Node) error {
	if _, err := c.compile(node.Left); err != nil {
		return err
	}
	guardPos := c.emit(op.PopJumpIfFalse, Placeholder)
	branch := c.arena.Get(node.Right)
	thenLen, err := c.compile(branch.Left)
	if err != nil {
		return err
	}
	if branch.Right == ast.NoRef {
		return c.patchJump(guardPos, thenLen)
	}
	// Jump over the alternative once the consequence has run
	jumpPos := c.emit(op.Jump, Placeholder)
	if err := c.patchJump(guardPos, thenLen+1); err != nil {
		return err
	}
	elseLen, err := c.compile(branch.Right)
	if err != nil {
		return err
	}
	return c.patchJump(jumpPos, elseLen)
}

func (c *Compiler) compileWhile(node ast.Node) error {
	condLen, err := c.compile(node.Left)
	if err != nil {
		return err
	}
	guardPos := c.emit(op.PopJumpIfFalse, Placeholder)
	bodyLen, err := c.compile(node.Right)
	if err != nil {
		return err
	}
	back := -(condLen + bodyLen + 2)
	if !op.FitsA(back) {
		return c.errorf(errz.CapacityExceeded, ast.NoRef, "loop body is too large to jump over (%d instructions)", -back)
	}
	c.emit(op.Jump, back)
	return c.patchJump(guardPos, bodyLen+1)
}

func (c *Compiler) compileCall(ref ast.Ref, node ast.Node) error {
	name := node.Text
	argc := c.arena.ChainLen(node.Left)
	if argc > op.MaxArgs {
		return c.errorf(errz.CapacityExceeded, ref, "call to %q has %d arguments (max %d)", name, argc, op.MaxArgs)
	}
	callOp, index, err := c.resolveCallee(ref, name, argc)
	if err != nil {
		return err
	}
	for arg := range c.arena.Chain(node.Left) {
		if _, err := c.compile(arg); err != nil {
			return err
		}
	}
	c.emit(callOp, index, argc)
	return nil
}

// resolveCallee finds the call target: the local table first, then globals,
// then built-ins.
func (c *Compiler) resolveCallee(ref ast.Ref, name string, argc int) (op.Code, int, error) {
	checkArity := func(sym *Symbol) error {
		if arity, ok := sym.Arity(); ok && arity != argc {
			return c.errorf(errz.ArityMismatch, ref, "%s: expected %d argument(s), got %d", name, arity, argc)
		}
		return nil
	}
	if c.fn != nil {
		if sym, ok := c.fn.locals.Get(name); ok {
			return op.CallLocal, sym.Index(), checkArity(sym)
		}
	}
	if sym, ok := c.globals.Get(name); ok {
		return op.CallGlobal, sym.Index(), checkArity(sym)
	}
	if index, ok := builtins.Lookup(name); ok {
		b, _ := builtins.Get(index)
		if err := b.CheckArity(argc); err != nil {
			return 0, 0, c.errorf(errz.ArityMismatch, ref, "%s", err)
		}
		return op.CallBuiltin, index, nil
	}
	candidates := append(c.visibleNames(), builtins.Names()...)
	err := c.errorf(errz.UnresolvedCall, ref, "undefined function %q", name)
	err.Suggestions = errz.SuggestSimilar(name, candidates)
	return 0, 0, err
}

func (c *Compiler) compileUnary(ref ast.Ref, node ast.Node) error {
	var opcode op.Code
	switch node.Op {
	case ast.Not:
		opcode = op.UnaryNot
	case ast.Pos:
		opcode = op.UnaryPositive
	case ast.Neg:
		opcode = op.UnaryNegative
	default:
		return c.errorf(errz.UnknownOperator, ref, "unknown unary operator %s", node.Op)
	}
	if _, err := c.compile(node.Left); err != nil {
		return err
	}
	c.emit(opcode)
	return nil
}

var binaryOps = map[ast.Operator]op.BinaryOpType{
	ast.Add: op.Add,
	ast.Sub: op.Subtract,
	ast.Mul: op.Multiply,
	ast.Div: op.Divide,
}

var compareOps = map[ast.Operator]op.CompareOpType{
	ast.Gt: op.GreaterThan,
	ast.Ge: op.GreaterThanOrEqual,
	ast.Eq: op.Equal,
	ast.Ne: op.NotEqual,
	ast.Lt: op.LessThan,
	ast.Le: op.LessThanOrEqual,
}

func (c *Compiler) compileBinary(ref ast.Ref, node ast.Node) error {
	switch node.Op {
	case ast.And:
		return c.compileShortCircuit(node, op.JumpIfFalseKeep)
	case ast.Or:
		return c.compileShortCircuit(node, op.JumpIfTrueKeep)
	}
	bop, isBinary := binaryOps[node.Op]
	cop, isCompare := compareOps[node.Op]
	if !isBinary && !isCompare {
		return c.errorf(errz.UnknownOperator, ref, "unknown binary operator %s", node.Op)
	}
	if _, err := c.compile(node.Left); err != nil {
		return err
	}
	if _, err := c.compile(node.Right); err != nil {
		return err
	}
	if isBinary {
		c.emit(op.BinaryOp, int(bop))
	} else {
		c.emit(op.CompareOp, int(cop))
	}
	return nil
}

// compileShortCircuit emits "and"/"or". When the jump is taken the left value
// stays on the stack as the result; otherwise it is popped and the right
// operand is evaluated in its place.
func (c *Compiler) compileShortCircuit(node ast.Node, jump op.Code) error {
	if _, err := c.compile(node.Left); err != nil {
		return err
	}
	jumpPos := c.emit(jump, Placeholder)
	c.emit(op.PopTop)
	rightLen, err := c.compile(node.Right)
	if err != nil {
		return err
	}
	return c.patchJump(jumpPos, 1+rightLen)
}

func (c *Compiler) compileInt(ref ast.Ref, node ast.Node) error {
	i, err := strconv.ParseInt(node.Text, 10, 64)
	if err != nil {
		return c.errorf(errz.InvalidLiteral, ref, "invalid integer literal %q", node.Text).WithCause(err)
	}
	c.emitConstant(object.NewInt(i))
	return nil
}

func (c *Compiler) compileFloat(ref ast.Ref, node ast.Node) error {
	f, err := strconv.ParseFloat(node.Text, 64)
	if err != nil {
		return c.errorf(errz.InvalidLiteral, ref, "invalid float literal %q", node.Text).WithCause(err)
	}
	c.emitConstant(object.NewFloat(f))
	return nil
}

func (c *Compiler) compileIdent(ref ast.Ref, node ast.Node) error {
	if c.fn != nil {
		if sym, ok := c.fn.locals.Get(node.Text); ok {
			c.emit(op.LoadLocal, sym.Index())
			return nil
		}
	}
	if sym, ok := c.globals.Get(node.Text); ok {
		c.emit(op.LoadGlobal, sym.Index())
		return nil
	}
	err := c.errorf(errz.UnresolvedName, ref, "undefined variable %q", node.Text)
	err.Suggestions = errz.SuggestSimilar(node.Text, c.visibleNames())
	return err
}

func (c *Compiler) compileFunc(ref ast.Ref, node ast.Node) error {
	name := node.Text
	paramCount := c.arena.ChainLen(node.Left)
	if paramCount > op.MaxArgs {
		return c.errorf(errz.CapacityExceeded, ref, "function %q has %d parameters (max %d)", name, paramCount, op.MaxArgs)
	}
	_, rebound := c.activeTable().Get(name)
	// Declared before the body so that the body can call itself
	sym, err := c.declare(ref, name)
	if err != nil {
		return err
	}
	// A second binding may sit on a path that never runs, so only the first
	// one fixes the arity checked at compile time.
	if rebound {
		sym.arity = -1
	} else {
		sym.arity = paramCount
	}

	skipPos := c.emit(op.Jump, Placeholder)
	entry := len(c.code.instructions)

	outer := c.fn
	c.fn = &function{name: name, locals: NewSymbolTable()}
	defer func() { c.fn = outer }()

	var params []string
	for p := range c.arena.Chain(node.Left) {
		pname := c.arena.Get(p).Text
		if _, err := c.declare(p, pname); err != nil {
			return err
		}
		params = append(params, pname)
	}
	allocPos := c.emit(op.AllocFrame, Placeholder, paramCount)
	for i := paramCount - 1; i >= 0; i-- {
		c.emit(op.BindParam, i)
	}
	if _, err := c.compile(node.Right); err != nil {
		return err
	}
	c.emitConstant(object.False)
	epilogue := c.emit(op.Return)
	for _, pos := range c.fn.returnJumps {
		if err := c.patchJump(pos, epilogue-(pos+1)); err != nil {
			return err
		}
	}
	c.code.instructions[allocPos].A = int16(c.fn.locals.Count())
	end := len(c.code.instructions)
	if err := c.patchJump(skipPos, end-entry); err != nil {
		return err
	}
	c.code.functions = append(c.code.functions, bytecode.NewFunction(bytecode.FunctionParams{
		Name:       name,
		Entry:      entry,
		End:        end,
		Parameters: params,
		LocalNames: c.fn.locals.Names(),
	}))
	c.logger.Debug().
		Str("function", name).
		Int("entry", entry).
		Int("params", paramCount).
		Int("locals", c.fn.locals.Count()).
		Msg("compiled function")

	c.fn = outer
	c.emitConstant(object.NewInt(int64(entry)))
	c.emitStore(sym)
	return nil
}

func (c *Compiler) compileReturn(ref ast.Ref, node ast.Node) error {
	if c.fn == nil {
		return c.errorf(errz.InvalidReturn, ref, "return outside of a function")
	}
	if node.Left != ast.NoRef {
		if _, err := c.compile(node.Left); err != nil {
			return err
		}
	} else {
		c.emitConstant(object.False)
	}
	c.fn.returnJumps = append(c.fn.returnJumps, c.emit(op.Jump, Placeholder))
	return nil
}

// visibleNames returns every variable name the current scope can resolve.
func (c *Compiler) visibleNames() []string {
	names := c.globals.Names()
	if c.fn != nil {
		names = append(c.fn.locals.Names(), names...)
	}
	return names
}

// emit appends an instruction and returns its position. Operands are A and
// then B; callers check that they fit.
func (c *Compiler) emit(opcode op.Code, operands ...int) int {
	in := op.Instruction{Op: opcode}
	if len(operands) > 0 {
		in.A = int16(operands[0])
	}
	if len(operands) > 1 {
		in.B = int8(operands[1])
	}
	pos := len(c.code.instructions)
	if pos >= c.maxInstructions && c.failure == nil {
		c.failure = c.errorf(errz.CapacityExceeded, ast.NoRef, "program exceeds %d instructions", c.maxInstructions)
	}
	c.code.instructions = append(c.code.instructions, in)
	c.code.locations = append(c.code.locations, bytecode.SourceLocation{Line: c.pos.Line, Column: c.pos.Column})
	return pos
}

// emitConstant appends v to the constant pool and loads it. Constants are
// not deduplicated.
func (c *Compiler) emitConstant(v object.Value) {
	if len(c.code.constants) >= c.maxConstants {
		if c.failure == nil {
			c.failure = c.errorf(errz.CapacityExceeded, ast.NoRef, "number of constants exceeds %d", c.maxConstants)
		}
		return
	}
	c.code.constants = append(c.code.constants, v)
	c.emit(op.LoadConst, len(c.code.constants)-1)
}

// emitStore stores into sym, which must come from activeTable.
func (c *Compiler) emitStore(sym *Symbol) {
	if c.fn != nil {
		c.emit(op.StoreLocal, sym.Index())
		return
	}
	c.emit(op.StoreGlobal, sym.Index())
}

// sourceLine returns the 1-based line of source, or "" when unknown.
func sourceLine(source string, line int) string {
	for i := 1; source != ""; i++ {
		next, rest, found := strings.Cut(source, "\n")
		if i == line {
			return next
		}
		if !found {
			break
		}
		source = rest
	}
	return ""
}

// patchJump replaces the placeholder displacement of the jump at pos.
func (c *Compiler) patchJump(pos, delta int) error {
	if !op.FitsA(delta) {
		return c.errorf(errz.CapacityExceeded, ast.NoRef, "jump destination is too far away (%d instructions)", delta)
	}
	c.code.instructions[pos].A = int16(delta)
	return nil
}

// errorf builds a compile error located at ref, or at the cell currently
// being compiled when ref is NoRef or has no position.
func (c *Compiler) errorf(kind errz.Kind, ref ast.Ref, format string, args ...any) *errz.Error {
	pos := c.arena.Pos(ref)
	if !pos.IsValid() {
		pos = c.pos
	}
	var loc errz.SourceLocation
	if pos.IsValid() {
		loc = errz.SourceLocation{
			Filename: c.filename,
			Line:     pos.Line,
			Column:   pos.Column,
			Source:   sourceLine(c.source, pos.Line),
		}
	}
	return errz.Compilef(kind, loc, format, args...)
}
