package ast

// BlockSize is the number of cells in each arena block.
const BlockSize = 1024

// Arena owns every cell of one or more trees. Cells are allocated from
// fixed-size blocks; a new block is appended when the current one is full,
// so handles stay valid for the lifetime of the arena. Individual cells are
// never freed; Release drops everything at once.
type Arena struct {
	blocks [][]Node
	count  int
}

// New returns an empty arena.
func New() *Arena {
	return &Arena{}
}

// Alloc returns a handle to a fresh zero-initialized cell.
func (a *Arena) Alloc() Ref {
	if a.count == len(a.blocks)*BlockSize {
		a.blocks = append(a.blocks, make([]Node, BlockSize))
	}
	a.count++
	return Ref(a.count)
}

// Add allocates a cell holding a copy of n.
func (a *Arena) Add(n Node) Ref {
	ref := a.Alloc()
	*a.cell(ref) = n
	return ref
}

func (a *Arena) cell(ref Ref) *Node {
	i := int(ref) - 1
	return &a.blocks[i/BlockSize][i%BlockSize]
}

// Valid reports whether ref addresses a cell of this arena.
func (a *Arena) Valid(ref Ref) bool {
	return ref != NoRef && int(ref) <= a.count
}

// Get returns a copy of the cell at ref. An absent or out-of-range handle
// yields the zero Node, whose Kind is Invalid.
func (a *Arena) Get(ref Ref) Node {
	if !a.Valid(ref) {
		return Node{}
	}
	return *a.cell(ref)
}

// SetPos records the source position of a cell.
func (a *Arena) SetPos(ref Ref, pos Position) {
	if a.Valid(ref) {
		a.cell(ref).Pos = pos
	}
}

// Pos returns the source position of a cell.
func (a *Arena) Pos(ref Ref) Position {
	return a.Get(ref).Pos
}

// Len returns the number of allocated cells.
func (a *Arena) Len() int {
	return a.count
}

// Blocks returns the number of blocks backing the arena.
func (a *Arena) Blocks() int {
	return len(a.blocks)
}

// Release drops every block. All handles become invalid.
func (a *Arena) Release() {
	a.blocks = nil
	a.count = 0
}

// Append splices item onto the end of the chain starting at head and returns
// the head of the resulting chain. A cell may belong to only one chain.
func (a *Arena) Append(head, item Ref) Ref {
	if head == NoRef {
		return item
	}
	last := head
	for {
		next := a.cell(last).Next
		if next == NoRef {
			break
		}
		last = next
	}
	a.cell(last).Next = item
	return head
}

func (a *Arena) chain(refs []Ref) Ref {
	var head Ref
	for _, r := range refs {
		head = a.Append(head, r)
	}
	return head
}

// NewInt creates an integer literal cell from its source digits.
func (a *Arena) NewInt(digits string) Ref {
	return a.Add(Node{Kind: IntLiteral, Text: digits})
}

// NewFloat creates a float literal cell from its source digits.
func (a *Arena) NewFloat(digits string) Ref {
	return a.Add(Node{Kind: FloatLiteral, Text: digits})
}

// NewBool creates a boolean literal cell.
func (a *Arena) NewBool(v bool) Ref {
	return a.Add(Node{Kind: BoolLiteral, Flag: v})
}

// NewIdent creates an identifier reference.
func (a *Arena) NewIdent(name string) Ref {
	return a.Add(Node{Kind: Identifier, Text: name})
}

// NewBinary creates a binary operation.
func (a *Arena) NewBinary(op Operator, left, right Ref) Ref {
	return a.Add(Node{Kind: BinaryOp, Op: op, Left: left, Right: right})
}

// NewUnary creates a unary operation.
func (a *Arena) NewUnary(op Operator, operand Ref) Ref {
	return a.Add(Node{Kind: UnaryOp, Op: op, Left: operand})
}

// NewAssign creates an assignment of value to name.
func (a *Arena) NewAssign(name string, value Ref) Ref {
	return a.Add(Node{Kind: Assign, Text: name, Left: value})
}

// NewIf creates a conditional. els may be NoRef, a Statements cell, or
// another If for else-if chains.
func (a *Arena) NewIf(cond, then, els Ref) Ref {
	branch := a.Add(Node{Kind: Branch, Left: then, Right: els})
	return a.Add(Node{Kind: If, Left: cond, Right: branch})
}

// NewWhile creates a loop.
func (a *Arena) NewWhile(cond, body Ref) Ref {
	return a.Add(Node{Kind: While, Left: cond, Right: body})
}

// NewPrint creates a print statement.
func (a *Arena) NewPrint(expr Ref) Ref {
	return a.Add(Node{Kind: Print, Left: expr})
}

// NewCall creates a call to name, chaining args in order.
func (a *Arena) NewCall(name string, args ...Ref) Ref {
	return a.Add(Node{Kind: Call, Text: name, Left: a.chain(args)})
}

// NewFunction creates a function declaration. Each parameter becomes an
// Identifier cell in the parameter chain.
func (a *Arena) NewFunction(name string, params []string, body Ref) Ref {
	refs := make([]Ref, len(params))
	for i, p := range params {
		refs[i] = a.NewIdent(p)
	}
	return a.Add(Node{Kind: Function, Text: name, Left: a.chain(refs), Right: body})
}

// NewReturn creates a return statement. expr may be NoRef.
func (a *Arena) NewReturn(expr Ref) Ref {
	return a.Add(Node{Kind: Return, Left: expr})
}

// NewStatements creates a statement list, chaining stmts in order.
func (a *Arena) NewStatements(stmts ...Ref) Ref {
	return a.Add(Node{Kind: Statements, Left: a.chain(stmts)})
}
