package compiler

import (
	"errors"

	"github.com/deepnoodle-ai/cellscript/op"
)

// MaxSymbols is the number of slots a single symbol table can hand out.
// Slot indexes and the local count of ALLOC_FRAME travel in the A operand.
const MaxSymbols = op.MaxA

// ErrTooManySymbols is returned when a table has no free slots left.
var ErrTooManySymbols = errors.New("too many variables")

// Symbol is a named variable slot.
type Symbol struct {
	name  string
	index int
	arity int // -1 unless the slot was last bound by a function declaration
}

// Name returns the variable name.
func (s *Symbol) Name() string { return s.name }

// Index returns the slot index.
func (s *Symbol) Index() int { return s.index }

// Arity returns the parameter count of the function last bound to this slot.
// The second result is false when the slot does not hold a known function.
func (s *Symbol) Arity() (int, bool) {
	return s.arity, s.arity >= 0
}

// SymbolTable is a flat, append-only mapping of names to slots. The compiler
// keeps one table for globals and a fresh one for each function body.
type SymbolTable struct {
	symbols []*Symbol
	byName  map[string]*Symbol
	limit   int
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: map[string]*Symbol{}, limit: MaxSymbols}
}

// Declare returns the symbol for name, appending a new slot when the name is
// not yet present.
func (t *SymbolTable) Declare(name string) (*Symbol, error) {
	if s, ok := t.byName[name]; ok {
		return s, nil
	}
	if len(t.symbols) >= t.limit {
		return nil, ErrTooManySymbols
	}
	s := &Symbol{name: name, index: len(t.symbols), arity: -1}
	t.symbols = append(t.symbols, s)
	t.byName[name] = s
	return s, nil
}

// Get returns the symbol for name without creating one.
func (t *SymbolTable) Get(name string) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// IsDefined returns true if name has a slot in this table.
func (t *SymbolTable) IsDefined(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Count returns the number of slots handed out.
func (t *SymbolTable) Count() int {
	return len(t.symbols)
}

// Symbol returns the symbol at the given slot.
func (t *SymbolTable) Symbol(index int) *Symbol {
	return t.symbols[index]
}

// Names returns the names of every slot, in slot order.
func (t *SymbolTable) Names() []string {
	names := make([]string, len(t.symbols))
	for i, s := range t.symbols {
		names[i] = s.name
	}
	return names
}
