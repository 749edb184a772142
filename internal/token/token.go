// Package token defines language keywords and tokens used when lexing source code.
package token

// Type describes the type of a token as a string.
type Type string

// Position points to a particular location in an input string.
type Position struct {
	Char      int // byte offset within the input
	LineStart int // byte offset of the start of the current line
	Line      int // 0-indexed line number
	Column    int // 0-indexed column number
}

// LineNumber returns the 1-indexed line number for this position in the input.
func (p Position) LineNumber() int {
	return p.Line + 1
}

// ColumnNumber returns the 1-indexed column number for this position in the input.
func (p Position) ColumnNumber() int {
	return p.Column + 1
}

// Advance returns a new Position advanced by n bytes on the same line.
func (p Position) Advance(n int) Position {
	return Position{
		Char:      p.Char + n,
		LineStart: p.LineStart,
		Line:      p.Line,
		Column:    p.Column + n,
	}
}

// Token represents one token lexed from the input source code.
type Token struct {
	Type          Type
	Literal       string
	StartPosition Position
	EndPosition   Position
}

// Token types
const (
	AND       Type = "AND"
	ASSIGN    Type = "="
	ASTERISK  Type = "*"
	BANG      Type = "!"
	COMMA     Type = ","
	DEF       Type = "DEF"
	ELSE      Type = "ELSE"
	EOF       Type = "EOF"
	EQ        Type = "=="
	FALSE     Type = "FALSE"
	FLOAT     Type = "FLOAT"
	FUNC      Type = "FUNC"
	GT        Type = ">"
	GT_EQUALS Type = ">="
	IDENT     Type = "IDENT"
	IF        Type = "IF"
	ILLEGAL   Type = "ILLEGAL"
	INT       Type = "INT"
	LBRACE    Type = "{"
	LET       Type = "LET"
	LPAREN    Type = "("
	LT        Type = "<"
	LT_EQUALS Type = "<="
	MINUS     Type = "-"
	NEWLINE   Type = "EOL"
	NOT       Type = "NOT"
	NOT_EQ    Type = "!="
	OR        Type = "OR"
	PLUS      Type = "+"
	PRINT     Type = "PRINT"
	RBRACE    Type = "}"
	RETURN    Type = "RETURN"
	RPAREN    Type = ")"
	SEMICOLON Type = ";"
	SLASH     Type = "/"
	TRUE      Type = "TRUE"
	WHILE     Type = "WHILE"
)

// Reserved keywords
var keywords = map[string]Type{
	"and":    AND,
	"def":    DEF,
	"else":   ELSE,
	"false":  FALSE,
	"func":   FUNC,
	"if":     IF,
	"let":    LET,
	"not":    NOT,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"true":   TRUE,
	"while":  WHILE,
}

// LookupIdentifier returns the keyword type for identifier, or IDENT when it
// is not reserved.
func LookupIdentifier(identifier string) Type {
	if tok, ok := keywords[identifier]; ok {
		return tok
	}
	return IDENT
}

