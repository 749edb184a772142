package parser

import (
	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/internal/token"
)

// Precedence order for operators
const (
	_ int = iota
	LOWEST
	OR          // or ||
	AND         // and &&
	EQUALS      // == or !=
	LESSGREATER // > or <
	SUM         // + or -
	PRODUCT     // * or /
	PREFIX      // -X or !X
	CALL        // myFunction(X)
)

// Precedences for each token type
var precedences = map[token.Type]int{
	token.OR:        OR,
	token.AND:       AND,
	token.EQ:        EQUALS,
	token.NOT_EQ:    EQUALS,
	token.LT:        LESSGREATER,
	token.LT_EQUALS: LESSGREATER,
	token.GT:        LESSGREATER,
	token.GT_EQUALS: LESSGREATER,
	token.PLUS:      SUM,
	token.MINUS:     SUM,
	token.SLASH:     PRODUCT,
	token.ASTERISK:  PRODUCT,
	token.LPAREN:    CALL,
}

// Operators produced by each infix token
var binaryOperators = map[token.Type]ast.Operator{
	token.OR:        ast.Or,
	token.AND:       ast.And,
	token.EQ:        ast.Eq,
	token.NOT_EQ:    ast.Ne,
	token.LT:        ast.Lt,
	token.LT_EQUALS: ast.Le,
	token.GT:        ast.Gt,
	token.GT_EQUALS: ast.Ge,
	token.PLUS:      ast.Add,
	token.MINUS:     ast.Sub,
	token.SLASH:     ast.Div,
	token.ASTERISK:  ast.Mul,
}

// Operators produced by each prefix token
var unaryOperators = map[token.Type]ast.Operator{
	token.BANG:  ast.Not,
	token.NOT:   ast.Not,
	token.MINUS: ast.Neg,
	token.PLUS:  ast.Pos,
}
