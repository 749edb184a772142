// Package parser is used to generate the abstract syntax tree (AST) for a program.
//
// A parser is created by calling New() with a lexer as input. The parser should
// then be used only once, by calling parser.Parse() to produce the AST. Every
// cell of the tree is allocated from a single ast.Arena owned by the caller.
package parser

import (
	"context"

	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/internal/lexer"
	"github.com/deepnoodle-ai/cellscript/internal/token"
)

type (
	prefixParseFn func() (ast.Ref, bool)
	infixParseFn  func(ast.Ref) (ast.Ref, bool)
)

// statementTerminators defines tokens that can end a statement.
//
// A trailing binary operator continues an expression onto the next line, so
// "x +\ny" is one expression while "x\n+ y" is two statements. Newlines
// inside parentheses never reach the parser.
var statementTerminators = map[token.Type]bool{
	token.SEMICOLON: true,
	token.NEWLINE:   true,
	token.RBRACE:    true,
	token.EOF:       true,
}

// Parse the provided input as cellscript source code and return the arena
// holding the tree and the handle of its root Statements cell. This is
// shorthand for creating a Lexer and Parser and then calling Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Arena, ast.Ref, error) {
	return New(lexer.New(input), options...).Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name reported in error locations.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// This prevents stack overflow on deeply nested input.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// WithArena makes the parser allocate cells from an existing arena instead
// of a fresh one.
func WithArena(arena *ast.Arena) Option {
	return func(p *Parser) {
		p.arena = arena
	}
}

// DefaultMaxDepth is the default maximum nesting depth for parsing.
const DefaultMaxDepth = 500

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// arena receives every cell the parser creates
	arena *ast.Arena

	// prevToken holds the previous token, which we already processed.
	prevToken token.Token

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// parsing errors collected during parsing
	errors []error

	// lexer errors keyed by the offset of the ILLEGAL token they describe
	lexErrors map[int]error

	// stmtErrorCount tracks error count at start of current statement.
	// Used by inner methods to detect if an error was added during this statement.
	stmtErrorCount int

	// prefixParseFns holds a map of parsing methods for
	// prefix-based syntax.
	prefixParseFns map[token.Type]prefixParseFn

	// infixParseFns holds a map of parsing methods for
	// infix-based syntax.
	infixParseFns map[token.Type]infixParseFn

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the program provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:              l,
		prefixParseFns: map[token.Type]prefixParseFn{},
		infixParseFns:  map[token.Type]infixParseFn{},
		lexErrors:      map[int]error{},
		maxDepth:       DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.arena == nil {
		p.arena = ast.New()
	}

	// Prime the token pump
	p.nextToken() // makes curToken=<empty>, peekToken=token[0]
	p.nextToken() // makes curToken=token[0], peekToken=token[1]

	// Register prefix-functions
	p.registerPrefix(token.BANG, p.parsePrefixExpr)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.FLOAT, p.parseFloat)
	p.registerPrefix(token.IDENT, p.parseIdent)
	p.registerPrefix(token.ILLEGAL, p.illegalToken)
	p.registerPrefix(token.INT, p.parseInt)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpr)
	p.registerPrefix(token.MINUS, p.parsePrefixExpr)
	p.registerPrefix(token.NOT, p.parsePrefixExpr)
	p.registerPrefix(token.PLUS, p.parsePrefixExpr)
	p.registerPrefix(token.TRUE, p.parseBoolean)

	// Register infix functions
	p.registerInfix(token.AND, p.parseInfixExpr)
	p.registerInfix(token.ASTERISK, p.parseInfixExpr)
	p.registerInfix(token.EQ, p.parseInfixExpr)
	p.registerInfix(token.GT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.GT, p.parseInfixExpr)
	p.registerInfix(token.LPAREN, p.parseCall)
	p.registerInfix(token.LT_EQUALS, p.parseInfixExpr)
	p.registerInfix(token.LT, p.parseInfixExpr)
	p.registerInfix(token.MINUS, p.parseInfixExpr)
	p.registerInfix(token.NOT_EQ, p.parseInfixExpr)
	p.registerInfix(token.OR, p.parseInfixExpr)
	p.registerInfix(token.PLUS, p.parseInfixExpr)
	p.registerInfix(token.SLASH, p.parseInfixExpr)

	return p
}

// nextToken moves to the next token from the lexer, updating all of
// prevToken, curToken, and peekToken. Lexer errors are remembered and
// reported once the ILLEGAL token they describe is consumed.
func (p *Parser) nextToken() {
	var err error
	p.prevToken = p.curToken
	p.curToken = p.peekToken
	p.peekToken, err = p.l.Next()
	if err != nil {
		p.lexErrors[p.peekToken.StartPosition.Char] = err
	}
}

// Parse the program that is provided via the lexer.
// Returns the arena, the root Statements cell, and any errors encountered.
// If there are errors, the tree may be partial (containing only successfully
// parsed statements).
func (p *Parser) Parse(ctx context.Context) (*ast.Arena, ast.Ref, error) {
	p.ctx = ctx
	// Parse the entire input program as a series of statements.
	// When a statement fails, we synchronize and continue to collect more errors.
	var statements []ast.Ref
	for p.curToken.Type != token.EOF {
		select {
		case <-ctx.Done():
			return p.arena, ast.NoRef, ctx.Err()
		default:
		}
		if p.tooManyErrors() {
			break
		}
		p.stmtErrorCount = len(p.errors)
		stmt := p.parseStatementStrict()
		if stmt != ast.NoRef {
			statements = append(statements, stmt)
		} else if p.hadNewError() {
			p.synchronize()
		}
		p.nextToken()
	}
	root := p.arena.NewStatements(statements...)
	return p.arena, root, p.result()
}

// registerPrefix registers a function for handling a prefix-based statement.
func (p *Parser) registerPrefix(tokenType token.Type, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

// registerInfix registers a function for handling an infix-based statement.
func (p *Parser) registerInfix(tokenType token.Type, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

// MaxErrors is the maximum number of errors to collect before stopping.
const MaxErrors = 10

func (p *Parser) addError(err *errz.Error) {
	p.errors = append(p.errors, err)
}

func (p *Parser) hasErrors() bool {
	return len(p.errors) > 0
}

func (p *Parser) tooManyErrors() bool {
	return len(p.errors) >= MaxErrors
}

// hadNewError returns true if an error was added during the current statement.
func (p *Parser) hadNewError() bool {
	return len(p.errors) > p.stmtErrorCount
}

// synchronize skips tokens until a statement terminator is reached, leaving
// it as the current token.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if statementTerminators[p.curToken.Type] {
			return
		}
		prevPos := p.curToken.StartPosition
		p.nextToken()
		// Safety: if we didn't advance (lexer stuck), bail out
		if p.curToken.StartPosition == prevPos {
			return
		}
	}
}

// cancelled checks if the parsing context has been cancelled.
func (p *Parser) cancelled() bool {
	if p.ctx == nil {
		return false
	}
	select {
	case <-p.ctx.Done():
		return true
	default:
		return false
	}
}

func (p *Parser) parseStatementStrict() ast.Ref {
	stmt := p.parseStatement()
	if stmt == ast.NoRef {
		return ast.NoRef
	}
	// statement should end with a semicolon or a closing brace, or the next
	// token should be a statement terminator
	if !p.curTokenIs(token.SEMICOLON) && !p.curTokenIs(token.RBRACE) &&
		!statementTerminators[p.peekToken.Type] {
		if p.peekTokenIs(token.ILLEGAL) {
			p.setTokenError(p.peekToken, "%s", p.illegalMessage(p.peekToken))
		} else {
			p.setTokenError(p.peekToken, "unexpected %s following statement", tokenDescription(p.peekToken))
		}
		return ast.NoRef
	}
	return stmt
}

func (p *Parser) parseStatement() ast.Ref {
	var stmt ast.Ref
	switch p.curToken.Type {
	case token.LET:
		stmt = p.parseLet()
	case token.IDENT:
		if p.peekTokenIs(token.ASSIGN) {
			stmt = p.parseAssign()
		} else {
			stmt = p.parseExpressionStatement()
		}
	case token.IF:
		stmt = p.parseIf()
	case token.WHILE:
		stmt = p.parseWhile()
	case token.PRINT:
		stmt = p.parsePrint()
	case token.RETURN:
		stmt = p.parseReturn()
	case token.FUNC, token.DEF:
		stmt = p.parseFunc()
	case token.NEWLINE, token.SEMICOLON:
		return ast.NoRef
	default:
		stmt = p.parseExpressionStatement()
	}
	// Consume trailing semicolon if present
	if stmt != ast.NoRef && p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
	}
	return stmt
}

// enter records one level of nesting and reports whether the limit still
// holds. Every successful enter must be paired with leave.
func (p *Parser) enter() bool {
	p.depth++
	if p.depth > p.maxDepth {
		p.depth--
		p.setTokenError(p.curToken, "maximum nesting depth exceeded")
		return false
	}
	return true
}

func (p *Parser) leave() {
	p.depth--
}

func (p *Parser) parseExpression(precedence int) ast.Ref {
	if p.curToken.Type == token.EOF || p.hadNewError() {
		return ast.NoRef
	}
	if !p.enter() {
		return ast.NoRef
	}
	defer p.leave()

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return ast.NoRef
	}
	leftExp, ok := prefix()
	if !ok || p.hadNewError() {
		return ast.NoRef
	}
	for !p.peekTokenIs(token.SEMICOLON) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp, ok = infix(leftExp)
		if !ok || p.hadNewError() {
			return ast.NoRef
		}
	}
	return leftExp
}

func (p *Parser) illegalToken() (ast.Ref, bool) {
	p.setTokenError(p.curToken, "%s", p.illegalMessage(p.curToken))
	return ast.NoRef, false
}

// illegalMessage describes an ILLEGAL token using the lexer's error.
func (p *Parser) illegalMessage(tok token.Token) string {
	if err, ok := p.lexErrors[tok.StartPosition.Char]; ok {
		return err.Error()
	}
	return "illegal token " + tok.Literal
}

// setPos stamps a cell with the 1-based position of a token.
func (p *Parser) setPos(ref ast.Ref, tok token.Token) ast.Ref {
	p.arena.SetPos(ref, ast.Position{
		Line:   tok.StartPosition.LineNumber(),
		Column: tok.StartPosition.ColumnNumber(),
	})
	return ref
}

// curTokenIs returns true if the current token has the given type.
func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

// peekTokenIs returns true if the next token has the given type.
func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// expectPeek validates if the next token is of the given type, and advances if
// it is. If it's a different type, then an error is stored.
func (p *Parser) expectPeek(context string, t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(context, t, p.peekToken)
	return false
}

// peekPrecedence returns the precedence of the next token.
func (p *Parser) peekPrecedence() int {
	if p, ok := precedences[p.peekToken.Type]; ok {
		return p
	}
	return LOWEST
}

// currentPrecedence returns the precedence of the current token.
func (p *Parser) currentPrecedence() int {
	if p, ok := precedences[p.curToken.Type]; ok {
		return p
	}
	return LOWEST
}

func (p *Parser) eatNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}
