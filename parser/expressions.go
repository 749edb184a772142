package parser

import (
	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/internal/token"
)

// Expression parsing methods for the Parser.
// This file contains methods that parse expression constructs:
// - Identifiers and calls
// - Prefix and infix operators
// - Grouped expressions

func (p *Parser) parseIdent() (ast.Ref, bool) {
	tok := p.curToken
	if tok.Literal == "" {
		p.setTokenError(tok, "invalid identifier")
		return ast.NoRef, false
	}
	// Calls name their callee directly, so "f(x)" never produces an
	// Identifier cell for f.
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken() // move to '('
		args, ok := p.parseExprList("call arguments", token.RPAREN)
		if !ok {
			return ast.NoRef, false
		}
		return p.setPos(p.arena.NewCall(tok.Literal, args...), tok), true
	}
	return p.setPos(p.arena.NewIdent(tok.Literal), tok), true
}

func (p *Parser) parsePrefixExpr() (ast.Ref, bool) {
	tok := p.curToken
	op := unaryOperators[tok.Type]
	p.nextToken()
	right := p.parseExpression(PREFIX)
	if right == ast.NoRef {
		if !p.hadNewError() {
			p.setTokenError(tok, "invalid prefix expression")
		}
		return ast.NoRef, false
	}
	return p.setPos(p.arena.NewUnary(op, right), tok), true
}

func (p *Parser) parseInfixExpr(left ast.Ref) (ast.Ref, bool) {
	tok := p.curToken
	op := binaryOperators[tok.Type]
	precedence := p.currentPrecedence()
	p.nextToken()
	// A trailing operator continues the expression on the next line
	p.eatNewlines()
	right := p.parseExpression(precedence)
	if right == ast.NoRef {
		if !p.hadNewError() {
			p.setTokenError(tok, "invalid expression (missing right operand of %s)", tok.Literal)
		}
		return ast.NoRef, false
	}
	return p.setPos(p.arena.NewBinary(op, left, right), tok), true
}

func (p *Parser) parseGroupedExpr() (ast.Ref, bool) {
	p.nextToken() // move past '('
	if p.curTokenIs(token.RPAREN) {
		p.setTokenError(p.curToken, "empty parentheses")
		return ast.NoRef, false
	}
	expr := p.parseExpression(LOWEST)
	if expr == ast.NoRef {
		return ast.NoRef, false
	}
	if !p.expectPeek("a grouped expression", token.RPAREN) {
		return ast.NoRef, false
	}
	return expr, true
}

// parseCall is reached when "(" follows something other than a plain name,
// as in "(f)(1)" or "f(1)(2)". Only named functions can be called.
func (p *Parser) parseCall(ast.Ref) (ast.Ref, bool) {
	p.setTokenError(p.curToken, "only a function name can be called")
	return ast.NoRef, false
}

// parseExprList parses a comma separated list of expressions ending with the
// given token. The current token must be the list's opening token.
func (p *Parser) parseExprList(context string, end token.Type) ([]ast.Ref, bool) {
	var list []ast.Ref
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		if p.cancelled() {
			return nil, false
		}
		p.nextToken()
		if p.curTokenIs(token.EOF) {
			p.setTokenError(p.prevToken, "unterminated %s", context)
			return nil, false
		}
		expr := p.parseExpression(LOWEST)
		if expr == ast.NoRef {
			return nil, false
		}
		list = append(list, expr)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken() // move to ','
	}
	if !p.expectPeek(context, end) {
		return nil, false
	}
	return list, true
}

func (p *Parser) parseBlock() ast.Ref {
	if !p.enter() {
		return ast.NoRef
	}
	defer p.leave()

	// Statements inside the block get their own error scope so one bad
	// statement does not hide the rest.
	outer := p.stmtErrorCount
	defer func() { p.stmtErrorCount = outer }()

	var statements []ast.Ref
	p.nextToken() // move past the '{'
	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		if p.cancelled() || p.tooManyErrors() {
			return ast.NoRef
		}
		p.stmtErrorCount = len(p.errors)
		stmt := p.parseStatementStrict()
		if stmt != ast.NoRef {
			statements = append(statements, stmt)
		} else if p.hadNewError() {
			p.synchronize()
			if p.curTokenIs(token.RBRACE) {
				break
			}
		}
		p.nextToken()
	}
	if p.curTokenIs(token.EOF) {
		p.setTokenError(p.curToken, "unterminated block statement")
		return ast.NoRef
	}
	return p.arena.NewStatements(statements...)
}
