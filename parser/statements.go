package parser

import (
	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/internal/token"
)

// Statement parsing methods for the Parser.

func (p *Parser) parseLet() ast.Ref {
	if !p.expectPeek("let statement", token.IDENT) {
		return ast.NoRef
	}
	return p.parseAssign()
}

// parseAssign parses "name = value" with the name as the current token.
func (p *Parser) parseAssign() ast.Ref {
	name := p.curToken
	if !p.expectPeek("assignment", token.ASSIGN) {
		return ast.NoRef
	}
	p.nextToken() // move to the value
	value := p.parseAssignmentValue()
	if value == ast.NoRef {
		return ast.NoRef
	}
	return p.setPos(p.arena.NewAssign(name.Literal, value), name)
}

func (p *Parser) parseAssignmentValue() ast.Ref {
	// Save the assignment token (=) before eatNewlines potentially changes prevToken
	assignToken := p.prevToken
	p.eatNewlines()
	result := p.parseExpression(LOWEST)
	if result == ast.NoRef {
		// Only add error if none was added during parsing
		if !p.hadNewError() {
			p.setTokenError(assignToken, "assignment is missing a value")
		}
		return ast.NoRef
	}
	return result
}

func (p *Parser) parseIf() ast.Ref {
	ifTok := p.curToken
	if !p.expectPeek("an if statement", token.LPAREN) { // move to the "("
		return ast.NoRef
	}
	p.nextToken() // move past the "("
	cond := p.parseExpression(LOWEST)
	if cond == ast.NoRef {
		return ast.NoRef
	}
	if !p.expectPeek("an if statement", token.RPAREN) {
		return ast.NoRef
	}
	if !p.expectPeek("an if statement", token.LBRACE) {
		return ast.NoRef
	}
	consequence := p.parseBlock()
	if consequence == ast.NoRef {
		return ast.NoRef
	}
	var alternative ast.Ref
	if p.peekTokenIs(token.ELSE) {
		p.nextToken()                // move to the "else"
		if p.peekTokenIs(token.IF) { // this is an "else if"
			p.nextToken() // move to the "if"
			alternative = p.parseIf()
		} else if p.expectPeek("an if statement", token.LBRACE) {
			alternative = p.parseBlock()
		}
		if alternative == ast.NoRef {
			return ast.NoRef
		}
	}
	return p.setPos(p.arena.NewIf(cond, consequence, alternative), ifTok)
}

func (p *Parser) parseWhile() ast.Ref {
	whileTok := p.curToken
	if !p.expectPeek("a while statement", token.LPAREN) {
		return ast.NoRef
	}
	p.nextToken() // move past the "("
	cond := p.parseExpression(LOWEST)
	if cond == ast.NoRef {
		return ast.NoRef
	}
	if !p.expectPeek("a while statement", token.RPAREN) {
		return ast.NoRef
	}
	if !p.expectPeek("a while statement", token.LBRACE) {
		return ast.NoRef
	}
	body := p.parseBlock()
	if body == ast.NoRef {
		return ast.NoRef
	}
	return p.setPos(p.arena.NewWhile(cond, body), whileTok)
}

func (p *Parser) parsePrint() ast.Ref {
	printTok := p.curToken
	if statementTerminators[p.peekToken.Type] {
		p.setTokenError(printTok, "print is missing a value")
		return ast.NoRef
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == ast.NoRef {
		return ast.NoRef
	}
	return p.setPos(p.arena.NewPrint(value), printTok)
}

func (p *Parser) parseReturn() ast.Ref {
	returnTok := p.curToken
	if statementTerminators[p.peekToken.Type] {
		return p.setPos(p.arena.NewReturn(ast.NoRef), returnTok)
	}
	p.nextToken()
	value := p.parseExpression(LOWEST)
	if value == ast.NoRef {
		return ast.NoRef
	}
	return p.setPos(p.arena.NewReturn(value), returnTok)
}

func (p *Parser) parseExpressionStatement() ast.Ref {
	expr := p.parseExpression(LOWEST)
	if expr == ast.NoRef {
		// Only add error if none was added during parsing
		if !p.hadNewError() {
			p.setTokenError(p.curToken, "invalid syntax")
		}
		return ast.NoRef
	}
	return expr
}
