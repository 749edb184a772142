package parser

import (
	"github.com/deepnoodle-ai/cellscript/ast"
	"github.com/deepnoodle-ai/cellscript/internal/token"
)

// Literal parsing methods for the Parser.
// This file contains methods that parse literal values and function
// declarations. Numeric literals keep their source digits; the compiler
// converts them.

func (p *Parser) parseInt() (ast.Ref, bool) {
	return p.setPos(p.arena.NewInt(p.curToken.Literal), p.curToken), true
}

func (p *Parser) parseFloat() (ast.Ref, bool) {
	return p.setPos(p.arena.NewFloat(p.curToken.Literal), p.curToken), true
}

func (p *Parser) parseBoolean() (ast.Ref, bool) {
	return p.setPos(p.arena.NewBool(p.curTokenIs(token.TRUE)), p.curToken), true
}

func (p *Parser) parseFunc() ast.Ref {
	funcTok := p.curToken
	if !p.expectPeek("function", token.IDENT) { // functions are always named
		return ast.NoRef
	}
	name := p.curToken.Literal
	if !p.expectPeek("function", token.LPAREN) { // Move to the "("
		return ast.NoRef
	}
	paramToks, ok := p.parseFuncParams()
	if !ok {
		return ast.NoRef
	}
	params := make([]string, len(paramToks))
	for i, tok := range paramToks {
		params[i] = tok.Literal
	}
	if !p.expectPeek("function", token.LBRACE) { // move to the "{"
		return ast.NoRef
	}
	body := p.parseBlock()
	if body == ast.NoRef {
		return ast.NoRef
	}
	fn := p.setPos(p.arena.NewFunction(name, params, body), funcTok)
	// Stamp each parameter cell with its declaration position
	i := 0
	for param := range p.arena.Chain(p.arena.Get(fn).Left) {
		p.setPos(param, paramToks[i])
		i++
	}
	return fn
}

func (p *Parser) parseFuncParams() ([]token.Token, bool) {
	var params []token.Token
	// If the next parameter is ")", then there are no parameters
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}
	seen := map[string]bool{}
	for {
		if !p.expectPeek("function parameters", token.IDENT) {
			return nil, false
		}
		name := p.curToken.Literal
		if seen[name] {
			p.setTokenError(p.curToken, "duplicate parameter %q", name)
			return nil, false
		}
		seen[name] = true
		params = append(params, p.curToken)
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
			continue
		}
		if !p.expectPeek("function parameters", token.RPAREN) {
			return nil, false
		}
		return params, true
	}
}
