package parser

import (
	"errors"
	"fmt"

	"github.com/deepnoodle-ai/cellscript/errz"
	"github.com/deepnoodle-ai/cellscript/internal/token"
	"github.com/hashicorp/go-multierror"
)

// result bundles the collected errors, or returns nil when there are none.
func (p *Parser) result() error {
	if !p.hasErrors() {
		return nil
	}
	merr := multierror.Append(nil, p.errors...)
	merr.ErrorFormat = formatErrors
	return merr
}

// formatErrors reports the first error and how many followed it.
func formatErrors(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", errs[0].Error(), len(errs)-1)
}

// SyntaxErrors returns every syntax error carried by err, in source order.
// It accepts both the aggregate returned by Parse and a single *errz.Error.
func SyntaxErrors(err error) []*errz.Error {
	var merr *multierror.Error
	if errors.As(err, &merr) {
		out := make([]*errz.Error, 0, len(merr.Errors))
		for _, e := range merr.Errors {
			var se *errz.Error
			if errors.As(e, &se) {
				out = append(out, se)
			}
		}
		return out
	}
	var se *errz.Error
	if errors.As(err, &se) {
		return []*errz.Error{se}
	}
	return nil
}

// location converts a token position into an error location.
func (p *Parser) location(t token.Token) errz.SourceLocation {
	return errz.SourceLocation{
		Filename: p.filename,
		Line:     t.StartPosition.LineNumber(),
		Column:   t.StartPosition.ColumnNumber(),
		Source:   p.l.GetLineText(t),
	}
}

func (p *Parser) setTokenError(t token.Token, msg string, args ...any) {
	p.addError(errz.Syntaxf(p.location(t), msg, args...))
}

func (p *Parser) noPrefixParseFnError(t token.Token) {
	p.setTokenError(t, "invalid syntax (unexpected %s)", tokenDescription(t))
}

// peekError raises an error if the next token is not the expected type.
func (p *Parser) peekError(context string, expected token.Type, got token.Token) {
	if got.Type == token.ILLEGAL {
		p.setTokenError(got, "%s", p.illegalMessage(got))
		return
	}
	p.setTokenError(got, "unexpected %s while parsing %s (expected %s)",
		tokenDescription(got), context, tokenTypeDescription(expected))
}

func tokenTypeDescription(t token.Type) string {
	switch t {
	case token.EOF:
		return "end of file"
	case token.IDENT:
		return "identifier"
	case token.NEWLINE:
		return "newline"
	default:
		return fmt.Sprintf("%q", string(t))
	}
}

func tokenDescription(t token.Token) string {
	switch t.Type {
	case token.EOF:
		return "end of file"
	case token.NEWLINE:
		return "newline"
	default:
		if t.Literal == "" {
			return string(t.Type)
		}
		return fmt.Sprintf("%q", t.Literal)
	}
}
