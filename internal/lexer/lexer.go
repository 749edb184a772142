// Package lexer converts cellscript source text into a stream of tokens.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deepnoodle-ai/cellscript/internal/token"
)

// Lexer reads tokens from an input string. Newlines are significant and are
// emitted as NEWLINE tokens, except inside parentheses where they are
// skipped.
type Lexer struct {
	input      string
	pos        int // offset of the current character
	line       int
	lineStart  int
	parenDepth int
}

// New returns a Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token. At the end of the input it returns EOF
// tokens indefinitely. An ILLEGAL token is returned together with an error
// describing it.
func (l *Lexer) Next() (token.Token, error) {
	l.skipWhitespaceAndComments()
	start := l.position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}
	ch := l.input[l.pos]
	switch {
	case ch == '\n':
		l.pos++
		tok := token.Token{Type: token.NEWLINE, Literal: "\n", StartPosition: start, EndPosition: start.Advance(1)}
		l.line++
		l.lineStart = l.pos
		return tok, nil
	case isLetter(ch):
		literal := l.readWhile(func(c byte) bool { return isLetter(c) || isDigit(c) })
		return l.token(token.LookupIdentifier(literal), literal, start), nil
	case isDigit(ch) || (ch == '.' && isDigit(l.peekByte(1))):
		return l.readNumber(start)
	}

	two := l.input[l.pos:min(l.pos+2, len(l.input))]
	switch two {
	case "==":
		return l.advance(token.EQ, two, start), nil
	case "!=":
		return l.advance(token.NOT_EQ, two, start), nil
	case "<=":
		return l.advance(token.LT_EQUALS, two, start), nil
	case ">=":
		return l.advance(token.GT_EQUALS, two, start), nil
	case "&&":
		return l.advance(token.AND, two, start), nil
	case "||":
		return l.advance(token.OR, two, start), nil
	}

	one := string(ch)
	switch ch {
	case '=':
		return l.advance(token.ASSIGN, one, start), nil
	case '!':
		return l.advance(token.BANG, one, start), nil
	case '<':
		return l.advance(token.LT, one, start), nil
	case '>':
		return l.advance(token.GT, one, start), nil
	case '+':
		return l.advance(token.PLUS, one, start), nil
	case '-':
		return l.advance(token.MINUS, one, start), nil
	case '*':
		return l.advance(token.ASTERISK, one, start), nil
	case '/':
		return l.advance(token.SLASH, one, start), nil
	case ',':
		return l.advance(token.COMMA, one, start), nil
	case ';':
		return l.advance(token.SEMICOLON, one, start), nil
	case '{':
		return l.advance(token.LBRACE, one, start), nil
	case '}':
		return l.advance(token.RBRACE, one, start), nil
	case '(':
		l.parenDepth++
		return l.advance(token.LPAREN, one, start), nil
	case ')':
		if l.parenDepth > 0 {
			l.parenDepth--
		}
		return l.advance(token.RPAREN, one, start), nil
	}

	// Report the whole rune so that multi-byte characters read sensibly
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	tok := l.advance(token.ILLEGAL, l.input[l.pos:l.pos+size], start)
	return tok, fmt.Errorf("unexpected character %q", r)
}

// GetLineText returns the full line of source the token starts on, without
// its line terminator.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	line := l.input[start:]
	if end := strings.IndexByte(line, '\n'); end >= 0 {
		line = line[:end]
	}
	return strings.TrimSuffix(line, "\r")
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
	}
}

func (l *Lexer) token(typ token.Type, literal string, start token.Position) token.Token {
	return token.Token{
		Type:          typ,
		Literal:       literal,
		StartPosition: start,
		EndPosition:   start.Advance(len(literal)),
	}
}

func (l *Lexer) advance(typ token.Type, literal string, start token.Position) token.Token {
	l.pos += len(literal)
	return l.token(typ, literal, start)
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	return l.input[l.pos+offset]
}

func (l *Lexer) readWhile(accept func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.input) && accept(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

// readNumber reads an integer or a float. Floats have a fractional part, an
// exponent, or both.
func (l *Lexer) readNumber(start token.Position) (token.Token, error) {
	begin := l.pos
	typ := token.INT
	l.readWhile(isDigit)
	if l.peekByte(0) == '.' {
		typ = token.FLOAT
		l.pos++
		l.readWhile(isDigit)
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		next := l.peekByte(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekByte(2))) {
			typ = token.FLOAT
			l.pos += 2
			l.readWhile(isDigit)
		}
	}
	literal := l.input[begin:l.pos]
	if isLetter(l.peekByte(0)) {
		suffix := l.readWhile(func(c byte) bool { return isLetter(c) || isDigit(c) })
		return l.token(token.ILLEGAL, literal+suffix, start),
			fmt.Errorf("invalid number literal %q", literal+suffix)
	}
	return l.token(typ, literal, start), nil
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.pos < len(l.input) {
		switch ch := l.input[l.pos]; {
		case ch == ' ' || ch == '\t' || ch == '\r':
			l.pos++
		case ch == '\n' && l.parenDepth > 0:
			l.pos++
			l.line++
			l.lineStart = l.pos
		case ch == '#' || (ch == '/' && l.peekByte(1) == '/'):
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
