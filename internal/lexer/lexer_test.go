package lexer

import (
	"testing"

	"github.com/deepnoodle-ai/cellscript/internal/token"
	"github.com/stretchr/testify/require"
)

type expectedToken struct {
	expectedType    token.Type
	expectedLiteral string
}

func requireTokens(t *testing.T, input string, tests []expectedToken) {
	t.Helper()
	l := New(input)
	for i, tt := range tests {
		tok, err := l.Next()
		require.NoError(t, err, "tests[%d]", i)
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - tokentype wrong", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal wrong", i)
	}
}

func TestNextToken1(t *testing.T) {
	requireTokens(t, "=+(){},;!-*/ == != < <= > >= && ||", []expectedToken{
		{token.ASSIGN, "="},
		{token.PLUS, "+"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.COMMA, ","},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.EQ, "=="},
		{token.NOT_EQ, "!="},
		{token.LT, "<"},
		{token.LT_EQUALS, "<="},
		{token.GT, ">"},
		{token.GT_EQUALS, ">="},
		{token.AND, "&&"},
		{token.OR, "||"},
		{token.EOF, ""},
	})
}

func TestNextToken2(t *testing.T) {
	input := `let five = 5;
func add(x, y) {
  return x+y
}
if (five > 3 and not false) { print add(five, 2.5) } else { print true }
while (five) { five = five - 1 }
def f() {}
`
	requireTokens(t, input, []expectedToken{
		{token.LET, "let"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.INT, "5"},
		{token.SEMICOLON, ";"},
		{token.NEWLINE, "\n"},
		{token.FUNC, "func"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.IF, "if"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.GT, ">"},
		{token.INT, "3"},
		{token.AND, "and"},
		{token.NOT, "not"},
		{token.FALSE, "false"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.PRINT, "print"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.FLOAT, "2.5"},
		{token.RPAREN, ")"},
		{token.RBRACE, "}"},
		{token.ELSE, "else"},
		{token.LBRACE, "{"},
		{token.PRINT, "print"},
		{token.TRUE, "true"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.WHILE, "while"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.IDENT, "five"},
		{token.MINUS, "-"},
		{token.INT, "1"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.DEF, "def"},
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	})
}

func TestComments(t *testing.T) {
	input := "#!/usr/bin/env cell\nx = 1 # trailing\n// full line\ny"
	requireTokens(t, input, []expectedToken{
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.INT, "1"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "y"},
		{token.EOF, ""},
	})
}

func TestNewlinesInsideParentheses(t *testing.T) {
	input := "f(1,\n  2\n)\nx"
	requireTokens(t, input, []expectedToken{
		{token.IDENT, "f"},
		{token.LPAREN, "("},
		{token.INT, "1"},
		{token.COMMA, ","},
		{token.INT, "2"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.EOF, ""},
	})
}

func TestNumbers(t *testing.T) {
	tests := []struct {
		input string
		typ   token.Type
	}{
		{"0", token.INT},
		{"42", token.INT},
		{"9223372036854775807", token.INT},
		{"1.5", token.FLOAT},
		{"1.", token.FLOAT},
		{".5", token.FLOAT},
		{"1e3", token.FLOAT},
		{"2.5E-3", token.FLOAT},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := New(tt.input).Next()
			require.NoError(t, err)
			require.Equal(t, tt.typ, tok.Type)
			require.Equal(t, tt.input, tok.Literal)
		})
	}
}

func TestInvalids(t *testing.T) {
	tests := []struct {
		input   string
		literal string
		err     string
	}{
		{"12abc", "12abc", `invalid number literal "12abc"`},
		{"@", "@", `unexpected character '@'`},
		{"&", "&", `unexpected character '&'`},
		{"世界", "世", `unexpected character '世'`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok, err := New(tt.input).Next()
			require.EqualError(t, err, tt.err)
			require.Equal(t, token.ILLEGAL, tok.Type)
			require.Equal(t, tt.literal, tok.Literal)
		})
	}
}

func TestLineNumbers(t *testing.T) {
	input := "a = 1\n\n  print a"
	l := New(input)
	var toks []token.Token
	for {
		tok, err := l.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	// a = 1 \n \n print a EOF
	require.Len(t, toks, 8)
	printTok := toks[5]
	require.Equal(t, token.PRINT, printTok.Type)
	require.Equal(t, 3, printTok.StartPosition.LineNumber())
	require.Equal(t, 3, printTok.StartPosition.ColumnNumber())
	require.Equal(t, 7, printTok.EndPosition.Column)
	require.Equal(t, "  print a", l.GetLineText(printTok))
	require.Equal(t, "a = 1", l.GetLineText(toks[0]))
}

func TestCRLFNewlines(t *testing.T) {
	l := New("x\r\ny")
	tok, _ := l.Next()
	require.Equal(t, token.IDENT, tok.Type)
	tok, _ = l.Next()
	require.Equal(t, token.NEWLINE, tok.Type)
	tok, _ = l.Next()
	require.Equal(t, "y", tok.Literal)
	require.Equal(t, 2, tok.StartPosition.LineNumber())
	require.Equal(t, "x", l.GetLineText(token.Token{}))
}

func TestMultipleEOFReads(t *testing.T) {
	l := New("")
	for range 3 {
		tok, err := l.Next()
		require.NoError(t, err)
		require.Equal(t, token.EOF, tok.Type)
	}
}
