package lexer

import (
	"errors"
	"strings"
	"testing"

	"github.com/fuclang/lrgen/driver/parser"
	"github.com/fuclang/lrgen/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exprGrammar() *grammar.Builder {
	b := grammar.NewBuilder("expr").Start("expr")
	b.Terminal("+", "PLUS").Terminal("*", "TIMES").Terminal("num", "NUM").Terminal("id", "ID")
	b.Literal("PLUS", "+")
	b.Literal("TIMES", "*")
	b.Category("NUM", `[0-9]+`)
	b.Category("ID", `[A-Za-z_][0-9A-Za-z_]*`)
	b.Category("WS", `[\u{0009}\u{0020}\u{000A}]+`)
	b.Skip("WS")
	b.Left("+")
	b.Left("*")
	b.Production("expr", "expr", "+", "expr").Label("add")
	b.Production("expr", "expr", "*", "expr").Label("mul")
	b.Production("expr", "num")
	b.Production("expr", "id")
	return b
}

func TestTokenStream(t *testing.T) {
	g, err := exprGrammar().Build()
	require.NoError(t, err)
	cg, _, err := grammar.Compile(g)
	require.NoError(t, err)

	toks, err := NewTokenStream(cg, strings.NewReader("x + 12\n* y"))
	require.NoError(t, err)

	type expectedToken struct {
		cat    string
		lexeme string
		row    int
		col    int
	}
	expected := []expectedToken{
		{cat: "ID", lexeme: "x", row: 1, col: 1},
		{cat: "WS", lexeme: " ", row: 1, col: 2},
		{cat: "PLUS", lexeme: "+", row: 1, col: 3},
		{cat: "WS", lexeme: " ", row: 1, col: 4},
		{cat: "NUM", lexeme: "12", row: 1, col: 5},
		{cat: "WS", lexeme: "\n", row: 1, col: 7},
		{cat: "TIMES", lexeme: "*", row: 2, col: 1},
		{cat: "WS", lexeme: " ", row: 2, col: 2},
		{cat: "ID", lexeme: "y", row: 2, col: 3},
	}
	for _, e := range expected {
		tok, err := toks.Next()
		require.NoError(t, err)
		assert.Equal(t, e.cat, tok.Category())
		assert.Equal(t, e.lexeme, string(tok.Lexeme()))
		row, col := tok.Position()
		assert.Equal(t, e.row, row, "row of %q", e.lexeme)
		assert.Equal(t, e.col, col, "col of %q", e.lexeme)
	}
	tok, err := toks.Next()
	require.NoError(t, err)
	assert.True(t, tok.EOF())
}

func TestTokenStream_Parse(t *testing.T) {
	g, err := exprGrammar().Build()
	require.NoError(t, err)
	cg, _, err := grammar.Compile(g)
	require.NoError(t, err)
	gram := parser.NewGrammar(cg)

	t.Run("accepted", func(t *testing.T) {
		toks, err := NewTokenStream(cg, strings.NewReader("1 + 2 * x"))
		require.NoError(t, err)
		p, err := parser.NewParser(toks, gram)
		require.NoError(t, err)
		require.NoError(t, p.Parse())
		tree := p.Result().(*parser.Node)
		assert.Equal(t, "add", tree.Label)
		assert.Equal(t, "mul", tree.Children[2].Label)
	})

	t.Run("invalid token", func(t *testing.T) {
		toks, err := NewTokenStream(cg, strings.NewReader("1 + $"))
		require.NoError(t, err)
		p, err := parser.NewParser(toks, gram)
		require.NoError(t, err)
		var lexErr *parser.LexicalError
		require.True(t, errors.As(p.Parse(), &lexErr))
		assert.Equal(t, 5, lexErr.Col)
	})
}

func TestNewTokenStream_NoLexicalSpec(t *testing.T) {
	b := grammar.NewBuilder("test").Start("s")
	b.Terminal("a")
	b.Production("s", "a")
	g, err := b.Build()
	require.NoError(t, err)
	cg, _, err := grammar.Compile(g)
	require.NoError(t, err)

	_, err = NewTokenStream(cg, strings.NewReader("a"))
	assert.True(t, errors.Is(err, ErrNoLexicalSpec))
}
