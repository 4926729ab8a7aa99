// Package lexer turns the category patterns of a compiled grammar into a token stream.
package lexer

import (
	"errors"
	"io"

	"github.com/fuclang/lrgen/driver/parser"
	spec "github.com/fuclang/lrgen/spec/grammar"
	mldriver "github.com/nihei9/maleeni/driver"
)

var ErrNoLexicalSpec = errors.New("the grammar declares no category patterns")

type token struct {
	category string
	tok      *mldriver.Token
}

func (t *token) Category() string {
	return t.category
}

func (t *token) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *token) EOF() bool {
	return t.tok.EOF
}

func (t *token) Invalid() bool {
	return t.tok.Invalid
}

// Position returns a 1-based position.
func (t *token) Position() (int, int) {
	return t.tok.Row + 1, t.tok.Col + 1
}

// TokenStream reads tokens with the lexer compiled from category patterns.
type TokenStream struct {
	lex            *mldriver.Lexer
	kindToCategory []string
}

var _ parser.TokenStream = &TokenStream{}

func NewTokenStream(g *spec.CompiledGrammar, src io.Reader) (*TokenStream, error) {
	if g.Lexical == nil || g.Lexical.Maleeni == nil {
		return nil, ErrNoLexicalSpec
	}

	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(g.Lexical.Maleeni.Spec), src)
	if err != nil {
		return nil, err
	}

	return &TokenStream{
		lex:            lex,
		kindToCategory: g.Lexical.Maleeni.KindToCategory,
	}, nil
}

func (s *TokenStream) Next() (parser.VToken, error) {
	tok, err := s.lex.Next()
	if err != nil {
		return nil, err
	}

	var cat string
	if id := int(tok.KindID); id > 0 && id < len(s.kindToCategory) {
		cat = s.kindToCategory[id]
	}
	return &token{
		category: cat,
		tok:      tok,
	}, nil
}
