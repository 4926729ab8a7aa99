package parser

import (
	"io"
)

// VToken is a token a parser reads. A category tells which terminal the token is.
type VToken interface {
	// Category returns the category of a token. A parser maps the category to a terminal.
	Category() string

	// Lexeme returns the lexeme of a token.
	Lexeme() []byte

	// EOF returns true when a token represents the end of an input.
	EOF() bool

	// Invalid returns true when a token is not matched by any category.
	Invalid() bool

	// Position returns the 1-based row and column of a token.
	Position() (int, int)
}

// TokenStream produces tokens. Next returns either a token with EOF set or io.EOF at the end of an input.
type TokenStream interface {
	Next() (VToken, error)
}

// Token is a plain VToken.
type Token struct {
	Cat       string
	Text      []byte
	Row       int
	Col       int
	IsEOF     bool
	IsInvalid bool
}

func NewToken(category string, lexeme string, row, col int) *Token {
	return &Token{
		Cat:  category,
		Text: []byte(lexeme),
		Row:  row,
		Col:  col,
	}
}

func NewEOFToken(row, col int) *Token {
	return &Token{
		Row:   row,
		Col:   col,
		IsEOF: true,
	}
}

func NewInvalidToken(lexeme string, row, col int) *Token {
	return &Token{
		Text:      []byte(lexeme),
		Row:       row,
		Col:       col,
		IsInvalid: true,
	}
}

func (t *Token) Category() string {
	return t.Cat
}

func (t *Token) Lexeme() []byte {
	return t.Text
}

func (t *Token) EOF() bool {
	return t.IsEOF
}

func (t *Token) Invalid() bool {
	return t.IsInvalid
}

func (t *Token) Position() (int, int) {
	return t.Row, t.Col
}

type sliceTokenStream struct {
	toks []VToken
	pos  int
}

// NewSliceTokenStream makes a token stream of prepared tokens. The stream returns io.EOF after the last
// token.
func NewSliceTokenStream(toks ...VToken) TokenStream {
	return &sliceTokenStream{
		toks: toks,
	}
}

func (s *sliceTokenStream) Next() (VToken, error) {
	if s.pos >= len(s.toks) {
		return nil, io.EOF
	}
	tok := s.toks[s.pos]
	s.pos++
	return tok, nil
}
