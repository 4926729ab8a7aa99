package parser

import (
	"io"
	"strings"
	"sync"

	verr "github.com/fuclang/lrgen/error"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

type tokenKind string

const (
	tokenKindID              = tokenKind("id")
	tokenKindPattern         = tokenKind("pattern")
	tokenKindLiteral         = tokenKind("literal")
	tokenKindDirective       = tokenKind("directive")
	tokenKindColon           = tokenKind(":")
	tokenKindOr              = tokenKind("|")
	tokenKindSemicolon       = tokenKind(";")
	tokenKindLabelMarker     = tokenKind("@")
	tokenKindEOF             = tokenKind("eof")
	tokenKindInvalid         = tokenKind("invalid")
	tokenKindUnclosedPattern = tokenKind("unclosed pattern")
	tokenKindUnclosedLiteral = tokenKind("unclosed literal")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newToken(kind tokenKind, text string, pos Position) *token {
	return &token{
		kind: kind,
		text: text,
		pos:  pos,
	}
}

var (
	descLexerOnce sync.Once
	descLexer     *lexmachine.Lexer
	descLexerErr  error
)

func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

func makeToken(kind tokenKind) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return newToken(kind, string(m.Bytes), newPosition(m.StartLine, m.StartColumn)), nil
	}
}

// descriptionLexer compiles the DFA once. The lexer is immutable after compilation, so scanners created from it
// may run concurrently.
func descriptionLexer() (*lexmachine.Lexer, error) {
	descLexerOnce.Do(func() {
		lex := lexmachine.NewLexer()
		lex.Add([]byte(`//[^\n]*`), skip)
		lex.Add([]byte(`( |\t|\n|\r)+`), skip)
		lex.Add([]byte(`%([a-z]|_)+`), makeToken(tokenKindDirective))
		lex.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken(tokenKindID))
		lex.Add([]byte(`"([^"\\\n]|\\[^\n])*"`), makeToken(tokenKindPattern))
		lex.Add([]byte(`"([^"\\\n]|\\[^\n])*`), makeToken(tokenKindUnclosedPattern))
		lex.Add([]byte(`'([^'\\\n]|\\[^\n])*'`), makeToken(tokenKindLiteral))
		lex.Add([]byte(`'([^'\\\n]|\\[^\n])*`), makeToken(tokenKindUnclosedLiteral))
		lex.Add([]byte(`:`), makeToken(tokenKindColon))
		lex.Add([]byte(`\|`), makeToken(tokenKindOr))
		lex.Add([]byte(`;`), makeToken(tokenKindSemicolon))
		lex.Add([]byte(`@`), makeToken(tokenKindLabelMarker))
		if err := lex.Compile(); err != nil {
			tracer().Errorf("error compiling the description lexer: %v", err)
			descLexerErr = err
			return
		}
		descLexer = lex
	})
	return descLexer, descLexerErr
}

type lexer struct {
	s *lexmachine.Scanner
}

func newLexer(src io.Reader) (*lexer, error) {
	lex, err := descriptionLexer()
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	s, err := lex.Scanner(b)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s: s,
	}, nil
}

// next returns the next token. A character sequence matching no rule becomes an invalid token, and the
// scanner resumes at the position where the match failed.
func (l *lexer) next() (*token, error) {
	tok, err, eof := l.s.Next()
	if err != nil {
		if ui, ok := err.(*machines.UnconsumedInput); ok {
			l.s.TC = ui.FailTC
			return newToken(tokenKindInvalid, "", newPosition(ui.StartLine, ui.StartColumn)), nil
		}
		return nil, err
	}
	if eof {
		return newToken(tokenKindEOF, "", Position{}), nil
	}

	t := tok.(*token)
	switch t.kind {
	case tokenKindPattern:
		// A pattern is passed to the lexer generator verbatim except for the \" because the quotation marks
		// delimit patterns.
		pat := strings.ReplaceAll(t.text[1:len(t.text)-1], `\"`, `"`)
		if pat == "" {
			return nil, newSpecError(synErrEmptyPattern, "", t.pos)
		}
		t.text = pat
	case tokenKindLiteral:
		lit, ok := unescapeLiteral(t.text[1 : len(t.text)-1])
		if !ok {
			return nil, newSpecError(synErrInvalidEscSeq, t.text, t.pos)
		}
		if lit == "" {
			return nil, newSpecError(synErrEmptyLiteral, "", t.pos)
		}
		t.text = lit
	case tokenKindUnclosedPattern:
		return nil, newSpecError(synErrUnclosedPattern, "", t.pos)
	case tokenKindUnclosedLiteral:
		return nil, newSpecError(synErrUnclosedLiteral, "", t.pos)
	}
	return t, nil
}

func unescapeLiteral(s string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			return "", false
		}
		switch s[i] {
		case '\'', '\\':
			b.WriteByte(s[i])
		default:
			return "", false
		}
	}
	return b.String(), true
}

func newSpecError(cause error, detail string, pos Position) *verr.SpecError {
	return &verr.SpecError{
		Cause:  cause,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	}
}
