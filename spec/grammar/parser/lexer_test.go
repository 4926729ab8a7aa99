package parser

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/fuclang/lrgen/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) ([]*token, error) {
	t.Helper()

	l, err := newLexer(strings.NewReader(src))
	require.NoError(t, err)
	var toks []*token
	for {
		tok, err := l.next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.kind == tokenKindEOF {
			return toks, nil
		}
		if len(toks) > 100 {
			t.Fatal("the lexer does not make progress")
		}
	}
}

func TestLexer_Next(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		kinds   []tokenKind
		texts   []string
	}{
		{
			caption: "the lexer can recognize all kinds of tokens",
			src:     `%name id "pat" 'lit' : | ; @`,
			kinds: []tokenKind{
				tokenKindDirective,
				tokenKindID,
				tokenKindPattern,
				tokenKindLiteral,
				tokenKindColon,
				tokenKindOr,
				tokenKindSemicolon,
				tokenKindLabelMarker,
				tokenKindEOF,
			},
			texts: []string{"%name", "id", "pat", "lit", ":", "|", ";", "@", ""},
		},
		{
			caption: "comments and white spaces are skipped",
			src:     "// comment\n  a // trailing\n b",
			kinds:   []tokenKind{tokenKindID, tokenKindID, tokenKindEOF},
			texts:   []string{"a", "b", ""},
		},
		{
			caption: "a pattern keeps escape sequences other than the quotation mark",
			src:     `"abc\"\\"`,
			kinds:   []tokenKind{tokenKindPattern, tokenKindEOF},
			texts:   []string{`abc"\\`, ""},
		},
		{
			caption: "a literal unescapes the quotation mark and the backslash",
			src:     `'\'\\'`,
			kinds:   []tokenKind{tokenKindLiteral, tokenKindEOF},
			texts:   []string{`'\`, ""},
		},
		{
			caption: "identifiers can contain digits and underscores",
			src:     `_a1 B_2`,
			kinds:   []tokenKind{tokenKindID, tokenKindID, tokenKindEOF},
			texts:   []string{"_a1", "B_2", ""},
		},
		{
			caption: "an undefined character becomes an invalid token",
			src:     `a $ b`,
			kinds:   []tokenKind{tokenKindID, tokenKindInvalid, tokenKindID, tokenKindEOF},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			toks, err := lexAll(t, tt.src)
			require.NoError(t, err)
			require.Len(t, toks, len(tt.kinds))
			for i, tok := range toks {
				assert.Equal(t, tt.kinds[i], tok.kind, "token #%v", i)
				if tt.texts != nil {
					assert.Equal(t, tt.texts[i], tok.text, "token #%v", i)
				}
			}
		})
	}
}

func TestLexer_Positions(t *testing.T) {
	toks, err := lexAll(t, "%name expr;\n\n  expr\n    : NUM\n    ;")
	require.NoError(t, err)
	require.Len(t, toks, 8)

	assert.Equal(t, newPosition(1, 1), toks[0].pos)
	assert.Equal(t, newPosition(1, 7), toks[1].pos)
	assert.Equal(t, newPosition(1, 11), toks[2].pos)
	assert.Equal(t, newPosition(3, 3), toks[3].pos)
	assert.Equal(t, newPosition(4, 5), toks[4].pos)
	assert.Equal(t, newPosition(4, 7), toks[5].pos)
	assert.Equal(t, newPosition(5, 5), toks[6].pos)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		err     error
	}{
		{
			caption: "a pattern must include at least one character",
			src:     `""`,
			err:     synErrEmptyPattern,
		},
		{
			caption: "a literal must include at least one character",
			src:     `''`,
			err:     synErrEmptyLiteral,
		},
		{
			caption: "a pattern must be closed",
			src:     `"abc`,
			err:     synErrUnclosedPattern,
		},
		{
			caption: "a pattern cannot span lines",
			src:     "\"abc\ndef\"",
			err:     synErrUnclosedPattern,
		},
		{
			caption: "a literal must be closed",
			src:     `'abc`,
			err:     synErrUnclosedLiteral,
		},
		{
			caption: "a literal accepts only the escaped quotation mark and the escaped backslash",
			src:     `'\n'`,
			err:     synErrInvalidEscSeq,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := lexAll(t, tt.src)
			require.Error(t, err)
			var specErr *verr.SpecError
			require.True(t, errors.As(err, &specErr), "unexpected error: %v", err)
			assert.Equal(t, tt.err, specErr.Cause)
			assert.Equal(t, 1, specErr.Row)
		})
	}
}
