package parser

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/fuclang/lrgen/error"
	"github.com/fuclang/lrgen/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exprDescription = `
// arithmetic expressions
%name expr;
%start expr;

%category NUM "[0-9]+";
%category PLUS '+';
%category TIMES '*';
%category WS "[\u{0009}\u{0020}]+";
%skip WS;
%terminal NUM PLUS TIMES;
%left PLUS;
%left TIMES;

expr
    : expr PLUS expr @add
    | expr TIMES expr @mul
    | '(' expr ')'
    | NUM
    ;
`

func TestParse(t *testing.T) {
	root, err := Parse(strings.NewReader(exprDescription))
	require.NoError(t, err)

	require.Len(t, root.Directives, 10)
	assert.Equal(t, "name", root.Directives[0].Name)
	assert.Equal(t, "expr", root.Directives[0].Parameters[0].ID)
	assert.Equal(t, 3, root.Directives[0].Pos.Row)

	cat := root.Directives[2]
	assert.Equal(t, "category", cat.Name)
	assert.Equal(t, "NUM", cat.Parameters[0].ID)
	assert.Equal(t, "[0-9]+", cat.Parameters[1].Pattern)
	assert.Equal(t, "+", root.Directives[3].Parameters[1].Literal)

	require.Len(t, root.Productions, 1)
	prod := root.Productions[0]
	assert.Equal(t, "expr", prod.LHS)
	assert.Equal(t, 15, prod.Pos.Row)
	require.Len(t, prod.RHS, 4)
	assert.Equal(t, "add", prod.RHS[0].Label)
	assert.Equal(t, "mul", prod.RHS[1].Label)
	assert.Equal(t, "(", prod.RHS[2].Elements[0].Literal)
	assert.Equal(t, "(", prod.RHS[2].Elements[0].Name())
	assert.Equal(t, "expr", prod.RHS[2].Elements[1].Name())
	assert.Equal(t, "NUM", prod.RHS[3].Elements[0].ID)
	assert.Equal(t, 19, prod.RHS[3].Pos.Row)
}

func TestParse_Alternatives(t *testing.T) {
	src := `
stmt
    : IF cond stmt %prec ELSE @if
    | IF cond stmt ELSE stmt @if_else
    |
    ;
`
	root, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, root.Productions, 1)
	alts := root.Productions[0].RHS
	require.Len(t, alts, 3)

	assert.Equal(t, "ELSE", alts[0].Prec.Name())
	assert.Equal(t, "if", alts[0].Label)
	assert.Len(t, alts[0].Elements, 3)
	assert.Nil(t, alts[1].Prec)
	assert.Equal(t, "if_else", alts[1].Label)
	assert.Empty(t, alts[2].Elements)
}

func TestParse_TerminalGroup(t *testing.T) {
	root, err := Parse(strings.NewReader(`%terminal relop: LESS LESS_OR_EQUAL GREATER;`))
	require.NoError(t, err)
	require.Len(t, root.Directives, 1)

	dir := root.Directives[0]
	require.NotNil(t, dir.Group)
	assert.Equal(t, "relop", dir.Group.ID)
	require.Len(t, dir.Parameters, 3)
	assert.Equal(t, "LESS_OR_EQUAL", dir.Parameters[1].ID)
}

func TestParse_Literals(t *testing.T) {
	root, err := Parse(strings.NewReader(`%category Q '\'';%category B '\\';%category P "\"[^\"]*\"";`))
	require.NoError(t, err)
	require.Len(t, root.Directives, 3)
	assert.Equal(t, `'`, root.Directives[0].Parameters[1].Literal)
	assert.Equal(t, `\`, root.Directives[1].Parameters[1].Literal)
	assert.Equal(t, `"[^"]*"`, root.Directives[2].Parameters[1].Pattern)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		cause   *SyntaxError
		row     int
	}{
		{
			caption: "a production needs a colon",
			src:     "a b;",
			cause:   synErrNoColon,
			row:     1,
		},
		{
			caption: "a production needs a semicolon",
			src:     "a : b\n",
			cause:   synErrNoSemicolon,
		},
		{
			caption: "a production needs a name",
			src:     ": b;",
			cause:   synErrNoProductionName,
			row:     1,
		},
		{
			caption: "a directive needs a semicolon",
			src:     "%name a\na : b;",
			cause:   synErrTopLevelDirNoSemicolon,
			row:     2,
		},
		{
			caption: "a label needs an identifier",
			src:     "a : b @;",
			cause:   synErrNoLabel,
			row:     1,
		},
		{
			caption: "%prec needs a symbol",
			src:     "a : b %prec;",
			cause:   synErrNoPrecSymbol,
			row:     1,
		},
		{
			caption: "%prec cannot be a top-level directive",
			src:     "%prec a;",
			cause:   synErrPrecOutOfPosition,
			row:     1,
		},
		{
			caption: "unknown directives are rejected",
			src:     "%nonassoc a;",
			cause:   synErrUnknownDirective,
			row:     1,
		},
		{
			caption: "a pattern cannot appear in an alternative",
			src:     `a : "b";`,
			cause:   synErrPatternInAlt,
			row:     1,
		},
		{
			caption: "an unclosed pattern",
			src:     "%category a \"b\n;",
			cause:   synErrUnclosedPattern,
			row:     1,
		},
		{
			caption: "an unclosed literal",
			src:     "a : 'b\n;",
			cause:   synErrUnclosedLiteral,
			row:     1,
		},
		{
			caption: "an empty literal",
			src:     "a : '';",
			cause:   synErrEmptyLiteral,
			row:     1,
		},
		{
			caption: "an empty pattern",
			src:     `%category a "";`,
			cause:   synErrEmptyPattern,
			row:     1,
		},
		{
			caption: "an invalid escape sequence",
			src:     `a : '\n';`,
			cause:   synErrInvalidEscSeq,
			row:     1,
		},
		{
			caption: "an invalid character",
			src:     "a : b $ c;",
			cause:   synErrInvalidToken,
			row:     1,
		},
		{
			caption: "a terminal group needs categories",
			src:     "%terminal relop: ;",
			cause:   synErrDirGroupNoParam,
			row:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			var specErrs verr.SpecErrors
			require.True(t, errors.As(err, &specErrs), "unexpected error: %v", err)
			require.Len(t, specErrs, 1)
			assert.Equal(t, tt.cause, specErrs[0].Cause)
			if tt.row > 0 {
				assert.Equal(t, tt.row, specErrs[0].Row)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.spec")
	defer teardown()

	gram, err := Load(strings.NewReader(exprDescription))
	require.NoError(t, err)
	assert.Equal(t, "expr", gram.Name())
	assert.Equal(t, "expr", gram.StartSymbol())
	// expr' → expr and the 4 alternatives.
	assert.Equal(t, 5, gram.ProductionCount())
	assert.Equal(t, "expr → ( expr )", gram.ProductionString(4))

	cg, _, err := grammar.Compile(gram)
	require.NoError(t, err)
	require.NotNil(t, cg.Lexical.Maleeni)
	assert.Contains(t, cg.Lexical.CategoryToTerminal, "NUM")
	assert.Contains(t, cg.Lexical.CategoryToTerminal, "(")
	assert.Contains(t, cg.Lexical.CategoryToTerminal, ")")
	assert.Equal(t, []string{"WS"}, cg.Lexical.Skip)
	assert.Equal(t, "add", cg.ParsingTable.ProductionLabels[2])
}

func TestLoad_TerminalGroup(t *testing.T) {
	src := `
%name cmp;
%start cmp;
%terminal NUM;
%terminal relop: LESS GREATER;

cmp
    : NUM relop NUM
    ;
`
	gram, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	cg, _, err := grammar.Compile(gram)
	require.NoError(t, err)
	// Without patterns, a grammar relies on an external token stream.
	assert.Nil(t, cg.Lexical.Maleeni)
	less, ok := cg.Lexical.CategoryToTerminal["LESS"]
	require.True(t, ok)
	greater, ok := cg.Lexical.CategoryToTerminal["GREATER"]
	require.True(t, ok)
	assert.Equal(t, less, greater)
	assert.Equal(t, "relop", cg.ParsingTable.TerminalName(less))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
		detail  string
	}{
		{
			caption: "%name cannot appear twice",
			src:     "%name a; %name b; %start s; %terminal x; s : x;",
			detail:  "%name",
		},
		{
			caption: "%name takes one parameter",
			src:     "%name a b; %start s; %terminal x; s : x;",
			detail:  "%name",
		},
		{
			caption: "%category needs a pattern",
			src:     "%name a; %category X; %start s; %terminal x; s : x;",
			detail:  "%category needs a name and a pattern",
		},
		{
			caption: "only %terminal takes a group",
			src:     "%name a; %left g: x; %start s; %terminal x; s : x;",
			detail:  "%left",
		},
		{
			caption: "an undefined symbol is detected by the builder",
			src:     "%name a; %start s; %terminal x; s : x y;",
			detail:  "y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src))
			require.Error(t, err)
			var specErrs verr.SpecErrors
			require.True(t, errors.As(err, &specErrs), "unexpected error: %v", err)
			require.NotEmpty(t, specErrs)
			assert.Equal(t, tt.detail, specErrs[0].Detail)
			assert.Equal(t, 1, specErrs[0].Row)
		})
	}
}
