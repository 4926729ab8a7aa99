package fuc

import (
	"errors"
	"strings"
	"testing"

	"github.com/fuclang/lrgen/driver/parser"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const condProgram = `# return 5
# prints nothing
bool b;
bool c;
long l;

string bla;
bla = "bla";

b = true;
c = false;

l = 4;

# dangling-else should be resolved as given by indentation

if ( b )
  if ( c || ! b )
    print bla;
  else
    l = 5;

return l;
`

const condAST = `(program (decl bool b) (decl bool c) (decl long l) (decl string bla) (= bla "bla") (= b true) (= c false) (= l 4) (if b (if (|| c (! b)) (print bla) (= l 5))) (return l))`

func TestParse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrgen.fuc")
	defer teardown()

	tests := []struct {
		caption string
		src     string
		ast     string
	}{
		{
			caption: "the dangling else belongs to the nearest if",
			src:     condProgram,
			ast:     condAST,
		},
		{
			caption: "arithmetic operators bind by their levels",
			src:     "long a; a = 1 + 2 * 3 - -4 / 5;",
			ast:     "(program (decl long a) (= a (- (+ 1 (* 2 3)) (/ (- 4) 5))))",
		},
		{
			caption: "comparisons share one terminal",
			src:     "bool r; r = 1 < 2 == 3 >= 4 && 5 <= 6 || 7 > 8 != true;",
			ast:     "(program (decl bool r) (= r (|| (&& (== (< 1 2) (>= 3 4)) (<= 5 6)) (!= (> 7 8) true))))",
		},
		{
			caption: "an assignment is right-associative",
			src:     "long a; long b; a = b = 1;",
			ast:     "(program (decl long a) (decl long b) (= a (= b 1)))",
		},
		{
			caption: "arrays and records",
			src:     "long[3][2] m; record { long x; double y; } r; m[1][0] = 2; r.y = 1.5e-3; print r.x;",
			ast:     "(program (decl (array (array long 3) 2) m) (decl (record (decl long x) (decl double y)) r) (= ([] ([] m 1) 0) 2) (= (. r y) 1.5e-3) (print (. r x)))",
		},
		{
			caption: "loops and blocks",
			src:     "long i; while (i < 10) { long j; j = i; if (j == 5) break; i = i + 1; } do i = i - 1; while (i > 0); return;",
			ast:     "(program (decl long i) (while (< i 10) (block (decl long j) (= j i) (if (== j 5) (break)) (= i (+ i 1)))) (do (= i (- i 1)) (> i 0)) (return))",
		},
		{
			caption: "parentheses group expressions",
			src:     "long a; a = (1 + 2) * 3;",
			ast:     "(program (decl long a) (= a (* (+ 1 2) 3)))",
		},
		{
			caption: "an empty program",
			src:     "# nothing\n",
			ast:     "(program)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			prog, err := Parse(strings.NewReader(tt.src))
			require.NoError(t, err)
			assert.Equal(t, tt.ast, prog.String())
		})
	}
}

func TestParse_Positions(t *testing.T) {
	prog, err := Parse(strings.NewReader(condProgram))
	require.NoError(t, err)
	require.Len(t, prog.Decls, 4)
	assert.Equal(t, 3, prog.Decls[0].Row)
	assert.Equal(t, 6, prog.Decls[0].Col)

	ret, ok := prog.Stmts[len(prog.Stmts)-1].(*Return)
	require.True(t, ok)
	id, ok := ret.Value.(*Ident)
	require.True(t, ok)
	assert.Equal(t, 23, id.Row)
	assert.Equal(t, 8, id.Col)
}

func TestParse_Literals(t *testing.T) {
	prog, err := Parse(strings.NewReader(`string s; s = "a \"quoted\" word"; s = 12; s = 1.0; s = false;`))
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 4)

	kinds := make([]string, 0, len(prog.Stmts))
	for _, s := range prog.Stmts {
		lit := s.(*ExprStmt).X.(*Assign).Value.(*Literal)
		kinds = append(kinds, lit.Kind)
	}
	assert.Equal(t, []string{"STRING", "NUM", "REAL", "FALSE"}, kinds)
	assert.Equal(t, `"a \"quoted\" word"`, prog.Stmts[0].(*ExprStmt).X.(*Assign).Value.String())
}

func TestParse_Errors(t *testing.T) {
	t.Run("a missing semicolon is a syntax error", func(t *testing.T) {
		_, err := Parse(strings.NewReader("long l;\nl = 4\nreturn l;"))
		require.Error(t, err)
		var synErr *parser.SyntaxError
		require.True(t, errors.As(err, &synErr), "unexpected error: %v", err)
		assert.Equal(t, 3, synErr.Row)
		assert.Equal(t, 1, synErr.Col)
		assert.Contains(t, synErr.ExpectedTerminals, "SEMICOLON")
	})

	t.Run("an undefined token ends parsing", func(t *testing.T) {
		_, err := Parse(strings.NewReader("long l;\nl = 4 $ 2;"))
		require.Error(t, err)
		var lexErr *parser.LexicalError
		require.True(t, errors.As(err, &lexErr), "unexpected error: %v", err)
		assert.Equal(t, 2, lexErr.Row)
		assert.Equal(t, 7, lexErr.Col)
		assert.Equal(t, "found undefined token", strings.SplitN(lexErr.Error(), ": ", 3)[1])
	})

	t.Run("relational operators do not chain", func(t *testing.T) {
		_, err := Parse(strings.NewReader("bool b; b = 1 < 2 < 3;"))
		var synErr *parser.SyntaxError
		require.True(t, errors.As(err, &synErr), "unexpected error: %v", err)
		assert.Equal(t, "<", string(synErr.Token.Lexeme()))
	})

	t.Run("a declaration cannot follow a statement", func(t *testing.T) {
		_, err := Parse(strings.NewReader("long a; a = 1; long b;"))
		var synErr *parser.SyntaxError
		require.True(t, errors.As(err, &synErr), "unexpected error: %v", err)
	})
}

func TestCompile_AllClasses(t *testing.T) {
	for _, class := range []spec.Class{spec.ClassLR1, spec.ClassLALR1, spec.ClassSLR1} {
		t.Run(class.String(), func(t *testing.T) {
			cg, err := Compile(class)
			require.NoError(t, err)
			assert.Equal(t, class, cg.Class)

			prog, err := ParseWith(cg, strings.NewReader(condProgram))
			require.NoError(t, err)
			assert.Equal(t, condAST, prog.String())
		})
	}
}

func TestCompiledGrammar_IsShared(t *testing.T) {
	cg1, err := CompiledGrammar()
	require.NoError(t, err)
	cg2, err := CompiledGrammar()
	require.NoError(t, err)
	assert.Same(t, cg1, cg2)
	assert.Equal(t, "fuc", cg1.Name)
}
