package test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffTree(t *testing.T) {
	tests := []struct {
		caption   string
		expected  *Tree
		actual    *Tree
		different bool
	}{
		{
			caption:  "same single nodes",
			expected: NewTree("a"),
			actual:   NewTree("a"),
		},
		{
			caption: "same nested trees",
			expected: NewTree("a",
				NewTree("b",
					NewTerminalNode("c", "1"),
				),
				NewTree("d"),
			),
			actual: NewTree("a",
				NewTree("b",
					NewTerminalNode("c", "1"),
				),
				NewTree("d"),
			),
		},
		{
			caption: "the wildcard matches any kind",
			expected: NewTree("_",
				NewTerminalNode("_", "1"),
			),
			actual: NewTree("a",
				NewTerminalNode("b", "1"),
			),
		},
		{
			caption:   "different kinds",
			expected:  NewTree("a"),
			actual:    NewTree("b"),
			different: true,
		},
		{
			caption:   "different lexemes",
			expected:  NewTerminalNode("a", "1"),
			actual:    NewTerminalNode("a", "2"),
			different: true,
		},
		{
			caption: "the wildcard does not ignore lexemes",
			expected: NewTree("a",
				NewTerminalNode("_", "1"),
			),
			actual: NewTree("a",
				NewTerminalNode("b", "2"),
			),
			different: true,
		},
		{
			caption: "missing children",
			expected: NewTree("a",
				NewTree("b"),
			),
			actual:    NewTree("a"),
			different: true,
		},
		{
			caption:  "extra children",
			expected: NewTree("a"),
			actual: NewTree("a",
				NewTree("b"),
			),
			different: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			diffs := DiffTree(tt.expected.Fill(), tt.actual.Fill())
			if tt.different {
				assert.NotEmpty(t, diffs)
			} else {
				assert.Empty(t, diffs)
			}
		})
	}
}

func TestDiffTree_Path(t *testing.T) {
	expected := NewTree("a",
		NewTree("b"),
		NewTree("c",
			NewTerminalNode("d", "x"),
		),
	).Fill()
	actual := NewTree("a",
		NewTree("b"),
		NewTree("c",
			NewTerminalNode("e", "x"),
		),
	).Fill()

	diffs := DiffTree(expected, actual)
	require.Len(t, diffs, 1)
	assert.Equal(t, "a.[1]c.[0]d", diffs[0].ExpectedPath)
	assert.Equal(t, "a.[1]c.[0]e", diffs[0].ActualPath)
	assert.Equal(t, "unexpected kind: expected 'd' but got 'e'", diffs[0].Message)
}

func TestParseTree(t *testing.T) {
	src := `
(stmt
    (IF 'if')
    ("(" '(')
    (cond)
    (STRING 'it\'s a\nline'))
`
	tree, err := ParseTree(strings.NewReader(src))
	require.NoError(t, err)

	expected := NewTree("stmt",
		NewTerminalNode("IF", "if"),
		NewTerminalNode("(", "("),
		NewTree("cond"),
		NewTerminalNode("STRING", "it's a\nline"),
	).Fill()
	assert.Empty(t, DiffTree(expected, tree))
	assert.Same(t, tree, tree.Children[2].Parent)
}

func TestParseTree_Errors(t *testing.T) {
	tests := []struct {
		caption string
		src     string
	}{
		{
			caption: "unclosed tree",
			src:     `(a (b)`,
		},
		{
			caption: "a tree needs a kind",
			src:     `('x')`,
		},
		{
			caption: "a leaf cannot have children",
			src:     `(a 'x' (b))`,
		},
		{
			caption: "invalid character",
			src:     `(a $)`,
		},
		{
			caption: "invalid escape sequence",
			src:     `(a '\x')`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			_, err := ParseTree(strings.NewReader(tt.src))
			assert.Error(t, err)
		})
	}
}

func TestTree_Format(t *testing.T) {
	tree := NewTree("expr",
		NewTree("expr",
			NewTerminalNode("NUM", "1"),
		),
		NewTerminalNode("+", "+"),
		NewTree("term"),
	)
	formatted := string(tree.Format())
	assert.Equal(t, `(expr
    (expr
        (NUM '1'))
    ("+" '+')
    (term))`, formatted)

	parsed, err := ParseTree(strings.NewReader(formatted))
	require.NoError(t, err)
	assert.Empty(t, DiffTree(tree.Fill(), parsed))
}

func TestParseTestCase(t *testing.T) {
	src := `sum of two numbers
---
1 + 2
---
(expr
    (expr (NUM '1'))
    (PLUS '+')
    (expr (NUM '2')))
`
	tc, err := ParseTestCase(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "sum of two numbers", tc.Description)
	assert.Equal(t, "1 + 2", string(tc.Source))
	expected := NewTree("expr",
		NewTree("expr", NewTerminalNode("NUM", "1")),
		NewTerminalNode("PLUS", "+"),
		NewTree("expr", NewTerminalNode("NUM", "2")),
	).Fill()
	assert.Empty(t, DiffTree(expected, tc.Output))
}

func TestParseTestCase_Errors(t *testing.T) {
	t.Run("a test case needs three parts", func(t *testing.T) {
		_, err := ParseTestCase(strings.NewReader("desc\n---\n(a)\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2 parts found")
	})

	t.Run("the position of an error is a line of the test case file", func(t *testing.T) {
		_, err := ParseTestCase(strings.NewReader("desc\n---\nsrc\n---\n(a\n  (b $))\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "6:")
	})
}
