package tester

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fuclang/lrgen/driver/lexer"
	"github.com/fuclang/lrgen/driver/parser"
	gspec "github.com/fuclang/lrgen/spec/grammar"
	tspec "github.com/fuclang/lrgen/spec/test"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.tester'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.tester")
}

type TestResult struct {
	TestCasePath string
	Error        error
	Diffs        []*tspec.TreeDiff
}

func (r *TestResult) Passed() bool {
	return r.Error == nil
}

// String reports a result in one line when it passed, and with the error and tree differences indented
// below the path when it failed.
func (r *TestResult) String() string {
	if r.Passed() {
		return fmt.Sprintf("Passed %v", r.TestCasePath)
	}

	const indent = "    "
	var b strings.Builder
	fmt.Fprintf(&b, "Failed %v:", r.TestCasePath)
	for _, line := range strings.Split(r.Error.Error(), "\n") {
		fmt.Fprintf(&b, "\n%v%v", indent, line)
	}
	for _, diff := range r.Diffs {
		fmt.Fprintf(&b, "\n%v%v", indent+indent, diff.Message)
		fmt.Fprintf(&b, "\n%v%vexpected path: %v", indent+indent, indent, diff.ExpectedPath)
		fmt.Fprintf(&b, "\n%v%vactual path:   %v", indent+indent, indent, diff.ActualPath)
	}
	return b.String()
}

// TestCaseWithMetadata is a test case read from a file. Error is set when the file could not be read or
// parsed; TestCase is nil then.
type TestCaseWithMetadata struct {
	TestCase *tspec.TestCase
	FilePath string
	Error    error
}

// ListTestCases reads a test case file, or all test case files under a directory in lexical order.
// A path that cannot be read yields an entry carrying the error, so that a caller can report every broken
// file at once.
func ListTestCases(testPath string) []*TestCaseWithMetadata {
	var cases []*TestCaseWithMetadata
	filepath.WalkDir(testPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			cases = append(cases, &TestCaseWithMetadata{
				FilePath: path,
				Error:    err,
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		c, err := readTestCase(path)
		cases = append(cases, &TestCaseWithMetadata{
			TestCase: c,
			FilePath: path,
			Error:    err,
		})
		return nil
	})
	return cases
}

func readTestCase(path string) (*tspec.TestCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := tspec.ParseTestCase(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return c, nil
}

// Tester parses the source of each test case with a compiled grammar and compares the syntax tree with the
// expected one.
type Tester struct {
	Grammar *gspec.CompiledGrammar
	Cases   []*TestCaseWithMetadata
}

func (t *Tester) Run() []*TestResult {
	var rs []*TestResult
	for _, c := range t.Cases {
		r := runTest(t.Grammar, c)
		tracer().Infof("%v", r)
		rs = append(rs, r)
	}
	return rs
}

func runTest(g *gspec.CompiledGrammar, c *TestCaseWithMetadata) *TestResult {
	fail := func(err error, diffs ...*tspec.TreeDiff) *TestResult {
		return &TestResult{
			TestCasePath: c.FilePath,
			Error:        err,
			Diffs:        diffs,
		}
	}
	if c.Error != nil {
		return fail(c.Error)
	}
	tracer().Debugf("running %v: %v", c.FilePath, c.TestCase.Description)

	toks, err := lexer.NewTokenStream(g, bytes.NewReader(c.TestCase.Source))
	if err != nil {
		return fail(err)
	}
	p, err := parser.NewParser(toks, parser.NewGrammar(g))
	if err != nil {
		return fail(err)
	}
	if err := p.Parse(); err != nil {
		return fail(err)
	}
	root, ok := p.Result().(*parser.Node)
	if !ok || root == nil {
		return fail(fmt.Errorf("parse tree was not generated"))
	}

	if diffs := tspec.DiffTree(c.TestCase.Output, ConvertSyntaxTree(root).Fill()); len(diffs) > 0 {
		return fail(fmt.Errorf("output mismatch"), diffs...)
	}
	return &TestResult{
		TestCasePath: c.FilePath,
	}
}

// ConvertSyntaxTree converts a syntax tree built by a parser into the form test cases are written in.
func ConvertSyntaxTree(node *parser.Node) *tspec.Tree {
	if len(node.Children) == 0 && node.Text != "" {
		return tspec.NewTerminalNode(node.KindName, node.Text)
	}
	var children []*tspec.Tree
	if len(node.Children) > 0 {
		children = make([]*tspec.Tree, len(node.Children))
		for i, c := range node.Children {
			children[i] = ConvertSyntaxTree(c)
		}
	}
	return tspec.NewTree(node.KindName, children...)
}
