package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/fuclang/lrgen/driver/parser"
	"github.com/fuclang/lrgen/grammar"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// TestCase consists of a description, a source and the syntax tree the source is expected to produce. The parts
// are separated by lines of three or more hyphens.
type TestCase struct {
	Description string
	Source      []byte
	Output      *Tree
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parseTree(parts[2].buf)
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

// ParseTree reads a tree written in the notation `(kind 'lexeme')` or `(kind children...)`.
func ParseTree(r io.Reader) (*Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tp := &treeParser{}
	return tp.parseTree(src)
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// An empty part must be distinguished from the end of an input, which is nil.
		return []byte{}, 0, nil
	}
	buf.Write(line)
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		buf.WriteByte('\n')
		buf.Write(line)
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

const (
	catLeftParen  = "LP"
	catRightParen = "RP"
	catID         = "ID"
	catQuotedKind = "QUOTED_KIND"
	catLexeme     = "LEXEME"
	catWhiteSpace = "WS"
)

// treeGrammar is the grammar of the tree notation:
//
//	tree  : LP kind LEXEME RP @leaf | LP kind trees RP @node ;
//	kind  : ID @id | QUOTED_KIND @quoted_kind ;
//	trees : trees tree @append | ;
func treeGrammar() *grammar.Builder {
	b := grammar.NewBuilder("tree").Start("tree")
	b.Terminal(catLeftParen).Terminal(catRightParen).Terminal(catID).Terminal(catQuotedKind).Terminal(catLexeme)
	b.Skip(catWhiteSpace)
	b.Production("tree", catLeftParen, "kind", catLexeme, catRightParen).Label("leaf")
	b.Production("tree", catLeftParen, "kind", "trees", catRightParen).Label("node")
	b.Production("kind", catID).Label("id")
	b.Production("kind", catQuotedKind).Label("quoted_kind")
	b.Production("trees", "trees", "tree").Label("append")
	b.Production("trees")
	return b
}

var (
	treeOnce    sync.Once
	treeTable   *spec.CompiledGrammar
	treeLexer   *lexmachine.Lexer
	treeInitErr error
)

func initTreeParser() error {
	treeOnce.Do(func() {
		g, err := treeGrammar().Build()
		if err != nil {
			treeInitErr = err
			return
		}
		treeTable, _, err = grammar.Compile(g, grammar.SpecifyClass(spec.ClassLALR1))
		if err != nil {
			treeInitErr = err
			return
		}

		lex := lexmachine.NewLexer()
		lex.Add([]byte(`( |\t|\n|\r)+`), makeToken(catWhiteSpace))
		lex.Add([]byte(`\(`), makeToken(catLeftParen))
		lex.Add([]byte(`\)`), makeToken(catRightParen))
		lex.Add([]byte(`([a-z]|[A-Z]|_)([a-z]|[A-Z]|[0-9]|_)*`), makeToken(catID))
		lex.Add([]byte(`"([^"\\\n]|\\[^\n])*"`), makeToken(catQuotedKind))
		lex.Add([]byte(`'([^'\\\n]|\\[^\n])*'`), makeToken(catLexeme))
		if err := lex.Compile(); err != nil {
			treeInitErr = err
			return
		}
		treeLexer = lex
	})
	return treeInitErr
}

func makeToken(cat string) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return parser.NewToken(cat, string(m.Bytes), m.StartLine, m.StartColumn), nil
	}
}

type treeTokenStream struct {
	s          *lexmachine.Scanner
	src        []byte
	lineOffset int
}

func (ts *treeTokenStream) Next() (parser.VToken, error) {
	start := ts.s.TC
	tok, err, eof := ts.s.Next()
	if err != nil {
		ui, ok := err.(*machines.UnconsumedInput)
		if !ok {
			return nil, err
		}
		ts.s.TC = ui.FailTC
		lexeme := strings.TrimSpace(string(ts.src[start:ui.FailTC]))
		return parser.NewInvalidToken(lexeme, ts.lineOffset+ui.StartLine, ui.StartColumn), nil
	}
	if eof {
		return nil, io.EOF
	}
	t := tok.(*parser.Token)
	t.Row += ts.lineOffset
	return t, nil
}

type treeParser struct {
	lineOffset int
}

func (tp *treeParser) parseTree(src []byte) (*Tree, error) {
	if err := initTreeParser(); err != nil {
		return nil, err
	}
	s, err := treeLexer.Scanner(src)
	if err != nil {
		return nil, err
	}

	gram := parser.NewGrammar(treeTable)
	acts := parser.NewActionRegistry(gram).
		RegisterLabel("leaf", func(values []interface{}) (interface{}, error) {
			tok := values[2].(parser.VToken)
			lexeme, err := unquoteLexeme(string(tok.Lexeme()))
			if err != nil {
				row, col := tok.Position()
				return nil, fmt.Errorf("%v:%v: %w", row, col, err)
			}
			return NewTerminalNode(values[1].(string), lexeme), nil
		}).
		RegisterLabel("node", func(values []interface{}) (interface{}, error) {
			var children []*Tree
			if values[2] != nil {
				children = values[2].([]*Tree)
			}
			return NewTree(values[1].(string), children...), nil
		}).
		RegisterLabel("id", func(values []interface{}) (interface{}, error) {
			return string(values[0].(parser.VToken).Lexeme()), nil
		}).
		RegisterLabel("quoted_kind", func(values []interface{}) (interface{}, error) {
			return strconv.Unquote(string(values[0].(parser.VToken).Lexeme()))
		}).
		RegisterLabel("append", func(values []interface{}) (interface{}, error) {
			var trees []*Tree
			if values[0] != nil {
				trees = values[0].([]*Tree)
			}
			return append(trees, values[1].(*Tree)), nil
		})
	if err := acts.Validate(); err != nil {
		return nil, err
	}

	p, err := parser.NewParser(&treeTokenStream{
		s:          s,
		src:        src,
		lineOffset: tp.lineOffset,
	}, gram, parser.SemanticAction(acts))
	if err != nil {
		return nil, err
	}
	if err := p.Parse(); err != nil {
		return nil, fmt.Errorf("invalid tree: %w", err)
	}
	return p.Result().(*Tree).Fill(), nil
}

func unquoteLexeme(quoted string) (string, error) {
	s := quoted[1 : len(quoted)-1]
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\'', '\\':
			b.WriteByte(s[i])
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}
	return b.String(), nil
}
