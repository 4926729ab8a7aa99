package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fuclang/lrgen/driver/lexer"
	"github.com/fuclang/lrgen/driver/parser"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source    *string
	onlyParse *bool
	tokens    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <compiled grammar file path>",
		Short:   "Parse a text stream",
		Example: `  cat src | lrgen parse grammar.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	parseFlags.onlyParse = cmd.Flags().Bool("only-parse", false, "when this option is enabled, the parser performs only parse and doesn't print a tree")
	parseFlags.tokens = cmd.Flags().Bool("tokens", false, "print the terminals of the tree instead of the tree")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) (retErr error) {
	defer recoverError(&retErr)

	if *parseFlags.onlyParse && *parseFlags.tokens {
		return fmt.Errorf("You cannot enable --only-parse and --tokens at the same time")
	}

	cgram, err := readCompiledGrammar(args[0])
	if err != nil {
		return fmt.Errorf("Cannot read a compiled grammar: %w", err)
	}

	src := io.Reader(os.Stdin)
	if *parseFlags.source != "" {
		f, err := os.Open(*parseFlags.source)
		if err != nil {
			return fmt.Errorf("Cannot open the source file %s: %w", *parseFlags.source, err)
		}
		defer f.Close()
		src = f
	}

	tree, err := parseSource(cgram, src)
	if err != nil {
		return err
	}

	switch {
	case *parseFlags.onlyParse:
	case *parseFlags.tokens:
		printLeaves(os.Stdout, tree)
	default:
		parser.PrintTree(os.Stdout, tree)
	}

	return nil
}

// parseSource parses a source into a concrete syntax tree.
func parseSource(cgram *spec.CompiledGrammar, src io.Reader) (*parser.Node, error) {
	toks, err := lexer.NewTokenStream(cgram, src)
	if err != nil {
		if errors.Is(err, lexer.ErrNoLexicalSpec) {
			return nil, fmt.Errorf("%w; grammar %v needs an external token stream", err, cgram.Name)
		}
		return nil, err
	}
	gram := parser.NewGrammar(cgram)
	p, err := parser.NewParser(toks, gram, parser.SemanticAction(parser.NewSyntaxTreeActionSet(gram)))
	if err != nil {
		return nil, err
	}
	err = p.Parse()
	if err != nil {
		var synErr *parser.SyntaxError
		if errors.As(err, &synErr) {
			return nil, formatSyntaxError(synErr)
		}
		return nil, err
	}
	tree, ok := p.Result().(*parser.Node)
	if !ok {
		return nil, fmt.Errorf("a syntax tree was expected: %T", p.Result())
	}
	return tree, nil
}

func formatSyntaxError(synErr *parser.SyntaxError) error {
	tok := synErr.Token

	var msg string
	switch {
	case tok == nil:
		return synErr
	case tok.EOF():
		msg = "<eof>"
	case tok.Invalid():
		msg = fmt.Sprintf("'%s' (<invalid>)", tok.Lexeme())
	default:
		msg = fmt.Sprintf("'%s' (%v)", tok.Lexeme(), tok.Category())
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%v:%v: %v: %v", synErr.Row, synErr.Col, synErr.Message, msg)
	if len(synErr.ExpectedTerminals) > 0 {
		fmt.Fprintf(&b, "; expected: %v", strings.Join(synErr.ExpectedTerminals, ", "))
	}
	return errors.New(b.String())
}

func printLeaves(w io.Writer, tree *parser.Node) {
	for _, leaf := range tree.Leaves() {
		fmt.Fprintf(w, "%v:%v %v %#v\n", leaf.Row, leaf.Col, leaf.KindName, leaf.Text)
	}
}

func readCompiledGrammar(path string) (*spec.CompiledGrammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return spec.ReadCompiledGrammar(f)
}
