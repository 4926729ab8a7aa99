/*
Package fuc parses programs of the fuc language into an AST.

The grammar of fuc is a grammar description embedded in the package. It is compiled into an LALR(1) table on
first use.

Tracing uses the key 'lrgen.fuc'.
*/
package fuc

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fuclang/lrgen/driver/lexer"
	"github.com/fuclang/lrgen/driver/parser"
	"github.com/fuclang/lrgen/grammar"
	spec "github.com/fuclang/lrgen/spec/grammar"
	gparser "github.com/fuclang/lrgen/spec/grammar/parser"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.fuc'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.fuc")
}

//go:embed fuc.lrg
var description []byte

// Description returns the grammar description of fuc.
func Description() []byte {
	return description
}

var (
	compileOnce sync.Once
	compiled    *spec.CompiledGrammar
	compileErr  error
)

// CompiledGrammar returns the compiled grammar of fuc.
func CompiledGrammar() (*spec.CompiledGrammar, error) {
	compileOnce.Do(func() {
		compiled, compileErr = Compile(spec.ClassLALR1)
	})
	return compiled, compileErr
}

// Compile compiles the grammar of fuc into a table of a class.
func Compile(class spec.Class) (*spec.CompiledGrammar, error) {
	g, err := gparser.Load(bytes.NewReader(description))
	if err != nil {
		return nil, err
	}
	cg, _, err := grammar.Compile(g, grammar.SpecifyClass(class))
	if err != nil {
		return nil, err
	}
	tracer().Infof("fuc compiled: class %v, %v states", class, cg.ParsingTable.StateCount)
	return cg, nil
}

// Parse parses a program with the compiled grammar of fuc.
func Parse(src io.Reader) (*Program, error) {
	cg, err := CompiledGrammar()
	if err != nil {
		return nil, err
	}
	return ParseWith(cg, src)
}

// ParseWith parses a program with a compiled grammar of fuc.
func ParseWith(cg *spec.CompiledGrammar, src io.Reader) (*Program, error) {
	toks, err := lexer.NewTokenStream(cg, src)
	if err != nil {
		return nil, err
	}
	gram := parser.NewGrammar(cg)
	acts := NewActionSet(gram)
	if err := acts.Validate(); err != nil {
		return nil, err
	}
	p, err := parser.NewParser(toks, gram, parser.SemanticAction(acts))
	if err != nil {
		return nil, err
	}
	if err := p.Parse(); err != nil {
		return nil, err
	}
	prog, ok := p.Result().(*Program)
	if !ok {
		return nil, fmt.Errorf("a program was expected: %T", p.Result())
	}
	return prog, nil
}

// NewActionSet returns semantic actions building the AST of a program. The actions are bound to the labels of
// the productions.
func NewActionSet(gram parser.Grammar) *parser.ActionRegistry {
	return parser.NewActionRegistry(gram).
		RegisterLabel("program", func(values []interface{}) (interface{}, error) {
			return &Program{
				Decls: decls(values[0]),
				Stmts: stmts(values[1]),
			}, nil
		}).
		RegisterLabel("block", func(values []interface{}) (interface{}, error) {
			return &Block{
				Decls: decls(values[1]),
				Stmts: stmts(values[2]),
			}, nil
		}).
		RegisterLabel("decls", func(values []interface{}) (interface{}, error) {
			return append(decls(values[0]), values[1].(*Decl)), nil
		}).
		RegisterLabel("stmts", func(values []interface{}) (interface{}, error) {
			return append(stmts(values[0]), values[1].(Stmt)), nil
		}).
		RegisterLabel("decl", func(values []interface{}) (interface{}, error) {
			id := token(values[1])
			row, col := id.Position()
			return &Decl{
				Type: values[0].(Type),
				Name: string(id.Lexeme()),
				Row:  row,
				Col:  col,
			}, nil
		}).
		RegisterLabel("array_type", func(values []interface{}) (interface{}, error) {
			size, err := strconv.ParseInt(string(token(values[2]).Lexeme()), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid array size: %w", err)
			}
			return &ArrayType{
				Elem: values[0].(Type),
				Size: size,
			}, nil
		}).
		RegisterLabel("basic_type", func(values []interface{}) (interface{}, error) {
			return &BasicType{
				Name: string(token(values[0]).Lexeme()),
			}, nil
		}).
		RegisterLabel("record_type", func(values []interface{}) (interface{}, error) {
			return &RecordType{
				Fields: decls(values[2]),
			}, nil
		}).
		RegisterLabel("expr_stmt", func(values []interface{}) (interface{}, error) {
			return &ExprStmt{
				X: values[0].(Expr),
			}, nil
		}).
		RegisterLabel("if", func(values []interface{}) (interface{}, error) {
			return &If{
				Cond: values[2].(Expr),
				Then: values[4].(Stmt),
			}, nil
		}).
		RegisterLabel("if_else", func(values []interface{}) (interface{}, error) {
			return &If{
				Cond: values[2].(Expr),
				Then: values[4].(Stmt),
				Else: values[6].(Stmt),
			}, nil
		}).
		RegisterLabel("while", func(values []interface{}) (interface{}, error) {
			return &While{
				Cond: values[2].(Expr),
				Body: values[4].(Stmt),
			}, nil
		}).
		RegisterLabel("do_while", func(values []interface{}) (interface{}, error) {
			return &DoWhile{
				Body: values[1].(Stmt),
				Cond: values[4].(Expr),
			}, nil
		}).
		RegisterLabel("break", func(values []interface{}) (interface{}, error) {
			return &Break{}, nil
		}).
		RegisterLabel("return", func(values []interface{}) (interface{}, error) {
			return &Return{}, nil
		}).
		RegisterLabel("return_value", func(values []interface{}) (interface{}, error) {
			return &Return{
				Value: values[1].(Expr),
			}, nil
		}).
		RegisterLabel("print", func(values []interface{}) (interface{}, error) {
			return &Print{
				Value: values[1].(Expr),
			}, nil
		}).
		RegisterLabel("index", func(values []interface{}) (interface{}, error) {
			return &Index{
				X:     values[0].(Expr),
				Index: values[2].(Expr),
			}, nil
		}).
		RegisterLabel("field", func(values []interface{}) (interface{}, error) {
			return &Field{
				X:    values[0].(Expr),
				Name: string(token(values[2]).Lexeme()),
			}, nil
		}).
		RegisterLabel("ident", func(values []interface{}) (interface{}, error) {
			id := token(values[0])
			row, col := id.Position()
			return &Ident{
				Name: string(id.Lexeme()),
				Row:  row,
				Col:  col,
			}, nil
		}).
		RegisterLabel("assign", func(values []interface{}) (interface{}, error) {
			return &Assign{
				Target: values[0].(Expr),
				Value:  values[2].(Expr),
			}, nil
		}).
		RegisterLabel("binary", func(values []interface{}) (interface{}, error) {
			return &Binary{
				Op: string(token(values[1]).Lexeme()),
				X:  values[0].(Expr),
				Y:  values[2].(Expr),
			}, nil
		}).
		RegisterLabel("unary", func(values []interface{}) (interface{}, error) {
			return &Unary{
				Op: string(token(values[0]).Lexeme()),
				X:  values[1].(Expr),
			}, nil
		}).
		RegisterLabel("paren", func(values []interface{}) (interface{}, error) {
			return values[1], nil
		}).
		RegisterLabel("literal", func(values []interface{}) (interface{}, error) {
			tok := token(values[0])
			return &Literal{
				Kind:  tok.Category(),
				Value: string(tok.Lexeme()),
			}, nil
		})
}

func token(v interface{}) parser.VToken {
	return v.(parser.VToken)
}

func decls(v interface{}) []*Decl {
	if v == nil {
		return nil
	}
	return v.([]*Decl)
}

func stmts(v interface{}) []Stmt {
	if v == nil {
		return nil
	}
	return v.([]Stmt)
}
