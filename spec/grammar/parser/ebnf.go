package parser

import (
	"fmt"
	"io"
	"sort"
	"unicode"
	"unicode/utf8"

	verr "github.com/fuclang/lrgen/error"
	"github.com/fuclang/lrgen/grammar"
	"golang.org/x/exp/ebnf"
)

var (
	errEBNFNotBNF        = newSyntaxError("options, repetitions and groups are not supported; rewrite them as productions")
	errEBNFLexicalSymbol = newSyntaxError("a lexical production can consist only of alternative tokens")
	errEBNFRange         = newSyntaxError("a range is not supported")
)

// LoadEBNF reads a grammar in the EBNF notation of golang.org/x/exp/ebnf. Productions named in upper case are
// syntactic: they become productions of the grammar, and quoted tokens appearing in them become terminals named
// by their text. Productions named in lower case are lexical: each one becomes a terminal, and its alternative
// tokens become the categories of the terminal.
//
// The resulting grammar has no lexical patterns, so it has to be driven by an external token stream.
func LoadEBNF(name string, start string, src io.Reader) (*grammar.Grammar, error) {
	b, err := EBNFBuilder(name, start, src)
	if err != nil {
		return nil, err
	}
	return b.Build()
}

func EBNFBuilder(name string, start string, src io.Reader) (*grammar.Builder, error) {
	g, err := ebnf.Parse(name, src)
	if err != nil {
		return nil, err
	}
	if err := ebnf.Verify(g, start); err != nil {
		return nil, err
	}

	prods := make([]*ebnf.Production, 0, len(g))
	for _, p := range g {
		prods = append(prods, p)
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Pos().Offset < prods[j].Pos().Offset
	})

	var errs verr.SpecErrors
	addErr := func(cause error, detail string, expr ebnf.Expression) {
		pos := expr.Pos()
		errs = append(errs, &verr.SpecError{
			Cause:  cause,
			Detail: detail,
			Row:    pos.Line,
			Col:    pos.Column,
		})
	}

	b := grammar.NewBuilder(name).Start(start)
	declared := map[string]struct{}{}
	declareToken := func(tok *ebnf.Token) {
		if _, ok := declared[tok.String]; ok {
			return
		}
		declared[tok.String] = struct{}{}
		b.At(tok.StringPos.Line, tok.StringPos.Column).Terminal(tok.String)
	}

	for _, p := range prods {
		pos := p.Pos()
		b.At(pos.Line, pos.Column)
		if isLexical(p.Name.String) {
			var cats []string
			for _, alt := range alternatives(p.Expr) {
				tok, ok := alt.(*ebnf.Token)
				if !ok {
					addErr(errEBNFLexicalSymbol, p.Name.String, alt)
					continue
				}
				cats = append(cats, tok.String)
			}
			declared[p.Name.String] = struct{}{}
			b.Terminal(p.Name.String, cats...)
			continue
		}

		if p.Expr == nil {
			b.Production(p.Name.String)
			continue
		}
		for _, alt := range alternatives(p.Expr) {
			var rhs []string
			for _, elem := range sequence(alt) {
				switch e := elem.(type) {
				case *ebnf.Name:
					rhs = append(rhs, e.String)
				case *ebnf.Token:
					declareToken(e)
					rhs = append(rhs, e.String)
				case *ebnf.Range:
					addErr(errEBNFRange, fmt.Sprintf("%v … %v", e.Begin.String, e.End.String), e)
				default:
					addErr(errEBNFNotBNF, p.Name.String, e)
				}
			}
			b.Production(p.Name.String, rhs...)
		}
	}

	if len(errs) > 0 {
		errs.Sort()
		return nil, errs
	}
	return b, nil
}

func alternatives(expr ebnf.Expression) []ebnf.Expression {
	if alt, ok := expr.(ebnf.Alternative); ok {
		return alt
	}
	return []ebnf.Expression{expr}
}

func sequence(expr ebnf.Expression) []ebnf.Expression {
	if seq, ok := expr.(ebnf.Sequence); ok {
		return seq
	}
	return []ebnf.Expression{expr}
}

func isLexical(name string) bool {
	ch, _ := utf8.DecodeRuneInString(name)
	return !unicode.IsUpper(ch)
}
