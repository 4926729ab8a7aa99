package parser

import (
	"github.com/fuclang/lrgen/compressor"
	spec "github.com/fuclang/lrgen/spec/grammar"
)

type grammarImpl struct {
	g        *spec.CompiledGrammar
	cat2Term map[string]int
	skip     map[string]struct{}
}

// NewGrammar makes a compiled grammar usable by a parser.
func NewGrammar(g *spec.CompiledGrammar) *grammarImpl {
	gram := &grammarImpl{
		g:        g,
		cat2Term: map[string]int{},
		skip:     map[string]struct{}{},
	}
	if g.Lexical != nil {
		for cat, term := range g.Lexical.CategoryToTerminal {
			gram.cat2Term[cat] = term
		}
		for _, cat := range g.Lexical.Skip {
			gram.skip[cat] = struct{}{}
		}
	}
	return gram
}

func (g *grammarImpl) InitialState() int {
	return g.g.ParsingTable.InitialState
}

func (g *grammarImpl) StartProduction() int {
	return g.g.ParsingTable.StartProduction
}

func (g *grammarImpl) Action(state int, terminal int) int {
	v, err := compressor.Lookup(g.g.ParsingTable.Action, state, terminal)
	if err != nil {
		return 0
	}
	return v
}

func (g *grammarImpl) GoTo(state int, lhs int) int {
	v, err := compressor.Lookup(g.g.ParsingTable.GoTo, state, lhs)
	if err != nil {
		return 0
	}
	return v
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.ParsingTable.AlternativeSymbolCounts[prod]
}

func (g *grammarImpl) ProductionCount() int {
	return len(g.g.ParsingTable.LHSSymbols)
}

func (g *grammarImpl) ProductionLabel(prod int) string {
	return g.g.ParsingTable.ProductionLabels[prod]
}

func (g *grammarImpl) TerminalCount() int {
	return g.g.ParsingTable.TerminalCount
}

func (g *grammarImpl) NonTerminal(nonTerminal int) string {
	return g.g.ParsingTable.NonTerminalName(nonTerminal)
}

func (g *grammarImpl) LHS(prod int) int {
	return g.g.ParsingTable.LHSSymbols[prod]
}

func (g *grammarImpl) EOF() int {
	return g.g.ParsingTable.EOFSymbol
}

func (g *grammarImpl) Terminal(terminal int) string {
	return g.g.ParsingTable.TerminalName(terminal)
}

func (g *grammarImpl) CategoryToTerminal(category string) (int, bool) {
	term, ok := g.cat2Term[category]
	return term, ok
}

func (g *grammarImpl) Skip(category string) bool {
	_, ok := g.skip[category]
	return ok
}
