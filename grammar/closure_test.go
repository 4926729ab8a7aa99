package grammar

import (
	"testing"
	"time"

	"github.com/fuclang/lrgen/grammar/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClosure(t *testing.T) {
	gram := newCCGrammar(t)
	genSym := newTestSymbolGenerator(t, gram)
	genProd := newTestProductionGenerator(t, gram)
	fst := genFirstSet(gram.productionSet)
	cc := newClosureContext(gram.productionSet, fst, true)

	initial := newLRState([]lr1Item{
		{
			lr0Item:   lr0Item{prod: productionNumStart, dot: 0},
			lookahead: terminalSet(symbol.SymbolEOF),
		},
	})
	closure := cc.closureOf(initial)

	expected := []struct {
		prod      *production
		dot       int
		lookahead []symbol.Symbol
	}{
		{prod: genProd("S'", "S"), dot: 0, lookahead: []symbol.Symbol{symbol.SymbolEOF}},
		{prod: genProd("S", "C", "C"), dot: 0, lookahead: []symbol.Symbol{symbol.SymbolEOF}},
		{prod: genProd("C", "c", "C"), dot: 0, lookahead: []symbol.Symbol{genSym("c"), genSym("d")}},
		{prod: genProd("C", "d"), dot: 0, lookahead: []symbol.Symbol{genSym("c"), genSym("d")}},
	}
	require.Len(t, closure, len(expected))
	for i, e := range expected {
		item := closure[i]
		assert.Equal(t, e.prod.num, item.prod)
		assert.Equal(t, e.dot, item.dot)
		assert.True(t, item.lookahead.Equals(terminalSet(e.lookahead...)), "unexpected lookahead of #%v: %v", i, item.lookahead)
	}

	// A closure is cached per state.
	again := cc.closureOf(initial)
	assert.Same(t, &closure[0], &again[0])

	k := goTo(gram.productionSet, closure, genSym("C"))
	require.NotNil(t, k)
	require.Len(t, k.kernel, 1)
	assert.Equal(t, genProd("S", "C", "C").num, k.kernel[0].prod)
	assert.Equal(t, 1, k.kernel[0].dot)
	assert.True(t, k.kernel[0].lookahead.Equals(terminalSet(symbol.SymbolEOF)))

	assert.Nil(t, goTo(gram.productionSet, closure, symbol.SymbolEOF))
}

func TestClosure_LR0(t *testing.T) {
	gram := newExprGrammar(t)
	fst := genFirstSet(gram.productionSet)
	cc := newClosureContext(gram.productionSet, fst, false)

	closure := cc.closure([]lr1Item{
		{lr0Item: lr0Item{prod: productionNumStart, dot: 0}},
	})

	// S' → ・E plus the 6 productions of E, T and F.
	assert.Len(t, closure, 7)
	for _, item := range closure {
		assert.Nil(t, item.lookahead)
		assert.Equal(t, 0, item.dot)
	}
}

func TestClosure_LookaheadPropagation(t *testing.T) {
	// A → A a | b. The item A → ・A a is revisited when its lookahead grows, so both A-items get the
	// lookaheads {$, a}.
	b := NewBuilder("left-recursion").Start("A")
	b.Terminal("a").Terminal("b")
	b.Production("A", "A", "a")
	b.Production("A", "b")
	gram := mustBuild(t, b)
	genSym := newTestSymbolGenerator(t, gram)
	fst := genFirstSet(gram.productionSet)
	cc := newClosureContext(gram.productionSet, fst, true)

	closure := cc.closure([]lr1Item{
		{
			lr0Item:   lr0Item{prod: productionNumStart, dot: 0},
			lookahead: terminalSet(symbol.SymbolEOF),
		},
	})
	require.Len(t, closure, 3)
	expected := terminalSet(symbol.SymbolEOF, genSym("a"))
	for _, item := range closure[1:] {
		assert.True(t, item.lookahead.Equals(expected), "unexpected lookahead: %v", item.lookahead)
	}
}

func TestClosure_LeftRecursion(t *testing.T) {
	gram := newExprGrammar(t)
	genSym := newTestSymbolGenerator(t, gram)
	genProd := newTestProductionGenerator(t, gram)
	fst := genFirstSet(gram.productionSet)
	cc := newClosureContext(gram.productionSet, fst, true)

	var closure []lr1Item
	finishWithin(t, 5*time.Second, func() {
		closure = cc.closure([]lr1Item{
			{
				lr0Item:   lr0Item{prod: productionNumStart, dot: 0},
				lookahead: terminalSet(symbol.SymbolEOF),
			},
		})
	})
	require.Len(t, closure, 7)

	eof, plus, times := symbol.SymbolEOF, genSym("+"), genSym("*")
	expected := map[productionNum][]symbol.Symbol{
		genProd("S'", "E").num:          {eof},
		genProd("E", "E", "+", "T").num: {eof, plus},
		genProd("E", "T").num:           {eof, plus},
		genProd("T", "T", "*", "F").num: {eof, plus, times},
		genProd("T", "F").num:           {eof, plus, times},
		genProd("F", "(", "E", ")").num: {eof, plus, times},
		genProd("F", "num").num:         {eof, plus, times},
	}
	for _, item := range closure {
		la, ok := expected[item.prod]
		require.True(t, ok, "unexpected item: %v", item.prod)
		assert.True(t, item.lookahead.Equals(terminalSet(la...)), "unexpected lookahead of production %v: %v", item.prod, item.lookahead)
	}
}
