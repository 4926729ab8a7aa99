package grammar

import (
	"testing"
	"time"

	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

type testSymbolGenerator func(name string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, gram *Grammar) testSymbolGenerator {
	return func(name string) symbol.Symbol {
		t.Helper()

		sym, ok := gram.symbolTable.Lookup(name)
		if !ok {
			t.Fatalf("symbol was not found: %v", name)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

func newTestProductionGenerator(t *testing.T, gram *Grammar) testProductionGenerator {
	genSym := newTestSymbolGenerator(t, gram)
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, name := range rhs {
			rhsSym = append(rhsSym, genSym(name))
		}
		prod, ok := gram.productionSet.key2Prod[genProductionKey(genSym(lhs), rhsSym)]
		if !ok {
			t.Fatalf("production was not found: %v → %v", lhs, rhs)
		}
		return prod
	}
}

func terminalSet(syms ...symbol.Symbol) *intsets.Sparse {
	s := &intsets.Sparse{}
	for _, sym := range syms {
		s.Insert(sym.Num().Int())
	}
	return s
}

func mustBuild(t *testing.T, b *Builder) *Grammar {
	t.Helper()

	gram, err := b.Build()
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return gram
}

// newExprGrammar builds the textbook expression grammar:
//
//	E → E + T | T
//	T → T * F | F
//	F → ( E ) | num
func newExprGrammar(t *testing.T) *Grammar {
	t.Helper()

	b := NewBuilder("expr").Start("E")
	b.Terminal("+").Terminal("*").Terminal("(").Terminal(")").Terminal("num")
	b.Production("E", "E", "+", "T").Label("add")
	b.Production("E", "T")
	b.Production("T", "T", "*", "F").Label("mul")
	b.Production("T", "F")
	b.Production("F", "(", "E", ")").Label("paren")
	b.Production("F", "num").Label("num")
	return mustBuild(t, b)
}

// newCCGrammar builds the grammar S → C C, C → c C | d. Its canonical LR(1) collection has 10 states and its
// LR(0) collection has 7 states.
func newCCGrammar(t *testing.T) *Grammar {
	t.Helper()

	b := NewBuilder("cc").Start("S")
	b.Terminal("c").Terminal("d")
	b.Production("S", "C", "C")
	b.Production("C", "c", "C")
	b.Production("C", "d")
	return mustBuild(t, b)
}

// finishWithin fails a test when f does not return in time. Fixed-point computations that stop converging
// hang instead of failing, so tests of them run under a deadline.
func finishWithin(t *testing.T, d time.Duration, f func()) {
	t.Helper()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f()
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatalf("did not finish in %v", d)
	}
}
