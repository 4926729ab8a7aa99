package grammar

import (
	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

// followSet holds FOLLOW of every non-terminal. The SLR(1) table builder uses it as reduce lookaheads.
type followSet struct {
	set map[symbol.Symbol]*intsets.Sparse
}

func genFollowSet(prods *productionSet, first *firstSet) *followSet {
	flw := &followSet{
		set: map[symbol.Symbol]*intsets.Sparse{},
	}
	for _, prod := range prods.all() {
		if _, ok := flw.set[prod.lhs]; ok {
			continue
		}
		flw.set[prod.lhs] = &intsets.Sparse{}
	}
	flw.set[symbol.SymbolStart].Insert(symbol.SymbolEOF.Num().Int())

	for {
		changed := false
		for _, prod := range prods.all() {
			for i, sym := range prod.rhs {
				if !sym.IsNonTerminal() {
					continue
				}
				beta := prod.rhs[i+1:]
				acc := flw.set[sym]
				if unionGrew(acc, first.ofSequence(beta, nil)) {
					changed = true
				}
				if first.isNullableSequence(beta) && unionGrew(acc, flw.set[prod.lhs]) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	return flw
}

func (flw *followSet) find(sym symbol.Symbol) *intsets.Sparse {
	return flw.set[sym]
}
