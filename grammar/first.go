package grammar

import (
	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

// firstSet holds the nullable non-terminals and FIRST of every non-terminal. FIRST sets contain terminal
// numbers; ε is not an element and is represented by nullability.
type firstSet struct {
	nullable intsets.Sparse
	set      map[symbol.Symbol]*intsets.Sparse
}

func newFirstSet(prods *productionSet) *firstSet {
	fst := &firstSet{
		set: map[symbol.Symbol]*intsets.Sparse{},
	}
	for _, prod := range prods.all() {
		if _, ok := fst.set[prod.lhs]; ok {
			continue
		}
		fst.set[prod.lhs] = &intsets.Sparse{}
	}
	return fst
}

// genFirstSet computes nullability and FIRST by iterating to a fixed point.
func genFirstSet(prods *productionSet) *firstSet {
	fst := newFirstSet(prods)
	for fst.updateNullable(prods) {
	}
	for fst.updateFirst(prods) {
	}
	return fst
}

// updateNullable makes one pass over the productions and reports whether a non-terminal became nullable.
func (fst *firstSet) updateNullable(prods *productionSet) bool {
	changed := false
	for _, prod := range prods.all() {
		if fst.isNullable(prod.lhs) {
			continue
		}
		if fst.isNullableSequence(prod.rhs) {
			fst.nullable.Insert(prod.lhs.Num().Int())
			changed = true
		}
	}
	return changed
}

// updateFirst makes one pass over the productions and reports whether a FIRST set grew.
func (fst *firstSet) updateFirst(prods *productionSet) bool {
	changed := false
	for _, prod := range prods.all() {
		acc := fst.set[prod.lhs]
		for _, sym := range prod.rhs {
			if sym.IsTerminal() {
				if acc.Insert(sym.Num().Int()) {
					changed = true
				}
				break
			}
			if unionGrew(acc, fst.set[sym]) {
				changed = true
			}
			if !fst.isNullable(sym) {
				break
			}
		}
	}
	return changed
}

func (fst *firstSet) isNullable(sym symbol.Symbol) bool {
	if !sym.IsNonTerminal() {
		return false
	}
	return fst.nullable.Has(sym.Num().Int())
}

func (fst *firstSet) isNullableSequence(seq []symbol.Symbol) bool {
	for _, sym := range seq {
		if !fst.isNullable(sym) {
			return false
		}
	}
	return true
}

// findBySymbol returns FIRST of a single symbol. The result must not be modified.
func (fst *firstSet) findBySymbol(sym symbol.Symbol) *intsets.Sparse {
	if sym.IsTerminal() {
		s := &intsets.Sparse{}
		s.Insert(sym.Num().Int())
		return s
	}
	return fst.set[sym]
}

// ofSequence returns FIRST(seq lookahead): the terminals beginning seq, plus lookahead when seq is
// nullable. A nil lookahead contributes nothing.
func (fst *firstSet) ofSequence(seq []symbol.Symbol, lookahead *intsets.Sparse) *intsets.Sparse {
	result := &intsets.Sparse{}
	for _, sym := range seq {
		if sym.IsTerminal() {
			result.Insert(sym.Num().Int())
			return result
		}
		result.UnionWith(fst.set[sym])
		if !fst.isNullable(sym) {
			return result
		}
	}
	if lookahead != nil {
		result.UnionWith(lookahead)
	}
	return result
}

// unionGrew adds x to s and reports whether s gained an element. The result of UnionWith cannot serve
// fixed-point loops since it is also true when s already is a superset of x.
func unionGrew(s, x *intsets.Sparse) bool {
	n := s.Len()
	s.UnionWith(x)
	return s.Len() > n
}
