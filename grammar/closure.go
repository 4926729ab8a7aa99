package grammar

import (
	"sort"
	"sync"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

// closureContext computes closures of states. A closure is computed once per state and kept in a cache.
// When withLookahead is false, items carry no lookahead and closures are LR(0) closures.
type closureContext struct {
	prods         *productionSet
	first         *firstSet
	withLookahead bool

	mu    sync.Mutex
	cache map[stateNum][]lr1Item
}

func newClosureContext(prods *productionSet, first *firstSet, withLookahead bool) *closureContext {
	return &closureContext{
		prods:         prods,
		first:         first,
		withLookahead: withLookahead,
		cache:         map[stateNum][]lr1Item{},
	}
}

// closureOf returns the closure of a registered state.
func (cc *closureContext) closureOf(state *lrState) []lr1Item {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	if items, ok := cc.cache[state.num]; ok {
		return items
	}
	items := cc.closure(state.kernel)
	cc.cache[state.num] = items
	return items
}

// closure expands kernel items. An item A → α・B β with lookahead L adds B →・γ with lookahead
// FIRST(β L) for each production of B. An item already present is revisited only when its lookahead grew.
// The kernel items are left untouched.
func (cc *closureContext) closure(kernel []lr1Item) []lr1Item {
	lookaheads := map[lr0Item]*intsets.Sparse{}
	var order []lr0Item
	worklist := singlylinkedlist.New()
	for _, item := range kernel {
		var la *intsets.Sparse
		if cc.withLookahead {
			la = &intsets.Sparse{}
			if item.lookahead != nil {
				la.Copy(item.lookahead)
			}
		}
		lookaheads[item.lr0Item] = la
		order = append(order, item.lr0Item)
		worklist.Add(item.lr0Item)
	}

	for !worklist.Empty() {
		v, _ := worklist.Get(0)
		worklist.Remove(0)
		item := v.(lr0Item)

		sym := dottedSymbol(cc.prods, item)
		if !sym.IsNonTerminal() {
			continue
		}

		var la *intsets.Sparse
		if cc.withLookahead {
			prod, _ := cc.prods.findByNum(item.prod)
			la = cc.first.ofSequence(prod.rhs[item.dot+1:], lookaheads[item])
		}

		prods, _ := cc.prods.findByLHS(sym)
		for _, prod := range prods {
			newItem := lr0Item{
				prod: prod.num,
				dot:  0,
			}
			existing, ok := lookaheads[newItem]
			if !ok {
				var l *intsets.Sparse
				if la != nil {
					l = &intsets.Sparse{}
					l.Copy(la)
				}
				lookaheads[newItem] = l
				order = append(order, newItem)
				worklist.Add(newItem)
				continue
			}
			if la != nil && unionGrew(existing, la) {
				worklist.Add(newItem)
			}
		}
	}

	items := make([]lr1Item, 0, len(order))
	for _, item := range order {
		items = append(items, lr1Item{
			lr0Item:   item,
			lookahead: lookaheads[item],
		})
	}
	return items
}

// nextSymbols returns the symbols following the dots of the items in ascending order.
func nextSymbols(prods *productionSet, items []lr1Item) []symbol.Symbol {
	seen := map[symbol.Symbol]struct{}{}
	var syms []symbol.Symbol
	for _, item := range items {
		sym := dottedSymbol(prods, item.lr0Item)
		if sym.IsNil() {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i] < syms[j]
	})
	return syms
}

// goTo advances the dot over sym in every item of a closure. The result is an unclosed kernel state.
func goTo(prods *productionSet, closure []lr1Item, sym symbol.Symbol) *lrState {
	var items []lr1Item
	for _, item := range closure {
		if dottedSymbol(prods, item.lr0Item) != sym {
			continue
		}
		var la *intsets.Sparse
		if item.lookahead != nil {
			la = &intsets.Sparse{}
			la.Copy(item.lookahead)
		}
		items = append(items, lr1Item{
			lr0Item: lr0Item{
				prod: item.prod,
				dot:  item.dot + 1,
			},
			lookahead: la,
		})
	}
	if len(items) == 0 {
		return nil
	}
	return newLRState(items)
}
