package grammar

import (
	"fmt"

	"github.com/emirpasic/gods/lists/singlylinkedlist"
	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

// lrAutomaton is a canonical collection of item sets. The state i of states has the number i, and the
// initial state is always 0.
type lrAutomaton struct {
	states   []*lrState
	closures *closureContext
}

// genLR1Automaton generates the canonical collection of LR(1) item sets.
func genLR1Automaton(prods *productionSet, first *firstSet) (*lrAutomaton, error) {
	return genCollection(newClosureContext(prods, first, true))
}

// genLR0Automaton generates the canonical collection of LR(0) item sets.
func genLR0Automaton(prods *productionSet, first *firstSet) (*lrAutomaton, error) {
	return genCollection(newClosureContext(prods, first, false))
}

func genCollection(cc *closureContext) (*lrAutomaton, error) {
	startProd, ok := cc.prods.findByNum(productionNumStart)
	if !ok {
		return nil, fmt.Errorf("the augmented start production was not found")
	}

	initialItem := lr1Item{
		lr0Item: lr0Item{
			prod: startProd.num,
			dot:  0,
		},
	}
	if cc.withLookahead {
		initialItem.lookahead = &intsets.Sparse{}
		initialItem.lookahead.Insert(symbol.SymbolEOF.Num().Int())
	}
	initial := newLRState([]lr1Item{initialItem})
	initial.num = stateNumInitial

	automaton := &lrAutomaton{
		states:   []*lrState{initial},
		closures: cc,
	}

	// States are bucketed by the sum of item hashes, and states in the same bucket are compared item by
	// item.
	buckets := map[uint64][]*lrState{
		initial.hash: {initial},
	}
	findOrAdd := func(st *lrState) (*lrState, bool) {
		for _, known := range buckets[st.hash] {
			if cc.withLookahead && known.equal(st) || !cc.withLookahead && known.equalKernel(st) {
				return known, false
			}
		}
		st.num = stateNum(len(automaton.states))
		automaton.states = append(automaton.states, st)
		buckets[st.hash] = append(buckets[st.hash], st)
		return st, true
	}

	worklist := singlylinkedlist.New()
	worklist.Add(initial)
	for !worklist.Empty() {
		v, _ := worklist.Get(0)
		worklist.Remove(0)
		st := v.(*lrState)

		closure := cc.closureOf(st)
		for _, sym := range nextSymbols(cc.prods, closure) {
			k := goTo(cc.prods, closure, sym)
			target, added := findOrAdd(k)
			if added {
				worklist.Add(target)
			}
			st.next[sym] = target.num
		}
	}

	tracer().Debugf("%v states were generated", len(automaton.states))

	return automaton, nil
}

// mergeLALR1 merges LR(1) states having the same LR(0) kernel. Lookaheads of merged items are united and
// transitions are redirected to the merged states. A merged state is numbered after the first state of its
// group, so the initial state stays 0.
func mergeLALR1(lr1 *lrAutomaton) *lrAutomaton {
	groupOf := map[string]stateNum{}
	remap := make([]stateNum, len(lr1.states))
	var merged []*lrState
	for _, st := range lr1.states {
		key := st.kernelKey()
		if num, ok := groupOf[key]; ok {
			remap[st.num] = num
			target := merged[num]
			for i, item := range st.kernel {
				target.kernel[i].lookahead.UnionWith(item.lookahead)
			}
			continue
		}
		num := stateNum(len(merged))
		groupOf[key] = num
		remap[st.num] = num

		items := make([]lr1Item, len(st.kernel))
		for i, item := range st.kernel {
			la := &intsets.Sparse{}
			la.Copy(item.lookahead)
			items[i] = lr1Item{
				lr0Item:   item.lr0Item,
				lookahead: la,
			}
		}
		m := newLRState(items)
		m.num = num
		merged = append(merged, m)
	}

	for _, st := range lr1.states {
		m := merged[remap[st.num]]
		for sym, next := range st.next {
			m.next[sym] = remap[next]
		}
	}

	// Lookaheads changed, so hashes and closures must be recomputed.
	for i, m := range merged {
		r := newLRState(m.kernel)
		r.num = m.num
		r.next = m.next
		merged[i] = r
	}

	tracer().Debugf("%v LR(1) states were merged into %v LALR(1) states", len(lr1.states), len(merged))

	cc := lr1.closures
	return &lrAutomaton{
		states:   merged,
		closures: newClosureContext(cc.prods, cc.first, true),
	}
}
