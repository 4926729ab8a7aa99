package grammar

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/fuclang/lrgen/grammar/symbol"
	"golang.org/x/tools/container/intsets"
)

// lr0Item is a production with a dot.
//
// E → E + T
//
// Dot | Dotted Symbol | Item
// ----+---------------+------------
// 0   | E             | E →・E + T
// 1   | +             | E → E・+ T
// 2   | T             | E → E +・T
// 3   | Nil           | E → E + T・
type lr0Item struct {
	prod productionNum
	dot  int
}

func (it lr0Item) hash() uint64 {
	return mix(uint64(it.prod)<<32 | uint64(it.dot))
}

func (it lr0Item) less(other lr0Item) bool {
	if it.prod != other.prod {
		return it.prod < other.prod
	}
	return it.dot < other.dot
}

// mix is the finalizer of SplitMix64. Item hashes are summed up, so a hash must spread its bits well.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// lr1Item is an LR(0) item with a lookahead set. An LR(0) automaton leaves lookahead nil.
type lr1Item struct {
	lr0Item
	lookahead *intsets.Sparse
}

func (it lr1Item) hash() uint64 {
	h := it.lr0Item.hash()
	if it.lookahead == nil {
		return h
	}
	for _, t := range it.lookahead.AppendTo(nil) {
		h += mix(it.lr0Item.hash() ^ uint64(t))
	}
	return h
}

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return strconv.Itoa(int(n))
}

// lrState is a state of an LR automaton. A state keeps only its kernel items; closure items are derived on
// demand.
type lrState struct {
	num    stateNum
	kernel []lr1Item
	index  map[lr0Item]int
	hash   uint64
	next   map[symbol.Symbol]stateNum
}

// newLRState makes a state from kernel items. Items are sorted so that equal kernels have equal
// representations.
func newLRState(items []lr1Item) *lrState {
	sort.Slice(items, func(i, j int) bool {
		return items[i].less(items[j].lr0Item)
	})
	index := make(map[lr0Item]int, len(items))
	var h uint64
	for i, item := range items {
		index[item.lr0Item] = i
		h += item.hash()
	}
	return &lrState{
		kernel: items,
		index:  index,
		hash:   h,
		next:   map[symbol.Symbol]stateNum{},
	}
}

// equalKernel reports whether two states have the same LR(0) kernel items.
func (s *lrState) equalKernel(other *lrState) bool {
	if len(s.kernel) != len(other.kernel) {
		return false
	}
	for i, item := range s.kernel {
		if item.lr0Item != other.kernel[i].lr0Item {
			return false
		}
	}
	return true
}

// equal reports whether two states have the same kernel items including lookaheads.
func (s *lrState) equal(other *lrState) bool {
	if !s.equalKernel(other) {
		return false
	}
	for i, item := range s.kernel {
		la1 := item.lookahead
		la2 := other.kernel[i].lookahead
		if la1 == nil || la2 == nil {
			if la1 != la2 {
				return false
			}
			continue
		}
		if !la1.Equals(la2) {
			return false
		}
	}
	return true
}

// kernelKey identifies the LR(0) core of a state.
func (s *lrState) kernelKey() string {
	var b strings.Builder
	for _, item := range s.kernel {
		fmt.Fprintf(&b, "%v.%v ", item.prod, item.dot)
	}
	return b.String()
}

func dottedSymbol(prods *productionSet, item lr0Item) symbol.Symbol {
	prod, ok := prods.findByNum(item.prod)
	if !ok || item.dot >= prod.rhsLen {
		return symbol.SymbolNil
	}
	return prod.rhs[item.dot]
}

func isReducible(prods *productionSet, item lr0Item) bool {
	prod, ok := prods.findByNum(item.prod)
	return ok && item.dot == prod.rhsLen
}
