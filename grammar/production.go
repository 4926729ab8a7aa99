package grammar

import (
	"strconv"
	"strings"

	"github.com/fuclang/lrgen/grammar/symbol"
)

type productionNum uint16

const (
	productionNumNil   = productionNum(0)
	productionNumStart = productionNum(1)
	productionNumMin   = productionNum(2)
)

func (n productionNum) Int() int {
	return int(n)
}

func (n productionNum) String() string {
	return strconv.Itoa(int(n))
}

// productionKey identifies a production by its shape. Two productions with the same LHS and RHS are the
// same production.
type productionKey string

func genProductionKey(lhs symbol.Symbol, rhs []symbol.Symbol) productionKey {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(lhs)))
	b.WriteByte(':')
	for _, sym := range rhs {
		b.WriteString(strconv.Itoa(int(sym)))
		b.WriteByte(' ')
	}
	return productionKey(b.String())
}

type production struct {
	key    productionKey
	num    productionNum
	lhs    symbol.Symbol
	rhs    []symbol.Symbol
	rhsLen int
	label  string
}

func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) *production {
	return &production{
		key:    genProductionKey(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}
}

func (p *production) isEmpty() bool {
	return p.rhsLen == 0
}

// productionSet keeps productions in the order they were declared. The augmented start production always
// gets the number 1, and the other productions are numbered from 2 in declaration order.
type productionSet struct {
	prods     []*production
	lhs2Prods map[symbol.Symbol][]*production
	key2Prod  map[productionKey]*production
	num       productionNum
}

func newProductionSet() *productionSet {
	return &productionSet{
		prods:     make([]*production, productionNumMin),
		lhs2Prods: map[symbol.Symbol][]*production{},
		key2Prod:  map[productionKey]*production{},
		num:       productionNumMin,
	}
}

// append adds a production. When the same production is already registered, append returns the
// registered one and false.
func (ps *productionSet) append(prod *production) (*production, bool) {
	if p, ok := ps.key2Prod[prod.key]; ok {
		return p, false
	}

	if prod.lhs.IsStart() {
		prod.num = productionNumStart
		ps.prods[productionNumStart] = prod
	} else {
		prod.num = ps.num
		ps.num++
		ps.prods = append(ps.prods, prod)
	}
	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	ps.key2Prod[prod.key] = prod

	return prod, true
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num == productionNumNil || num.Int() >= len(ps.prods) {
		return nil, false
	}
	prod := ps.prods[num]
	return prod, prod != nil
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// all returns the productions in ascending order of their numbers.
func (ps *productionSet) all() []*production {
	prods := make([]*production, 0, len(ps.prods))
	for _, p := range ps.prods {
		if p == nil {
			continue
		}
		prods = append(prods, p)
	}
	return prods
}

// size returns the length of a table indexed by production numbers.
func (ps *productionSet) size() int {
	return len(ps.prods)
}
