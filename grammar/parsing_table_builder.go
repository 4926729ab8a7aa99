package grammar

import (
	"fmt"
	"sort"

	"github.com/fuclang/lrgen/grammar/symbol"
	spec "github.com/fuclang/lrgen/spec/grammar"
	"golang.org/x/tools/container/intsets"
)

type conflictResolutionMethod string

const (
	resolvedByPrec  = conflictResolutionMethod(spec.ResolvedByPrec)
	resolvedByAssoc = conflictResolutionMethod(spec.ResolvedByAssoc)
)

// resolvedConflict is a conflict settled by a precedence or an associativity declaration.
type resolvedConflict struct {
	kind       ConflictKind
	state      stateNum
	sym        symbol.Symbol
	nextState  stateNum
	prods      []productionNum
	resolvedBy conflictResolutionMethod
}

type lrTableBuilder struct {
	automaton    *lrAutomaton
	prods        *productionSet
	symTab       *symbol.Table
	precAndAssoc *precAndAssoc
	grammar      *Grammar

	// follow is set for SLR(1) tables only. Otherwise, lookaheads of items are used.
	follow *followSet

	resolved   []*resolvedConflict
	unresolved ConflictErrors
}

func (b *lrTableBuilder) build() (*ParsingTable, error) {
	ptab := newParsingTable(len(b.automaton.states), b.symTab.TerminalCount(), b.symTab.NonTerminalCount())

	for _, state := range b.automaton.states {
		syms := make([]symbol.Symbol, 0, len(state.next))
		for sym := range state.next {
			syms = append(syms, sym)
		}
		sort.Slice(syms, func(i, j int) bool {
			return syms[i] < syms[j]
		})
		for _, sym := range syms {
			next := state.next[sym]
			if sym.IsTerminal() {
				ptab.writeAction(state.num.Int(), sym.Num().Int(), newShiftActionEntry(next))
			} else {
				ptab.writeGoTo(state.num, sym, next)
			}
		}

		for _, item := range b.automaton.closures.closureOf(state) {
			if !isReducible(b.prods, item.lr0Item) {
				continue
			}
			prod, ok := b.prods.findByNum(item.prod)
			if !ok {
				return nil, fmt.Errorf("reducible production not found: %v", item.prod)
			}

			lookahead := item.lookahead
			if b.follow != nil {
				lookahead = b.follow.find(prod.lhs)
			}
			if prod.num == productionNumStart {
				// Accept is written on the end marker only.
				lookahead = &intsets.Sparse{}
				lookahead.Insert(symbol.SymbolEOF.Num().Int())
			}
			if lookahead == nil {
				return nil, fmt.Errorf("a reducible item has no lookahead; state: %v, production: %v", state.num, prod.num)
			}

			for _, t := range lookahead.AppendTo(nil) {
				b.writeReduceAction(ptab, state.num, symbol.SymbolFromNum(symbol.KindTerminal, symbol.Num(t)), prod.num)
			}
		}
	}

	if len(b.unresolved) > 0 {
		return nil, b.unresolved
	}

	return ptab, nil
}

// writeReduceAction writes a reduce action. Shift actions are written beforehand, so a non-empty cell holds
// either a shift or another reduce.
func (b *lrTableBuilder) writeReduceAction(tab *ParsingTable, state stateNum, sym symbol.Symbol, prod productionNum) {
	act := tab.readAction(state.Int(), sym.Num().Int())
	if act.isEmpty() {
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		return
	}

	ty, next, p := act.describe()
	switch ty {
	case ActionTypeReduce, ActionTypeAccept:
		if p == prod {
			return
		}
		winner, ok := b.resolveRRConflict(p, prod)
		if !ok {
			b.unresolved = append(b.unresolved, b.newConflictError(ConflictKindReduceReduce, state, sym, 0, p, prod))
			return
		}
		b.resolved = append(b.resolved, &resolvedConflict{
			kind:       ConflictKindReduceReduce,
			state:      state,
			sym:        sym,
			prods:      []productionNum{p, prod},
			resolvedBy: resolvedByPrec,
		})
		tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(winner))
	case ActionTypeShift:
		winner, method, ok := b.resolveSRConflict(sym.Num(), prod)
		if !ok {
			b.unresolved = append(b.unresolved, b.newConflictError(ConflictKindShiftReduce, state, sym, next, prod))
			return
		}
		b.resolved = append(b.resolved, &resolvedConflict{
			kind:       ConflictKindShiftReduce,
			state:      state,
			sym:        sym,
			nextState:  next,
			prods:      []productionNum{prod},
			resolvedBy: method,
		})
		if winner == ActionTypeReduce {
			tab.writeAction(state.Int(), sym.Num().Int(), newReduceActionEntry(prod))
		}
	}
}

// resolveSRConflict compares the precedence of the lookahead terminal with the precedence of the production.
// The higher one wins; on a tie, left associativity reduces and right associativity shifts. Without either
// precedence, the conflict stays unresolved.
func (b *lrTableBuilder) resolveSRConflict(sym symbol.Num, prod productionNum) (ActionType, conflictResolutionMethod, bool) {
	symPrec := b.precAndAssoc.terminalPrecedence(sym)
	prodPrec := b.precAndAssoc.productionPrecedence(prod)
	if symPrec == precNil || prodPrec == precNil {
		return "", "", false
	}
	if symPrec < prodPrec {
		return ActionTypeReduce, resolvedByPrec, true
	}
	if symPrec > prodPrec {
		return ActionTypeShift, resolvedByPrec, true
	}
	switch b.precAndAssoc.productionAssociativity(prod) {
	case assocTypeLeft:
		return ActionTypeReduce, resolvedByAssoc, true
	case assocTypeRight:
		return ActionTypeShift, resolvedByAssoc, true
	}
	return "", "", false
}

// resolveRRConflict prefers the production with the higher precedence. Productions without distinct
// precedences conflict.
func (b *lrTableBuilder) resolveRRConflict(prod1, prod2 productionNum) (productionNum, bool) {
	prec1 := b.precAndAssoc.productionPrecedence(prod1)
	prec2 := b.precAndAssoc.productionPrecedence(prod2)
	if prec1 == precNil || prec2 == precNil || prec1 == prec2 {
		return productionNumNil, false
	}
	if prec1 > prec2 {
		return prod1, true
	}
	return prod2, true
}

func (b *lrTableBuilder) newConflictError(kind ConflictKind, state stateNum, sym symbol.Symbol, next stateNum, prods ...productionNum) *ConflictError {
	name, _ := b.symTab.Name(sym)
	e := &ConflictError{
		State:     state.Int(),
		Terminal:  name,
		Kind:      kind,
		NextState: next.Int(),
	}
	for _, p := range prods {
		e.Productions = append(e.Productions, p.Int())
		e.ProductionTexts = append(e.ProductionTexts, b.grammar.ProductionString(p.Int()))
	}
	tracer().Errorf("%v", e)
	return e
}

func assocText(assoc assocType) string {
	switch assoc {
	case assocTypeLeft:
		return "l"
	case assocTypeRight:
		return "r"
	}
	return ""
}

func (b *lrTableBuilder) genReport(tab *ParsingTable, class spec.Class) (*spec.Report, error) {
	var terms []*spec.Terminal
	{
		termSyms := b.symTab.Terminals()
		terms = make([]*spec.Terminal, b.symTab.TerminalCount())
		for _, sym := range termSyms {
			name, ok := b.symTab.Name(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}
			terms[sym.Num()] = &spec.Terminal{
				Number:        sym.Num().Int(),
				Name:          name,
				Categories:    b.grammar.term2Cats[sym],
				Precedence:    b.precAndAssoc.terminalPrecedence(sym.Num()),
				Associativity: assocText(b.precAndAssoc.terminalAssociativity(sym.Num())),
			}
		}
	}

	var nonTerms []*spec.NonTerminal
	{
		nonTermSyms := b.symTab.NonTerminals()
		nonTerms = make([]*spec.NonTerminal, b.symTab.NonTerminalCount())
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.Name(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}
			nonTerms[sym.Num()] = &spec.NonTerminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var prods []*spec.Production
	{
		prods = make([]*spec.Production, b.prods.size())
		for _, p := range b.prods.all() {
			rhs := make([]int, len(p.rhs))
			for i, e := range p.rhs {
				if e.IsTerminal() {
					rhs[i] = e.Num().Int()
				} else {
					rhs[i] = e.Num().Int() * -1
				}
			}
			prods[p.num.Int()] = &spec.Production{
				Number:        p.num.Int(),
				LHS:           p.lhs.Num().Int(),
				RHS:           rhs,
				Label:         p.label,
				Precedence:    b.precAndAssoc.productionPrecedence(p.num),
				Associativity: assocText(b.precAndAssoc.productionAssociativity(p.num)),
			}
		}
	}

	conflicts := map[stateNum][]*resolvedConflict{}
	for _, c := range b.resolved {
		conflicts[c.state] = append(conflicts[c.state], c)
	}

	states := make([]*spec.State, len(b.automaton.states))
	for _, s := range b.automaton.states {
		kernel := make([]*spec.Item, len(s.kernel))
		for i, item := range s.kernel {
			var la []int
			if item.lookahead != nil {
				la = item.lookahead.AppendTo(nil)
			}
			kernel[i] = &spec.Item{
				Production: item.prod.Int(),
				Dot:        item.dot,
				LookAhead:  la,
			}
		}

		st := &spec.State{
			Number: s.num.Int(),
			Kernel: kernel,
		}

	TERMINALS_LOOP:
		for _, t := range b.symTab.Terminals() {
			act := tab.Action(s.num.Int(), t.Num().Int())
			switch act.Type {
			case ActionTypeShift:
				st.Shift = append(st.Shift, &spec.Transition{
					Symbol: t.Num().Int(),
					State:  act.State,
				})
			case ActionTypeAccept:
				st.Accept = true
			case ActionTypeReduce:
				for _, r := range st.Reduce {
					if r.Production == act.Production {
						r.LookAhead = append(r.LookAhead, t.Num().Int())
						continue TERMINALS_LOOP
					}
				}
				st.Reduce = append(st.Reduce, &spec.Reduce{
					LookAhead:  []int{t.Num().Int()},
					Production: act.Production,
				})
			}
		}
		for _, n := range b.symTab.NonTerminals() {
			next, ok := tab.GoTo(s.num.Int(), n.Num().Int())
			if !ok {
				continue
			}
			st.GoTo = append(st.GoTo, &spec.Transition{
				Symbol: n.Num().Int(),
				State:  next,
			})
		}
		sort.Slice(st.Reduce, func(i, j int) bool {
			return st.Reduce[i].Production < st.Reduce[j].Production
		})

		for _, c := range conflicts[s.num] {
			conflict := &spec.Conflict{
				Kind:       string(c.kind),
				Symbol:     c.sym.Num().Int(),
				NextState:  c.nextState.Int(),
				ResolvedBy: string(c.resolvedBy),
			}
			for _, p := range c.prods {
				conflict.Productions = append(conflict.Productions, p.Int())
			}
			act := tab.Action(s.num.Int(), c.sym.Num().Int())
			switch act.Type {
			case ActionTypeShift:
				n := act.State
				conflict.AdoptedState = &n
			case ActionTypeReduce, ActionTypeAccept:
				n := act.Production
				conflict.AdoptedProduction = &n
			}
			st.Conflicts = append(st.Conflicts, conflict)
		}
		sort.Slice(st.Conflicts, func(i, j int) bool {
			return st.Conflicts[i].Symbol < st.Conflicts[j].Symbol
		})

		states[s.num.Int()] = st
	}

	return &spec.Report{
		Name:         b.grammar.name,
		Class:        class,
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
	}, nil
}
