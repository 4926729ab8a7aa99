package grammar

import (
	"errors"
	"fmt"
	"strings"

	verr "github.com/fuclang/lrgen/error"
	"github.com/fuclang/lrgen/grammar/symbol"
)

type assocType string

const (
	assocTypeNil   = assocType("")
	assocTypeLeft  = assocType("left")
	assocTypeRight = assocType("right")
)

const (
	precNil = 0
	precMin = 1
)

// precAndAssoc represents precedence and associativities of terminal symbols and productions.
// We use the priority of the production to resolve shift/reduce conflicts.
type precAndAssoc struct {
	// termPrec and termAssoc represent the precedence of the terminal symbols.
	termPrec  map[symbol.Num]int
	termAssoc map[symbol.Num]assocType

	// prodPrec and prodAssoc represent the precedence and the associativities of the production.
	// A production inherits the precedence of the rightmost terminal having one, unless %prec overrides it.
	prodPrec  map[productionNum]int
	prodAssoc map[productionNum]assocType
}

func newPrecAndAssoc() *precAndAssoc {
	return &precAndAssoc{
		termPrec:  map[symbol.Num]int{},
		termAssoc: map[symbol.Num]assocType{},
		prodPrec:  map[productionNum]int{},
		prodAssoc: map[productionNum]assocType{},
	}
}

func (pa *precAndAssoc) terminalPrecedence(sym symbol.Num) int {
	prec, ok := pa.termPrec[sym]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) terminalAssociativity(sym symbol.Num) assocType {
	assoc, ok := pa.termAssoc[sym]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

func (pa *precAndAssoc) productionPrecedence(prod productionNum) int {
	prec, ok := pa.prodPrec[prod]
	if !ok {
		return precNil
	}
	return prec
}

func (pa *precAndAssoc) productionAssociativity(prod productionNum) assocType {
	assoc, ok := pa.prodAssoc[prod]
	if !ok {
		return assocTypeNil
	}
	return assoc
}

// LexEntry defines the pattern of a token category. When Literal is true, Pattern is matched verbatim.
type LexEntry struct {
	Category string
	Pattern  string
	Literal  bool
	Row      int
	Col      int
}

// Grammar is an immutable context-free grammar augmented with the production `S' → S`.
type Grammar struct {
	name                 string
	symbolTable          *symbol.Table
	productionSet        *productionSet
	startSymbol          symbol.Symbol
	augmentedStartSymbol symbol.Symbol
	precAndAssoc         *precAndAssoc

	// category2Term maps a token category to the terminal matching it. A terminal may match several
	// categories.
	category2Term  map[string]symbol.Symbol
	term2Cats      map[symbol.Symbol][]string
	skipCategories []string
	lexEntries     []*LexEntry
}

func (g *Grammar) Name() string {
	return g.name
}

// StartSymbol returns the name of the start symbol declared by a user.
func (g *Grammar) StartSymbol() string {
	name, _ := g.symbolTable.Name(g.startSymbol)
	return name
}

// ProductionCount returns the number of productions including the augmented start production.
func (g *Grammar) ProductionCount() int {
	return len(g.productionSet.all())
}

// ProductionString returns a human-readable form of a production.
func (g *Grammar) ProductionString(num int) string {
	prod, ok := g.productionSet.findByNum(productionNum(num))
	if !ok {
		return fmt.Sprintf("<unknown production %v>", num)
	}
	return g.productionText(prod)
}

func (g *Grammar) productionText(prod *production) string {
	var b strings.Builder
	b.WriteString(g.symbolText(prod.lhs))
	b.WriteString(" →")
	if prod.isEmpty() {
		b.WriteString(" ε")
	}
	for _, sym := range prod.rhs {
		b.WriteString(" ")
		b.WriteString(g.symbolText(sym))
	}
	return b.String()
}

func (g *Grammar) symbolText(sym symbol.Symbol) string {
	name, ok := g.symbolTable.Name(sym)
	if !ok {
		return sym.String()
	}
	return name
}

type termDecl struct {
	name       string
	categories []string
	row, col   int
}

type precDecl struct {
	assoc    assocType
	terms    []string
	row, col int
}

type prodDecl struct {
	lhs      string
	rhs      []string
	prec     string
	label    string
	row, col int
}

// Builder assembles a grammar declaration by declaration. Errors are collected and returned by Build all at
// once.
type Builder struct {
	name       string
	start      string
	terms      []*termDecl
	precs      []*precDecl
	prods      []*prodDecl
	lexEntries []*LexEntry
	skips      []string
	row, col   int
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name: name,
	}
}

// At sets the source position attached to the declarations that follow.
func (b *Builder) At(row, col int) *Builder {
	b.row = row
	b.col = col
	return b
}

func (b *Builder) Name(name string) *Builder {
	b.name = name
	return b
}

func (b *Builder) Start(name string) *Builder {
	b.start = name
	return b
}

// Terminal declares a terminal matching the given token categories. Without categories, the terminal matches
// the category of the same name.
func (b *Builder) Terminal(name string, categories ...string) *Builder {
	if len(categories) == 0 {
		categories = []string{name}
	}
	b.terms = append(b.terms, &termDecl{
		name:       name,
		categories: categories,
		row:        b.row,
		col:        b.col,
	})
	return b
}

// Left declares a left-associative precedence level. Levels declared later bind tighter.
func (b *Builder) Left(terms ...string) *Builder {
	return b.precLevel(assocTypeLeft, terms)
}

// Right declares a right-associative precedence level. Levels declared later bind tighter.
func (b *Builder) Right(terms ...string) *Builder {
	return b.precLevel(assocTypeRight, terms)
}

func (b *Builder) precLevel(assoc assocType, terms []string) *Builder {
	b.precs = append(b.precs, &precDecl{
		assoc: assoc,
		terms: terms,
		row:   b.row,
		col:   b.col,
	})
	return b
}

// Category declares the pattern of a token category.
func (b *Builder) Category(name string, pattern string) *Builder {
	b.lexEntries = append(b.lexEntries, &LexEntry{
		Category: name,
		Pattern:  pattern,
		Row:      b.row,
		Col:      b.col,
	})
	return b
}

// Literal declares a token category matching the text verbatim.
func (b *Builder) Literal(name string, text string) *Builder {
	b.lexEntries = append(b.lexEntries, &LexEntry{
		Category: name,
		Pattern:  text,
		Literal:  true,
		Row:      b.row,
		Col:      b.col,
	})
	return b
}

// Skip marks categories as non-syntactic. A parser drops tokens of these categories.
func (b *Builder) Skip(categories ...string) *Builder {
	b.skips = append(b.skips, categories...)
	return b
}

type ProductionBuilder struct {
	decl *prodDecl
}

// Production declares `lhs → rhs`. An empty rhs declares an ε-production.
func (b *Builder) Production(lhs string, rhs ...string) *ProductionBuilder {
	decl := &prodDecl{
		lhs: lhs,
		rhs: rhs,
		row: b.row,
		col: b.col,
	}
	b.prods = append(b.prods, decl)
	return &ProductionBuilder{
		decl: decl,
	}
}

// Prec makes a production take the precedence and the associativity of a terminal.
func (pb *ProductionBuilder) Prec(term string) *ProductionBuilder {
	pb.decl.prec = term
	return pb
}

// Label names a production. Semantic actions can be registered by labels.
func (pb *ProductionBuilder) Label(label string) *ProductionBuilder {
	pb.decl.label = label
	return pb
}

func (b *Builder) Build() (*Grammar, error) {
	var errs verr.SpecErrors
	addErr := func(cause error, detail string, row, col int) {
		errs = append(errs, &verr.SpecError{
			Cause:  cause,
			Detail: detail,
			Row:    row,
			Col:    col,
		})
	}

	if b.name == "" {
		addErr(semErrNoGrammarName, "", 0, 0)
	}
	if b.start == "" {
		addErr(semErrNoStartSymbol, "", 0, 0)
	}
	if len(b.prods) == 0 {
		addErr(semErrNoProduction, "", 0, 0)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	symTab := symbol.NewTable()

	augStart := b.start + "'"
	for b.declares(augStart) {
		augStart += "'"
	}
	augStartSym, err := symTab.RegisterStart(augStart)
	if err != nil {
		return nil, err
	}

	category2Term := map[string]symbol.Symbol{}
	term2Cats := map[symbol.Symbol][]string{}
	for _, t := range b.terms {
		if t.name == symbol.NameEOF {
			addErr(semErrReservedName, t.name, t.row, t.col)
			continue
		}
		if _, ok := symTab.Lookup(t.name); ok {
			addErr(semErrDuplicateTerminal, t.name, t.row, t.col)
			continue
		}
		sym, err := symTab.RegisterTerminal(t.name)
		if err != nil {
			if errors.Is(err, symbol.ErrTooManySyms) {
				addErr(semErrTooManySymbols, t.name, t.row, t.col)
				continue
			}
			return nil, err
		}
		for _, cat := range t.categories {
			if owner, ok := category2Term[cat]; ok {
				ownerName, _ := symTab.Name(owner)
				addErr(semErrDuplicateCategory, fmt.Sprintf("%v (%v, %v)", cat, ownerName, t.name), t.row, t.col)
				continue
			}
			category2Term[cat] = sym
			term2Cats[sym] = append(term2Cats[sym], cat)
		}
	}

	for _, p := range b.prods {
		sym, ok := symTab.Lookup(p.lhs)
		if ok && sym.IsTerminal() {
			addErr(semErrDuplicateName, p.lhs, p.row, p.col)
			continue
		}
		if ok {
			continue
		}
		if _, err := symTab.RegisterNonTerminal(p.lhs); err != nil {
			addErr(semErrTooManySymbols, p.lhs, p.row, p.col)
		}
	}

	startSym, ok := symTab.Lookup(b.start)
	if !ok || !startSym.IsNonTerminal() || startSym.IsStart() {
		addErr(semErrNoStartProduction, b.start, 0, 0)
		return nil, errs
	}

	prods := newProductionSet()
	prods.append(newProduction(augStartSym, []symbol.Symbol{startSym}))

	declOf := map[productionNum]*prodDecl{}
	for _, p := range b.prods {
		lhs, ok := symTab.Lookup(p.lhs)
		if !ok || !lhs.IsNonTerminal() {
			continue
		}
		rhs := make([]symbol.Symbol, 0, len(p.rhs))
		defined := true
		for _, name := range p.rhs {
			sym, ok := symTab.Lookup(name)
			if !ok || sym.IsStart() || sym.IsEOF() {
				addErr(semErrUndefinedSym, name, p.row, p.col)
				defined = false
				continue
			}
			rhs = append(rhs, sym)
		}
		if !defined {
			continue
		}
		prod, added := prods.append(newProduction(lhs, rhs))
		if !added {
			tracer().Infof("duplicate production collapsed into production %v: %v", prod.num, p.lhs)
			if prod.label == "" {
				prod.label = p.label
			}
			continue
		}
		prod.label = p.label
		declOf[prod.num] = p
	}

	pa := newPrecAndAssoc()
	for i, level := range b.precs {
		for _, name := range level.terms {
			sym, ok := symTab.Lookup(name)
			if !ok {
				addErr(semErrUndefinedSym, name, level.row, level.col)
				continue
			}
			if !sym.IsTerminal() || sym.IsEOF() {
				addErr(semErrPrecOfNonTerminal, name, level.row, level.col)
				continue
			}
			if _, ok := pa.termPrec[sym.Num()]; ok {
				addErr(semErrDuplicatePrec, name, level.row, level.col)
				continue
			}
			pa.termPrec[sym.Num()] = precMin + i
			pa.termAssoc[sym.Num()] = level.assoc
		}
	}
	for _, prod := range prods.all() {
		if decl, ok := declOf[prod.num]; ok && decl.prec != "" {
			sym, ok := symTab.Lookup(decl.prec)
			if !ok || !sym.IsTerminal() {
				addErr(semErrUndefinedSym, decl.prec, decl.row, decl.col)
				continue
			}
			prec := pa.terminalPrecedence(sym.Num())
			if prec == precNil {
				addErr(semErrNoPrecOfPrecSym, decl.prec, decl.row, decl.col)
				continue
			}
			pa.prodPrec[prod.num] = prec
			pa.prodAssoc[prod.num] = pa.terminalAssociativity(sym.Num())
			continue
		}
		for i := prod.rhsLen - 1; i >= 0; i-- {
			sym := prod.rhs[i]
			if !sym.IsTerminal() {
				continue
			}
			if prec := pa.terminalPrecedence(sym.Num()); prec != precNil {
				pa.prodPrec[prod.num] = prec
				pa.prodAssoc[prod.num] = pa.terminalAssociativity(sym.Num())
				break
			}
		}
	}

	for _, name := range findUnreachableNonTerminals(prods, symTab, augStartSym) {
		row, col := b.lhsPosition(name)
		addErr(semErrUnreachableNonTerm, name, row, col)
	}

	for _, sym := range findUnusedTerminals(prods, symTab) {
		name, _ := symTab.Name(sym)
		tracer().Infof("%v: %v", semErrUnusedTerminal, name)
	}

	lexEntries, skips, lexErrs := b.checkLexicalSpec(category2Term)
	errs = append(errs, lexErrs...)

	if len(errs) > 0 {
		errs.Sort()
		return nil, errs
	}

	return &Grammar{
		name:                 b.name,
		symbolTable:          symTab,
		productionSet:        prods,
		startSymbol:          startSym,
		augmentedStartSymbol: augStartSym,
		precAndAssoc:         pa,
		category2Term:        category2Term,
		term2Cats:            term2Cats,
		skipCategories:       skips,
		lexEntries:           lexEntries,
	}, nil
}

func (b *Builder) declares(name string) bool {
	for _, t := range b.terms {
		if t.name == name {
			return true
		}
	}
	for _, p := range b.prods {
		if p.lhs == name {
			return true
		}
	}
	return false
}

func (b *Builder) lhsPosition(name string) (int, int) {
	for _, p := range b.prods {
		if p.lhs == name {
			return p.row, p.col
		}
	}
	return 0, 0
}

func (b *Builder) checkLexicalSpec(category2Term map[string]symbol.Symbol) ([]*LexEntry, []string, verr.SpecErrors) {
	var errs verr.SpecErrors

	patterns := map[string]*LexEntry{}
	var entries []*LexEntry
	for _, e := range b.lexEntries {
		if _, ok := patterns[e.Category]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrDuplicateCatPattern,
				Detail: e.Category,
				Row:    e.Row,
				Col:    e.Col,
			})
			continue
		}
		if e.Pattern == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrInvalidCatPattern,
				Detail: e.Category,
				Row:    e.Row,
				Col:    e.Col,
			})
			continue
		}
		patterns[e.Category] = e
		entries = append(entries, e)
	}

	var skips []string
	for _, cat := range b.skips {
		if _, ok := category2Term[cat]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrSkipSyntacticCat,
				Detail: cat,
			})
			continue
		}
		skips = append(skips, cat)
	}

	// Without any pattern, a grammar relies on an external token source, and nothing more is checked.
	if len(entries) == 0 {
		return nil, skips, errs
	}

	for _, t := range b.terms {
		for _, cat := range t.categories {
			if _, ok := patterns[cat]; !ok {
				errs = append(errs, &verr.SpecError{
					Cause:  semErrUndefinedCategory,
					Detail: cat,
					Row:    t.row,
					Col:    t.col,
				})
			}
		}
	}
	for _, cat := range skips {
		if _, ok := patterns[cat]; !ok {
			errs = append(errs, &verr.SpecError{
				Cause:  semErrUndefinedCategory,
				Detail: cat,
			})
		}
	}

	return entries, skips, errs
}

func findUnreachableNonTerminals(prods *productionSet, symTab *symbol.Table, start symbol.Symbol) []string {
	reached := map[symbol.Symbol]struct{}{
		start: {},
	}
	stack := []symbol.Symbol{start}
	for len(stack) > 0 {
		sym := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ps, _ := prods.findByLHS(sym)
		for _, p := range ps {
			for _, s := range p.rhs {
				if !s.IsNonTerminal() {
					continue
				}
				if _, ok := reached[s]; ok {
					continue
				}
				reached[s] = struct{}{}
				stack = append(stack, s)
			}
		}
	}

	var unreachable []string
	for _, sym := range symTab.NonTerminals() {
		if _, ok := reached[sym]; ok {
			continue
		}
		name, _ := symTab.Name(sym)
		unreachable = append(unreachable, name)
	}
	return unreachable
}

func findUnusedTerminals(prods *productionSet, symTab *symbol.Table) []symbol.Symbol {
	used := map[symbol.Symbol]struct{}{}
	for _, p := range prods.all() {
		for _, sym := range p.rhs {
			if sym.IsTerminal() {
				used[sym] = struct{}{}
			}
		}
	}

	var unused []symbol.Symbol
	for _, sym := range symTab.Terminals() {
		if sym.IsEOF() {
			continue
		}
		if _, ok := used[sym]; !ok {
			unused = append(unused, sym)
		}
	}
	return unused
}
