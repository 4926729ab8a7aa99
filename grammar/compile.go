package grammar

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/fuclang/lrgen/compressor"
	"github.com/fuclang/lrgen/grammar/symbol"
	spec "github.com/fuclang/lrgen/spec/grammar"
	mlcompiler "github.com/nihei9/maleeni/compiler"
	mlspec "github.com/nihei9/maleeni/spec"
)

type compileConfig struct {
	class              spec.Class
	encoding           spec.TableEncoding
	isReportingEnabled bool
}

type CompileOption func(config *compileConfig)

// SpecifyClass selects the class of a parsing table. The default is canonical LR(1).
func SpecifyClass(class spec.Class) CompileOption {
	return func(config *compileConfig) {
		config.class = class
	}
}

// EncodeTables selects the encoding of ACTION and GOTO tables. The default is the row displacement
// encoding.
func EncodeTables(encoding spec.TableEncoding) CompileOption {
	return func(config *compileConfig) {
		config.encoding = encoding
	}
}

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// Compile generates a parsing table of a grammar. When the grammar has unresolved conflicts, Compile returns
// ConflictErrors.
func Compile(gram *Grammar, opts ...CompileOption) (*spec.CompiledGrammar, *spec.Report, error) {
	config := &compileConfig{
		class:    spec.ClassLR1,
		encoding: spec.TableEncodingRowDisplacement,
	}
	for _, opt := range opts {
		opt(config)
	}

	lexical, err := genLexicalSpec(gram)
	if err != nil {
		return nil, nil, err
	}

	tab, b, err := genParsingTable(gram, config.class)
	if err != nil {
		return nil, nil, err
	}

	var report *spec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, config.class)
		if err != nil {
			return nil, nil, err
		}
	}

	action := make([]int, len(tab.actionTable))
	for i, e := range tab.actionTable {
		action[i] = int(e)
	}
	goTo := make([]int, len(tab.goToTable))
	for i, e := range tab.goToTable {
		goTo[i] = int(e)
	}
	actionTab, err := compressor.Compress(action, tab.terminalCount, config.encoding, int(actionEntryEmpty))
	if err != nil {
		return nil, nil, err
	}
	goToTab, err := compressor.Compress(goTo, tab.nonTerminalCount, config.encoding, int(goToEntryEmpty))
	if err != nil {
		return nil, nil, err
	}

	prodCount := gram.productionSet.size()
	lhsSyms := make([]int, prodCount)
	altSymCounts := make([]int, prodCount)
	labels := make([]string, prodCount)
	for _, p := range gram.productionSet.all() {
		lhsSyms[p.num] = p.lhs.Num().Int()
		altSymCounts[p.num] = p.rhsLen
		labels[p.num] = p.label
	}

	cg := &spec.CompiledGrammar{
		Name:    gram.name,
		Class:   config.class,
		Lexical: lexical,
		ParsingTable: &spec.ParsingTable{
			Action:                  actionTab,
			GoTo:                    goToTab,
			StateCount:              tab.stateCount,
			InitialState:            tab.InitialState.Int(),
			StartProduction:         productionNumStart.Int(),
			LHSSymbols:              lhsSyms,
			AlternativeSymbolCounts: altSymCounts,
			ProductionLabels:        labels,
			Terminals:               gram.symbolTable.TerminalNames(),
			TerminalCount:           tab.terminalCount,
			NonTerminals:            gram.symbolTable.NonTerminalNames(),
			NonTerminalCount:        tab.nonTerminalCount,
			EOFSymbol:               symbol.SymbolEOF.Num().Int(),
		},
	}
	cg.Checksum, err = spec.CalcChecksum(cg)
	if err != nil {
		return nil, nil, err
	}

	tracer().Infof("compiled grammar '%v': class %v, %v states, %v productions", gram.name, config.class, tab.stateCount, prodCount-int(productionNumStart))

	return cg, report, nil
}

// genParsingTable runs the analyses a table class needs and fills a table.
func genParsingTable(gram *Grammar, class spec.Class) (*ParsingTable, *lrTableBuilder, error) {
	first := genFirstSet(gram.productionSet)

	var automaton *lrAutomaton
	var follow *followSet
	switch class {
	case spec.ClassLR1:
		lr1, err := genLR1Automaton(gram.productionSet, first)
		if err != nil {
			return nil, nil, err
		}
		automaton = lr1
	case spec.ClassLALR1:
		lr1, err := genLR1Automaton(gram.productionSet, first)
		if err != nil {
			return nil, nil, err
		}
		automaton = mergeLALR1(lr1)
	case spec.ClassSLR1:
		lr0, err := genLR0Automaton(gram.productionSet, first)
		if err != nil {
			return nil, nil, err
		}
		automaton = lr0
		follow = genFollowSet(gram.productionSet, first)
	default:
		return nil, nil, fmt.Errorf("unknown table class: %v", class)
	}

	b := &lrTableBuilder{
		automaton:    automaton,
		prods:        gram.productionSet,
		symTab:       gram.symbolTable,
		precAndAssoc: gram.precAndAssoc,
		grammar:      gram,
		follow:       follow,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}
	return tab, b, nil
}

func genLexicalSpec(gram *Grammar) (*spec.LexicalSpec, error) {
	cat2Term := make(map[string]int, len(gram.category2Term))
	for cat, sym := range gram.category2Term {
		cat2Term[cat] = sym.Num().Int()
	}
	lexical := &spec.LexicalSpec{
		CategoryToTerminal: cat2Term,
		Skip:               gram.skipCategories,
	}
	if len(gram.lexEntries) == 0 {
		return lexical, nil
	}

	// Category names are arbitrary, so the lexer sees generated kind names instead.
	kind2Cat := map[mlspec.LexKindName]string{}
	entries := make([]*mlspec.LexEntry, 0, len(gram.lexEntries))
	for i, e := range gram.lexEntries {
		kind := mlspec.LexKindName(fmt.Sprintf("k%v", i+1))
		kind2Cat[kind] = e.Category
		pattern := e.Pattern
		if e.Literal {
			pattern = spec.EscapePattern(pattern)
		}
		entries = append(entries, &mlspec.LexEntry{
			Kind:    kind,
			Pattern: mlspec.LexPattern(pattern),
		})
	}

	lexSpec, err, cErrs := mlcompiler.Compile(&mlspec.LexSpec{
		Name:    lexSpecName(gram.name),
		Entries: entries,
	}, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
	if err != nil {
		if len(cErrs) > 0 {
			var b strings.Builder
			for i, cerr := range cErrs {
				if i > 0 {
					fmt.Fprintf(&b, "\n")
				}
				writeCompileError(&b, cerr, kind2Cat)
			}
			return nil, fmt.Errorf("%v", b.String())
		}
		return nil, err
	}

	kind2Category := make([]string, len(lexSpec.KindNames))
	for i, k := range lexSpec.KindNames {
		if k == mlspec.LexKindNameNil {
			continue
		}
		cat, ok := kind2Cat[k]
		if !ok {
			return nil, fmt.Errorf("a lexical kind was not found: %v", k)
		}
		kind2Category[i] = cat
	}
	lexical.Maleeni = &spec.Maleeni{
		Spec:           lexSpec,
		KindToCategory: kind2Category,
	}

	return lexical, nil
}

func writeCompileError(w io.Writer, cErr *mlcompiler.CompileError, kind2Cat map[mlspec.LexKindName]string) {
	cat, ok := kind2Cat[cErr.Kind]
	if !ok {
		cat = string(cErr.Kind)
	}
	fmt.Fprintf(w, "category %v: %v", cat, cErr.Cause)
	if cErr.Detail != "" {
		fmt.Fprintf(w, ": %v", cErr.Detail)
	}
}

var lexSpecNameRE = regexp.MustCompile(`^[a-z](_?[0-9a-z]+)*$`)

// lexSpecName turns a grammar name into a snake_case identifier, which maleeni requires as a specification
// name. Names that cannot be converted fall back to "lexer".
func lexSpecName(name string) string {
	var b strings.Builder
	sep := false
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(c)
			continue
		}
		sep = true
	}
	if id := b.String(); lexSpecNameRE.MatchString(id) {
		return id
	}
	return "lexer"
}
