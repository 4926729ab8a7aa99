// Package symbol provides grammar symbols. A symbol is either a terminal or a non-terminal; both variants
// are packed into a 16-bit value so that symbols can be used as map keys and table indexes directly.
package symbol

import (
	"errors"
	"fmt"
	"sort"
)

type Kind string

const (
	KindNonTerminal = Kind("non-terminal")
	KindTerminal    = Kind("terminal")
)

func (k Kind) String() string {
	return string(k)
}

type Num uint16

func (n Num) Int() int {
	return int(n)
}

// Symbol layout:
//
//	bit 15     : 1 = terminal, 0 = non-terminal
//	bit 14     : reserved symbol (the augmented start symbol or the end marker)
//	bits 0..13 : number, unique within a kind
type Symbol uint16

const (
	maskTerminal = uint16(0x8000)
	maskReserved = uint16(0x4000)
	maskNum      = uint16(0x3fff)

	numReserved = uint16(1)

	SymbolNil   = Symbol(0)
	SymbolStart = Symbol(maskReserved | numReserved)
	SymbolEOF   = Symbol(maskTerminal | maskReserved | numReserved)

	// The name contains `<` and `>` so that it never collides with a user-defined name.
	NameEOF = "<eof>"

	numMin = Num(2)
	numMax = Num(maskNum)
)

var (
	ErrKindMismatch = errors.New("a name cannot denote both a terminal and a non-terminal")
	ErrTooManySyms  = errors.New("too many symbols")
)

func (s Symbol) Kind() Kind {
	if uint16(s)&maskTerminal != 0 {
		return KindTerminal
	}
	return KindNonTerminal
}

func (s Symbol) Num() Num {
	return Num(uint16(s) & maskNum)
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && s.Kind() == KindTerminal
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && s.Kind() == KindNonTerminal
}

// IsStart reports whether the symbol is the augmented start symbol.
func (s Symbol) IsStart() bool {
	return s == SymbolStart
}

func (s Symbol) IsEOF() bool {
	return s == SymbolEOF
}

func (s Symbol) String() string {
	switch {
	case s.IsNil():
		return "nil"
	case s.IsStart():
		return "s'"
	case s.IsEOF():
		return "$"
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	default:
		return fmt.Sprintf("n%v", s.Num())
	}
}

// Table interns symbols: a name always denotes the same symbol.
type Table struct {
	byName       map[string]Symbol
	termNames    []string
	nonTermNames []string
}

func NewTable() *Table {
	return &Table{
		byName: map[string]Symbol{
			NameEOF: SymbolEOF,
		},
		termNames: []string{
			"",      // nil
			NameEOF, // EOF
		},
		nonTermNames: []string{
			"", // nil
			"", // augmented start symbol
		},
	}
}

// RegisterStart names the augmented start symbol.
func (t *Table) RegisterStart(name string) (Symbol, error) {
	if sym, ok := t.byName[name]; ok && sym != SymbolStart {
		return SymbolNil, fmt.Errorf("%w: %v", ErrKindMismatch, name)
	}
	t.byName[name] = SymbolStart
	t.nonTermNames[SymbolStart.Num()] = name
	return SymbolStart, nil
}

func (t *Table) RegisterTerminal(name string) (Symbol, error) {
	return t.register(name, KindTerminal)
}

func (t *Table) RegisterNonTerminal(name string) (Symbol, error) {
	return t.register(name, KindNonTerminal)
}

func (t *Table) register(name string, kind Kind) (Symbol, error) {
	if sym, ok := t.byName[name]; ok {
		if sym.Kind() != kind {
			return SymbolNil, fmt.Errorf("%w: %v", ErrKindMismatch, name)
		}
		return sym, nil
	}

	var sym Symbol
	if kind == KindTerminal {
		num := Num(len(t.termNames))
		if num > numMax {
			return SymbolNil, ErrTooManySyms
		}
		sym = Symbol(maskTerminal | uint16(num))
		t.termNames = append(t.termNames, name)
	} else {
		num := Num(len(t.nonTermNames))
		if num > numMax {
			return SymbolNil, ErrTooManySyms
		}
		sym = Symbol(uint16(num))
		t.nonTermNames = append(t.nonTermNames, name)
	}
	t.byName[name] = sym
	return sym, nil
}

func (t *Table) Lookup(name string) (Symbol, bool) {
	sym, ok := t.byName[name]
	return sym, ok
}

func (t *Table) Name(sym Symbol) (string, bool) {
	num := sym.Num().Int()
	switch {
	case sym.IsNil():
		return "", false
	case sym.IsTerminal():
		if num >= len(t.termNames) {
			return "", false
		}
		return t.termNames[num], true
	default:
		if num >= len(t.nonTermNames) || t.nonTermNames[num] == "" {
			return "", false
		}
		return t.nonTermNames[num], true
	}
}

// Terminals returns all terminals including the end marker in ascending order.
func (t *Table) Terminals() []Symbol {
	syms := make([]Symbol, 0, len(t.termNames)-1)
	for num := 1; num < len(t.termNames); num++ {
		if num == int(numReserved) {
			syms = append(syms, SymbolEOF)
			continue
		}
		syms = append(syms, Symbol(maskTerminal|uint16(num)))
	}
	return syms
}

// NonTerminals returns all non-terminals including the augmented start symbol in ascending order.
func (t *Table) NonTerminals() []Symbol {
	syms := make([]Symbol, 0, len(t.nonTermNames)-1)
	for num := 1; num < len(t.nonTermNames); num++ {
		if num == int(numReserved) {
			if t.nonTermNames[num] == "" {
				continue
			}
			syms = append(syms, SymbolStart)
			continue
		}
		syms = append(syms, Symbol(uint16(num)))
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

// TerminalNames returns the terminal names indexed by symbol numbers. The index 0 is unused.
func (t *Table) TerminalNames() []string {
	names := make([]string, len(t.termNames))
	copy(names, t.termNames)
	return names
}

// NonTerminalNames returns the non-terminal names indexed by symbol numbers. The index 0 is unused.
func (t *Table) NonTerminalNames() []string {
	names := make([]string, len(t.nonTermNames))
	copy(names, t.nonTermNames)
	return names
}

// TerminalCount is the width of an action table row.
func (t *Table) TerminalCount() int {
	return len(t.termNames)
}

// NonTerminalCount is the width of a goto table row.
func (t *Table) NonTerminalCount() int {
	return len(t.nonTermNames)
}

// SymbolFromNum restores a symbol from its kind and number.
func SymbolFromNum(kind Kind, num Num) Symbol {
	if num == Num(numReserved) {
		if kind == KindTerminal {
			return SymbolEOF
		}
		return SymbolStart
	}
	if kind == KindTerminal {
		return Symbol(maskTerminal | uint16(num))
	}
	return Symbol(uint16(num))
}
