// Package grammar defines the serialized form of a compiled grammar. A compiled grammar is self-contained:
// a driver needs nothing else to parse an input.
package grammar

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cnf/structhash"
	mlspec "github.com/nihei9/maleeni/spec"
)

type Class string

const (
	ClassLR1   = Class("lr1")
	ClassLALR1 = Class("lalr1")
	ClassSLR1  = Class("slr1")
)

func (c Class) String() string {
	return string(c)
}

// ParseClass converts a name of a table class. An empty name means the default class, canonical LR(1).
func ParseClass(s string) (Class, error) {
	switch Class(s) {
	case "", ClassLR1:
		return ClassLR1, nil
	case ClassLALR1, ClassSLR1:
		return Class(s), nil
	}
	return "", fmt.Errorf("unknown table class: %v (lr1, lalr1 or slr1 is available)", s)
}

type CompiledGrammar struct {
	Name         string        `json:"name"`
	Class        Class         `json:"class"`
	Checksum     string        `json:"checksum"`
	Lexical      *LexicalSpec  `json:"lexical"`
	ParsingTable *ParsingTable `json:"parsing_table"`
}

// LexicalSpec maps token categories to terminals. Maleeni is nil when a grammar declares no category
// patterns; such a grammar is driven by a token stream supplied by a caller.
type LexicalSpec struct {
	CategoryToTerminal map[string]int `json:"category_to_terminal"`
	Skip               []string       `json:"skip"`
	Maleeni            *Maleeni       `json:"maleeni,omitempty"`
}

type Maleeni struct {
	Spec *mlspec.CompiledLexSpec `json:"spec"`

	// KindToCategory is indexed by kind IDs of Spec.
	KindToCategory []string `json:"kind_to_category"`
}

// ParsingTable is a table-driven LR automaton.
//
// An action entry is 0 (error), -s (shift to the state s) or p (reduce by the production p). Reducing by
// StartProduction means accept. A goto entry is 0 when the transition is absent; no transition targets
// the initial state 0.
type ParsingTable struct {
	Action                  *Table   `json:"action"`
	GoTo                    *Table   `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	ProductionLabels        []string `json:"production_labels"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
}

type TableEncoding string

const (
	TableEncodingPlain           = TableEncoding("plain")
	TableEncodingUniqueRows      = TableEncoding("unique_rows")
	TableEncodingRowDisplacement = TableEncoding("row_displacement")
)

// Table is a two-dimensional table of integers. Depending on Encoding, only some of the fields are used.
//
// plain: Entries holds RowCount * ColCount entries in row-major order.
// unique_rows: Entries holds distinct rows, and RowNums maps an original row to a distinct row.
// row_displacement: rows are overlaid in Entries; RowDisplacement is the offset of each row, and Bounds
// records which row owns each slot. A slot owned by another row reads as EmptyValue.
type Table struct {
	Encoding        TableEncoding `json:"encoding"`
	RowCount        int           `json:"row_count"`
	ColCount        int           `json:"col_count"`
	Entries         []int         `json:"entries"`
	RowNums         []int         `json:"row_nums,omitempty"`
	RowDisplacement []int         `json:"row_displacement,omitempty"`
	Bounds          []int         `json:"bounds,omitempty"`
	EmptyValue      int           `json:"empty_value"`
}

type checksumSource struct {
	Class        Class
	Lexical      *LexicalSpec
	ParsingTable *ParsingTable
}

// CalcChecksum hashes the contents of a compiled grammar except its name and its checksum.
func CalcChecksum(g *CompiledGrammar) (string, error) {
	var lexical *LexicalSpec
	if g.Lexical != nil {
		// The compiled lexer spec is derived from the patterns and is not hashed.
		lexical = &LexicalSpec{
			CategoryToTerminal: g.Lexical.CategoryToTerminal,
			Skip:               g.Lexical.Skip,
		}
	}
	return structhash.Hash(&checksumSource{
		Class:        g.Class,
		Lexical:      lexical,
		ParsingTable: g.ParsingTable,
	}, 1)
}

// WriteCompiledGrammar writes a compiled grammar in JSON.
func WriteCompiledGrammar(w io.Writer, g *CompiledGrammar) error {
	b, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadCompiledGrammar reads a compiled grammar and verifies its checksum.
func ReadCompiledGrammar(r io.Reader) (*CompiledGrammar, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	g := &CompiledGrammar{}
	if err := json.Unmarshal(b, g); err != nil {
		return nil, err
	}
	if g.ParsingTable == nil || g.ParsingTable.Action == nil || g.ParsingTable.GoTo == nil {
		return nil, fmt.Errorf("a compiled grammar has no parsing table")
	}
	sum, err := CalcChecksum(g)
	if err != nil {
		return nil, err
	}
	if sum != g.Checksum {
		return nil, fmt.Errorf("checksum mismatch; the compiled grammar may be corrupted: want: %v, got: %v", g.Checksum, sum)
	}
	return g, nil
}

func (t *ParsingTable) TerminalName(num int) string {
	if num < 0 || num >= len(t.Terminals) {
		return strconv.Itoa(num)
	}
	return t.Terminals[num]
}

func (t *ParsingTable) NonTerminalName(num int) string {
	if num < 0 || num >= len(t.NonTerminals) {
		return strconv.Itoa(num)
	}
	return t.NonTerminals[num]
}
