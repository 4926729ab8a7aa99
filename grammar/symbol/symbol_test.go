package symbol

import (
	"errors"
	"testing"
)

func TestTable(t *testing.T) {
	tab := NewTable()
	_, _ = tab.RegisterStart("E'")
	_, _ = tab.RegisterNonTerminal("E")
	_, _ = tab.RegisterNonTerminal("T")
	_, _ = tab.RegisterNonTerminal("F")
	_, _ = tab.RegisterTerminal("num")
	_, _ = tab.RegisterTerminal("+")
	_, _ = tab.RegisterTerminal("*")

	tests := []struct {
		name          string
		isStart       bool
		isEOF         bool
		isNonTerminal bool
		isTerminal    bool
	}{
		{name: "E'", isStart: true, isNonTerminal: true},
		{name: "E", isNonTerminal: true},
		{name: "T", isNonTerminal: true},
		{name: "F", isNonTerminal: true},
		{name: NameEOF, isEOF: true, isTerminal: true},
		{name: "num", isTerminal: true},
		{name: "+", isTerminal: true},
		{name: "*", isTerminal: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sym, ok := tab.Lookup(tt.name)
			if !ok {
				t.Fatalf("symbol was not found")
			}
			if sym.IsNil() {
				t.Fatalf("a registered symbol must not be nil")
			}
			if sym.IsStart() != tt.isStart {
				t.Errorf("unexpected start flag; want: %v, got: %v", tt.isStart, sym.IsStart())
			}
			if sym.IsEOF() != tt.isEOF {
				t.Errorf("unexpected EOF flag; want: %v, got: %v", tt.isEOF, sym.IsEOF())
			}
			if sym.IsNonTerminal() != tt.isNonTerminal {
				t.Errorf("unexpected non-terminal flag; want: %v, got: %v", tt.isNonTerminal, sym.IsNonTerminal())
			}
			if sym.IsTerminal() != tt.isTerminal {
				t.Errorf("unexpected terminal flag; want: %v, got: %v", tt.isTerminal, sym.IsTerminal())
			}
			name, ok := tab.Name(sym)
			if !ok || name != tt.name {
				t.Errorf("unexpected name; want: %v, got: %v", tt.name, name)
			}
			if SymbolFromNum(sym.Kind(), sym.Num()) != sym {
				t.Errorf("a symbol must be restorable from its kind and number: %v", sym)
			}
		})
	}

	if tab.TerminalCount() != 5 {
		t.Errorf("unexpected terminal count: %v", tab.TerminalCount())
	}
	if tab.NonTerminalCount() != 5 {
		t.Errorf("unexpected non-terminal count: %v", tab.NonTerminalCount())
	}
	if len(tab.Terminals()) != 4 || tab.Terminals()[0] != SymbolEOF {
		t.Errorf("unexpected terminals: %v", tab.Terminals())
	}
	if len(tab.NonTerminals()) != 4 || tab.NonTerminals()[0] != SymbolStart {
		t.Errorf("unexpected non-terminals: %v", tab.NonTerminals())
	}
}

func TestTable_Interning(t *testing.T) {
	tab := NewTable()
	a1, err := tab.RegisterTerminal("a")
	if err != nil {
		t.Fatal(err)
	}
	a2, err := tab.RegisterTerminal("a")
	if err != nil {
		t.Fatal(err)
	}
	if a1 != a2 {
		t.Fatalf("the same name must denote the same symbol; %v != %v", a1, a2)
	}

	_, err = tab.RegisterNonTerminal("a")
	if !errors.Is(err, ErrKindMismatch) {
		t.Fatalf("unexpected error: %v", err)
	}
}
