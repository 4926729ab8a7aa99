package grammar

import (
	"fmt"
	"strings"

	"github.com/fuclang/lrgen/grammar/symbol"
)

type ActionType string

const (
	ActionTypeShift  = ActionType("shift")
	ActionTypeReduce = ActionType("reduce")
	ActionTypeAccept = ActionType("accept")
	ActionTypeError  = ActionType("error")
)

// Action is a cell of an ACTION table. State is meaningful for a shift, and Production for a reduce.
type Action struct {
	Type       ActionType
	State      int
	Production int
}

func (a Action) String() string {
	switch a.Type {
	case ActionTypeShift:
		return fmt.Sprintf("shift %v", a.State)
	case ActionTypeReduce:
		return fmt.Sprintf("reduce %v", a.Production)
	}
	return string(a.Type)
}

type actionEntry int

const actionEntryEmpty = actionEntry(0)

func newShiftActionEntry(state stateNum) actionEntry {
	return actionEntry(state * -1)
}

func newReduceActionEntry(prod productionNum) actionEntry {
	return actionEntry(prod)
}

func (e actionEntry) isEmpty() bool {
	return e == actionEntryEmpty
}

func (e actionEntry) describe() (ActionType, stateNum, productionNum) {
	if e == actionEntryEmpty {
		return ActionTypeError, stateNumInitial, productionNumNil
	}
	if e < 0 {
		return ActionTypeShift, stateNum(e * -1), productionNumNil
	}
	if productionNum(e) == productionNumStart {
		return ActionTypeAccept, stateNumInitial, productionNumStart
	}
	return ActionTypeReduce, stateNumInitial, productionNum(e)
}

type goToEntry uint

const goToEntryEmpty = goToEntry(0)

// ParsingTable holds ACTION and GOTO tables. Rows are states; ACTION columns are terminal numbers and GOTO
// columns are non-terminal numbers.
type ParsingTable struct {
	actionTable      []actionEntry
	goToTable        []goToEntry
	stateCount       int
	terminalCount    int
	nonTerminalCount int

	InitialState stateNum
}

func newParsingTable(stateCount, termCount, nonTermCount int) *ParsingTable {
	return &ParsingTable{
		actionTable:      make([]actionEntry, stateCount*termCount),
		goToTable:        make([]goToEntry, stateCount*nonTermCount),
		stateCount:       stateCount,
		terminalCount:    termCount,
		nonTerminalCount: nonTermCount,
		InitialState:     stateNumInitial,
	}
}

func (t *ParsingTable) StateCount() int {
	return t.stateCount
}

// Action returns the action on a terminal in a state. An out-of-range cell is an error action.
func (t *ParsingTable) Action(state int, terminal int) Action {
	if state < 0 || state >= t.stateCount || terminal < 0 || terminal >= t.terminalCount {
		return Action{Type: ActionTypeError}
	}
	ty, next, prod := t.readAction(state, terminal).describe()
	return Action{
		Type:       ty,
		State:      next.Int(),
		Production: prod.Int(),
	}
}

// GoTo returns the state reached from a state over a non-terminal.
func (t *ParsingTable) GoTo(state int, nonTerminal int) (int, bool) {
	if state < 0 || state >= t.stateCount || nonTerminal < 0 || nonTerminal >= t.nonTerminalCount {
		return 0, false
	}
	e := t.goToTable[state*t.nonTerminalCount+nonTerminal]
	if e == goToEntryEmpty {
		return 0, false
	}
	return int(e), true
}

func (t *ParsingTable) readAction(row int, col int) actionEntry {
	return t.actionTable[row*t.terminalCount+col]
}

func (t *ParsingTable) writeAction(row int, col int, act actionEntry) {
	t.actionTable[row*t.terminalCount+col] = act
}

func (t *ParsingTable) writeGoTo(state stateNum, sym symbol.Symbol, nextState stateNum) {
	pos := state.Int()*t.nonTerminalCount + sym.Num().Int()
	t.goToTable[pos] = goToEntry(nextState)
}

type ConflictKind string

const (
	ConflictKindShiftReduce  = ConflictKind("shift/reduce")
	ConflictKindReduceReduce = ConflictKind("reduce/reduce")
)

// ConflictError is an unresolved conflict. For a shift/reduce conflict, NextState is the target of the
// shift and Productions has one element.
type ConflictError struct {
	State           int
	Terminal        string
	Kind            ConflictKind
	Productions     []int
	ProductionTexts []string
	NextState       int
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v conflict in state %v on %v: ", e.Kind, e.State, e.Terminal)
	if e.Kind == ConflictKindShiftReduce {
		fmt.Fprintf(&b, "shift %v or reduce %v (%v)", e.NextState, e.Productions[0], e.ProductionTexts[0])
		return b.String()
	}
	for i, p := range e.Productions {
		if i > 0 {
			b.WriteString(" or ")
		}
		fmt.Fprintf(&b, "reduce %v (%v)", p, e.ProductionTexts[i])
	}
	return b.String()
}

// ConflictErrors is returned when a grammar has unresolved conflicts; a table with such conflicts is never
// produced.
type ConflictErrors []*ConflictError

func (e ConflictErrors) Error() string {
	if len(e) == 0 {
		return "no conflicts"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%v unresolved conflict(s)", len(e))
	for _, c := range e {
		b.WriteString("\n")
		b.WriteString(c.Error())
	}
	return b.String()
}
