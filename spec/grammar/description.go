package grammar

import (
	"encoding/json"
	"fmt"
	"io"
)

type Terminal struct {
	Number        int      `json:"number"`
	Name          string   `json:"name"`
	Categories    []string `json:"categories"`
	Precedence    int      `json:"prec"`
	Associativity string   `json:"assoc"`
}

type NonTerminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Production describes a production. RHS holds terminal numbers as positive values and non-terminal numbers
// as negative values.
type Production struct {
	Number        int    `json:"number"`
	LHS           int    `json:"lhs"`
	RHS           []int  `json:"rhs"`
	Label         string `json:"label"`
	Precedence    int    `json:"prec"`
	Associativity string `json:"assoc"`
}

type Item struct {
	Production int   `json:"production"`
	Dot        int   `json:"dot"`
	LookAhead  []int `json:"look_ahead"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

const (
	ConflictKindShiftReduce  = "shift/reduce"
	ConflictKindReduceReduce = "reduce/reduce"

	ResolvedByPrec  = "precedence"
	ResolvedByAssoc = "associativity"
)

// Conflict describes a conflict resolved with precedence or associativity. Unresolved conflicts fail
// a compilation and never appear in a report.
type Conflict struct {
	Kind        string `json:"kind"`
	Symbol      int    `json:"symbol"`
	NextState   int    `json:"next_state"`
	Productions []int  `json:"productions"`
	ResolvedBy  string `json:"resolved_by"`

	// Either AdoptedState or AdoptedProduction is set.
	AdoptedState      *int `json:"adopted_state"`
	AdoptedProduction *int `json:"adopted_production"`
}

type State struct {
	Number    int           `json:"number"`
	Kernel    []*Item       `json:"kernel"`
	Shift     []*Transition `json:"shift"`
	Reduce    []*Reduce     `json:"reduce"`
	Accept    bool          `json:"accept"`
	GoTo      []*Transition `json:"goto"`
	Conflicts []*Conflict   `json:"conflicts"`
}

type Report struct {
	Name         string         `json:"name"`
	Class        Class          `json:"class"`
	Terminals    []*Terminal    `json:"terminals"`
	NonTerminals []*NonTerminal `json:"non_terminals"`
	Productions  []*Production  `json:"productions"`
	States       []*State       `json:"states"`
}

// WriteReport writes a report in JSON followed by a newline.
func WriteReport(w io.Writer, r *Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

func ReadReport(r io.Reader) (*Report, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	report := &Report{}
	if err := json.Unmarshal(b, report); err != nil {
		return nil, err
	}
	return report, nil
}
