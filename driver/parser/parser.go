// Package parser drives a compiled parsing table over a token stream.
package parser

import (
	"errors"
	"fmt"
	"io"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'lrgen.parser'.
func tracer() tracing.Trace {
	return tracing.Select("lrgen.parser")
}

// Grammar is a parsing table and the symbol information a parser needs.
type Grammar interface {
	// InitialState returns the initial state of a parser.
	InitialState() int

	// StartProduction returns the augmented start production. Reducing it means accepting an input.
	StartProduction() int

	// Action returns an ACTION entry: 0 for an error, -s for a shift to the state s, and p for a reduction
	// by the production p.
	Action(state int, terminal int) int

	// GoTo returns a GOTO entry. 0 means no transition.
	GoTo(state int, lhs int) int

	// AlternativeSymbolCount returns the number of RHS symbols of a production.
	AlternativeSymbolCount(prod int) int

	// ProductionCount returns the length of tables indexed by production numbers.
	ProductionCount() int

	// ProductionLabel returns the label of a production, or an empty string.
	ProductionLabel(prod int) string

	// TerminalCount returns the number of terminals including the end marker.
	TerminalCount() int

	// NonTerminal returns the name of a non-terminal.
	NonTerminal(nonTerminal int) string

	// LHS returns the LHS symbol of a production.
	LHS(prod int) int

	// EOF returns the end marker.
	EOF() int

	// Terminal returns the name of a terminal.
	Terminal(terminal int) string

	// CategoryToTerminal maps a token category to a terminal.
	CategoryToTerminal(category string) (int, bool)

	// Skip returns true when tokens of a category are dropped.
	Skip(category string) bool
}

type Status int

const (
	StatusRunning Status = iota
	StatusAccepted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusAccepted:
		return "accepted"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("<unknown status %d>", int(s))
}

// SyntaxError is the first syntax error of an input. A parser stops there.
type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	State             int
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	if e.Token != nil && e.Token.EOF() {
		return fmt.Sprintf("%v:%v: %v: <eof>; expected: %v", e.Row, e.Col, e.Message, e.ExpectedTerminals)
	}
	var lexeme string
	if e.Token != nil {
		lexeme = string(e.Token.Lexeme())
	}
	return fmt.Sprintf("%v:%v: %v: %q; expected: %v", e.Row, e.Col, e.Message, lexeme, e.ExpectedTerminals)
}

// LexicalError is reported when a token stream yields an invalid token or a token whose category is not
// mapped to any terminal. Category is empty for an invalid token.
type LexicalError struct {
	Row      int
	Col      int
	Lexeme   string
	Category string
}

func (e *LexicalError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("%v:%v: token category %v is not a terminal: %q", e.Row, e.Col, e.Category, e.Lexeme)
	}
	return fmt.Sprintf("%v:%v: found undefined token: %q", e.Row, e.Col, e.Lexeme)
}

type ParserOption func(p *Parser) error

// SemanticAction sets a semantic action set. Without this option, a parser builds a syntax tree.
func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		if semAct == nil {
			return errors.New("a semantic action set must be non-nil")
		}
		p.semAct = semAct
		return nil
	}
}

// Parser is an LR parser. The state stack and the value stack always have the same height apart from the
// initial state.
type Parser struct {
	gram       Grammar
	toks       TokenStream
	semAct     SemanticActionSet
	stateStack *arraystack.Stack
	valueStack *arraystack.Stack
	status     Status
	result     interface{}
	lastRow    int
	lastCol    int
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		gram:       gram,
		toks:       toks,
		stateStack: arraystack.New(),
		valueStack: arraystack.New(),
		status:     StatusRunning,
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	if p.semAct == nil {
		p.semAct = NewSyntaxTreeActionSet(gram)
	}

	return p, nil
}

// Parse runs until the input is accepted or the first error occurs. The error is a *LexicalError,
// a *SyntaxError, an error of a semantic action, or an error of the token stream.
func (p *Parser) Parse() (retErr error) {
	if p.status != StatusRunning {
		return fmt.Errorf("a parser can parse only once; status: %v", p.status)
	}
	defer func() {
		if r := recover(); r != nil {
			p.status = StatusError
			panic(r)
		}
		if retErr != nil {
			p.status = StatusError
		}
	}()

	p.stateStack.Push(p.gram.InitialState())
	tok, term, err := p.nextToken()
	if err != nil {
		return err
	}

	for {
		act := p.gram.Action(p.top(), term)
		switch {
		case act < 0: // Shift
			nextState := act * -1
			tracer().Debugf("shift %v %q; state %v", p.gram.Terminal(term), tok.Lexeme(), nextState)
			p.stateStack.Push(nextState)
			p.valueStack.Push(p.semAct.Shift(tok))

			tok, term, err = p.nextToken()
			if err != nil {
				return err
			}
		case act == p.gram.StartProduction(): // Accept
			if !tok.EOF() {
				panic(fmt.Errorf("an accept action was found on a token other than the end marker; state: %v", p.top()))
			}
			v, _ := p.valueStack.Pop()
			p.result = v
			p.status = StatusAccepted
			tracer().Debugf("accept")
			return nil
		case act > 0: // Reduce
			if err := p.reduce(act); err != nil {
				return err
			}
		default: // Error
			return p.syntaxError(tok, "unexpected token")
		}
	}
}

func (p *Parser) reduce(prod int) error {
	n := p.gram.AlternativeSymbolCount(prod)
	values := make([]interface{}, n)
	for i := n - 1; i >= 0; i-- {
		p.stateStack.Pop()
		v, _ := p.valueStack.Pop()
		values[i] = v
	}

	v, err := p.semAct.Reduce(prod, values)
	if err != nil {
		return fmt.Errorf("semantic action of production %v failed: %w", prod, err)
	}

	lhs := p.gram.LHS(prod)
	nextState := p.gram.GoTo(p.top(), lhs)
	if nextState == 0 {
		panic(fmt.Errorf("a GOTO entry was not found; state: %v, non-terminal: %v", p.top(), p.gram.NonTerminal(lhs)))
	}
	tracer().Debugf("reduce %v → %v symbols; state %v", p.gram.NonTerminal(lhs), n, nextState)
	p.stateStack.Push(nextState)
	p.valueStack.Push(v)

	return nil
}

// nextToken returns the next syntactic token and its terminal. The end of a token stream becomes an EOF token.
func (p *Parser) nextToken() (VToken, int, error) {
	for {
		tok, err := p.toks.Next()
		if errors.Is(err, io.EOF) {
			return NewEOFToken(p.lastRow, p.lastCol), p.gram.EOF(), nil
		}
		if err != nil {
			return nil, 0, err
		}

		row, col := tok.Position()
		p.lastRow, p.lastCol = row, col

		if tok.Invalid() {
			return nil, 0, &LexicalError{
				Row:    row,
				Col:    col,
				Lexeme: string(tok.Lexeme()),
			}
		}
		if tok.EOF() {
			return tok, p.gram.EOF(), nil
		}
		if p.gram.Skip(tok.Category()) {
			continue
		}
		term, ok := p.gram.CategoryToTerminal(tok.Category())
		if !ok {
			return nil, 0, &LexicalError{
				Row:      row,
				Col:      col,
				Lexeme:   string(tok.Lexeme()),
				Category: tok.Category(),
			}
		}
		return tok, term, nil
	}
}

func (p *Parser) syntaxError(tok VToken, message string) *SyntaxError {
	row, col := tok.Position()
	return &SyntaxError{
		Row:               row,
		Col:               col,
		Message:           message,
		Token:             tok,
		State:             p.top(),
		ExpectedTerminals: p.searchLookahead(p.top()),
	}
}

// searchLookahead returns the terminals acceptable in a state.
func (p *Parser) searchLookahead(state int) []string {
	var kinds []string
	for term := 0; term < p.gram.TerminalCount(); term++ {
		if p.gram.Action(state, term) == 0 {
			continue
		}
		kinds = append(kinds, p.gram.Terminal(term))
	}
	return kinds
}

func (p *Parser) top() int {
	v, _ := p.stateStack.Peek()
	return v.(int)
}

func (p *Parser) Status() Status {
	return p.status
}

// Result returns the value of the start symbol after a parser accepted an input.
func (p *Parser) Result() interface{} {
	return p.result
}
